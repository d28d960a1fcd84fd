package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg"
	"github.com/akinalp/hush/ws"
)

type fakeTrips struct{}

func (fakeTrips) Trip(password string) string { return "trip:" + password }

// fakeTokens, token string'ini doğrudan claim'e çevirir.
type fakeTokens map[string]models.ModClaims

func (f fakeTokens) ValidateModToken(token string) (*models.ModClaims, error) {
	c, ok := f[token]
	if !ok {
		return nil, errors.Join(pkg.ErrUnauthorized, errors.New("unknown token"))
	}
	return &c, nil
}

type chatFixture struct {
	hub    *fakeHub
	police *fakePolice
	svc    ChatService
}

func newChatFixture(threshold float64) *chatFixture {
	f := &chatFixture{hub: &fakeHub{}, police: newFakePolice(threshold)}
	tokens := fakeTokens{"modtoken": {Nick: "boss", Level: models.LevelModerator}}
	f.svc = NewChatService(f.hub, f.police, NewTokenSource(7), fakeTrips{}, tokens)
	return f
}

// connected, henüz join olmamış bir bağlantı döner.
func connected(userID int64, addr string) *models.ChatUser {
	return &models.ChatUser{
		ID:       addr + "-conn",
		UserID:   userID,
		Hash:     "h" + addr,
		Address:  addr,
		Lang:     "en",
		Level:    models.LevelUser,
		Protocol: models.ProtocolLegacy,
	}
}

func warnID(t *testing.T, payload any) string {
	t.Helper()
	w, ok := payload.(ws.WarnPayload)
	require.True(t, ok, "expected warn, got %T", payload)
	return w.ID
}

// ─── Join ───

func TestJoinAnnouncesAndListsMembers(t *testing.T) {
	f := newChatFixture(1000)
	bob := f.hub.add(chatUser(5, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))
	carol := f.hub.add(chatUser(2, "carol", "lounge", "hc", models.LevelUser, models.ProtocolLegacy))
	alice := f.hub.add(connected(9, "1.2.3.4"))

	f.svc.Join(alice, frame(t, `{"cmd":"join","channel":"lounge","nick":"alice","pass":"secret","color":"#a0f"}`))

	assert.Equal(t, "lounge", alice.Channel)
	assert.Equal(t, "alice", alice.Nick)
	assert.Equal(t, "trip:secret", alice.Trip)
	assert.Equal(t, "#a0f", alice.Color)
	assert.Equal(t, models.ProtocolLegacy, alice.Protocol)
	assert.Equal(t, []friskCall{{"1.2.3.4", 3}}, f.police.calls)

	require.Len(t, f.hub.broadcasts, 1)
	add, ok := f.hub.broadcasts[0].payload.(ws.OnlineAddPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", add.Nick)
	assert.Equal(t, int64(9), add.UserID)
	assert.Contains(t, f.hub.deliveredTo(bob), any(add))
	assert.Contains(t, f.hub.deliveredTo(carol), any(add))

	require.Len(t, f.hub.replies, 1)
	set, ok := f.hub.replies[0].payload.(ws.OnlineSetPayload)
	require.True(t, ok)
	assert.Same(t, alice, f.hub.replies[0].to)
	assert.Equal(t, []string{"carol", "bob", "alice"}, set.Nicks)
	require.Len(t, set.Users, 3)
	assert.True(t, set.Users[2].IsMe)
	assert.False(t, set.Users[0].IsMe)
}

func TestJoinValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		id   string
	}{
		{"missing channel", `{"cmd":"join","nick":"alice"}`, models.ErrIDBadChannel},
		{"blank channel", `{"cmd":"join","channel":"  ","nick":"alice"}`, models.ErrIDBadChannel},
		{"missing nick", `{"cmd":"join","channel":"lounge"}`, models.ErrIDBadNick},
		{"bad characters", `{"cmd":"join","channel":"lounge","nick":"al ice!"}`, models.ErrIDBadNick},
		{"too long", `{"cmd":"join","channel":"lounge","nick":"abcdefghijklmnopqrstuvwxy"}`, models.ErrIDBadNick},
		{"taken ignoring case", `{"cmd":"join","channel":"lounge","nick":"BOB"}`, models.ErrIDNickTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(1000)
			f.hub.add(chatUser(1, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))
			alice := f.hub.add(connected(2, "1.2.3.4"))

			f.svc.Join(alice, frame(t, tt.raw))

			assert.False(t, alice.Joined())
			assert.Empty(t, f.hub.broadcasts)
			require.Len(t, f.hub.replies, 1)
			assert.Equal(t, tt.id, warnID(t, f.hub.replies[0].payload))
		})
	}
}

func TestJoinRateLimited(t *testing.T) {
	f := newChatFixture(3)
	alice := f.hub.add(connected(1, "1.2.3.4"))

	f.svc.Join(alice, frame(t, `{"cmd":"join","channel":"lounge","nick":"alice"}`))

	assert.False(t, alice.Joined())
	require.Len(t, f.hub.replies, 1)
	assert.Equal(t, models.ErrIDRateLimit, warnID(t, f.hub.replies[0].payload))
}

func TestJoinTwiceIsIgnored(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))

	f.svc.Join(alice, frame(t, `{"cmd":"join","channel":"other","nick":"alice2"}`))

	assert.Equal(t, "lounge", alice.Channel)
	assert.Empty(t, f.police.calls)
	assert.Empty(t, f.hub.replies)
}

func TestJoinModTokenRaisesLevel(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		level int
		utype string
	}{
		{"matching token", `{"cmd":"join","channel":"c","nick":"boss","token":"modtoken"}`, models.LevelModerator, "mod"},
		{"token for another nick", `{"cmd":"join","channel":"c","nick":"thief","token":"modtoken"}`, models.LevelUser, "user"},
		{"unknown token", `{"cmd":"join","channel":"c","nick":"boss","token":"forged"}`, models.LevelUser, "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(1000)
			u := f.hub.add(connected(1, "1.2.3.4"))

			f.svc.Join(u, frame(t, tt.raw))

			require.True(t, u.Joined())
			assert.Equal(t, tt.level, u.Level)
			assert.Equal(t, tt.utype, u.UType)
		})
	}
}

func TestJoinDetectsProtocolAndColor(t *testing.T) {
	f := newChatFixture(1000)
	u := f.hub.add(connected(1, "1.2.3.4"))

	f.svc.Join(u, frame(t, `{"cmd":"join","channel":"c","nick":"neo","protocol":2,"color":"nothex"}`))

	assert.Equal(t, models.ProtocolCurrent, u.Protocol)
	assert.Empty(t, u.Color)
	assert.Empty(t, u.Trip)
}

func TestIsHexColor(t *testing.T) {
	for _, ok := range []string{"fff", "#fff", "A0B1C2", "#a0b1c2"} {
		assert.True(t, isHexColor(ok), ok)
	}
	for _, bad := range []string{"", "#", "ff", "ggg", "#12345", "1234567"} {
		assert.False(t, isHexColor(bad), bad)
	}
}

// ─── Chat ───

func TestChatBroadcastsSanitizedText(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))
	bob := f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolCurrent))
	outsider := f.hub.add(chatUser(3, "eve", "other", "he", models.LevelUser, models.ProtocolLegacy))

	f.svc.Chat(alice, frame(t, `{"cmd":"chat","text":"\n\nhi\n\n\n\nall\n"}`))

	want := chatPayloadFor(alice, "hi\n\nall")
	assert.Equal(t, []any{want}, f.hub.deliveredTo(alice))
	assert.Equal(t, []any{want}, f.hub.deliveredTo(bob))
	assert.Empty(t, f.hub.deliveredTo(outsider))
}

func TestChatDropsEmptyAndNonStringText(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))

	f.svc.Chat(alice, frame(t, `{"cmd":"chat","text":"  \n "}`))
	f.svc.Chat(alice, frame(t, `{"cmd":"chat","text":42}`))

	assert.Empty(t, f.hub.broadcasts)
	assert.Empty(t, f.police.calls)
}

func TestChatTooMuchText(t *testing.T) {
	f := newChatFixture(0.01)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))

	f.svc.Chat(alice, frame(t, `{"cmd":"chat","text":"hello there"}`))

	assert.Empty(t, f.hub.broadcasts)
	require.Len(t, f.hub.replies, 1)
	assert.Empty(t, warnID(t, f.hub.replies[0].payload))
}

// ─── Invite ───

func TestInviteRelaysToTargetAndConfirms(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolCurrent))
	bob := f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolCurrent))

	f.svc.Invite(alice, frame(t, `{"cmd":"invite","userid":2,"channel":"lounge","to":"secret"}`))

	want := ws.InvitePayload{Cmd: ws.CmdInvite, Channel: "lounge", From: 1, To: 2, InviteChannel: "secret"}
	assert.Equal(t, []any{want}, f.hub.deliveredTo(bob))
	assert.Equal(t, []any{want}, f.hub.deliveredTo(alice))
}

func TestInviteLegacyUsesTranslatedInfo(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))
	bob := f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))

	f.svc.Invite(alice, frame(t, `{"cmd":"invite","nick":"bob","to":"secret"}`))

	require.Len(t, f.hub.deliveredTo(bob), 1)
	toBob := f.hub.deliveredTo(bob)[0].(ws.LegacyInfoPayload)
	assert.Equal(t, ws.InfoTypeInvite, toBob.Type)
	assert.Equal(t, "alice invited you to ?secret", toBob.Text)

	require.Len(t, f.hub.deliveredTo(alice), 1)
	toAlice := f.hub.deliveredTo(alice)[0].(ws.LegacyInfoPayload)
	assert.Equal(t, "You invited bob to ?secret", toAlice.Text)
}

func TestInviteFailures(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		f := newChatFixture(1)
		alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))
		f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))

		f.svc.Invite(alice, frame(t, `{"cmd":"invite","nick":"bob"}`))

		require.Len(t, f.hub.replies, 1)
		assert.Equal(t, models.ErrIDRateLimit, warnID(t, f.hub.replies[0].payload))
	})

	t.Run("unknown target", func(t *testing.T) {
		f := newChatFixture(1000)
		alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))

		f.svc.Invite(alice, frame(t, `{"cmd":"invite","nick":"ghost"}`))

		require.Len(t, f.hub.replies, 1)
		assert.Equal(t, models.ErrIDUnknownUser, warnID(t, f.hub.replies[0].payload))
	})

	t.Run("malformed", func(t *testing.T) {
		f := newChatFixture(1000)
		alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolCurrent))

		f.svc.Invite(alice, frame(t, `{"cmd":"invite","userid":2}`))

		assert.Empty(t, f.hub.replies)
	})
}

// ─── Whisper ───

func TestWhisperRelaysAndRemembersReplyTarget(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))
	alice.Trip = "tr1p"
	bob := f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))

	f.svc.Whisper(alice, frame(t, `{"cmd":"whisper","nick":"bob","text":"psst"}`))

	require.Len(t, f.hub.deliveredTo(bob), 1)
	toBob := f.hub.deliveredTo(bob)[0].(ws.LegacyInfoPayload)
	assert.Equal(t, ws.InfoTypeWhisper, toBob.Type)
	assert.Equal(t, "alice whispered: psst", toBob.Text)
	assert.Equal(t, "tr1p", toBob.Trip)

	require.Len(t, f.hub.deliveredTo(alice), 1)
	assert.Equal(t, "You whispered to @bob: psst", f.hub.deliveredTo(alice)[0].(ws.LegacyInfoPayload).Text)

	assert.Equal(t, "alice", bob.WhisperReply)
}

func TestWhisperCurrentProtocol(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolCurrent))
	bob := f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolCurrent))

	f.svc.Whisper(alice, frame(t, `{"cmd":"whisper","userid":2,"text":"psst"}`))

	want := ws.WhisperPayload{Cmd: ws.CmdWhisper, Channel: "lounge", From: 1, To: 2, Text: "psst"}
	assert.Equal(t, []any{want}, f.hub.deliveredTo(bob))
	assert.Equal(t, []any{want}, f.hub.deliveredTo(alice))
}

func TestWhisperEmptyTextIsFrisked(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))
	f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))

	f.svc.Whisper(alice, frame(t, `{"cmd":"whisper","nick":"bob","text":"\n\n"}`))

	assert.Equal(t, []friskCall{{alice.Address, 13}}, f.police.calls)
	assert.Empty(t, f.hub.replies)
}

func TestWhisperUnknownTarget(t *testing.T) {
	f := newChatFixture(1000)
	alice := f.hub.add(chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy))

	f.svc.Whisper(alice, frame(t, `{"cmd":"whisper","nick":"ghost","text":"hi"}`))

	require.Len(t, f.hub.replies, 1)
	assert.Equal(t, models.ErrIDUnknownUser, warnID(t, f.hub.replies[0].payload))
}

// ─── Leave ───

func TestLeaveAnnouncesRemoval(t *testing.T) {
	f := newChatFixture(1000)
	alice := chatUser(1, "alice", "lounge", "ha", models.LevelUser, models.ProtocolLegacy)
	bob := f.hub.add(chatUser(2, "bob", "lounge", "hb", models.LevelUser, models.ProtocolLegacy))

	f.svc.Leave(alice)

	want := ws.OnlineRemovePayload{Cmd: ws.CmdOnlineRemove, UserID: 1, Nick: "alice", Channel: "lounge"}
	assert.Equal(t, []any{want}, f.hub.deliveredTo(bob))
}

func TestChatRegisterCommands(t *testing.T) {
	f := newChatFixture(1000)
	rec := commandRecorder{}

	f.svc.RegisterCommands(rec)

	for _, cmd := range []string{ws.CmdJoin, ws.CmdChat, ws.CmdInvite, ws.CmdWhisper, ws.CmdPing} {
		assert.Contains(t, rec, cmd)
	}
}
