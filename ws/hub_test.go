package ws

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/akinalp/hush/models"
)

// testClient, gerçek bir WebSocket bağlantısı olmadan Hub'a eklenen client.
func testClient(h *Hub, user *models.ChatUser) *Client {
	c := &Client{hub: h, user: user, send: make(chan []byte, 8)}
	h.addClient(c)
	return c
}

func drain(t *testing.T, c *Client) []map[string]any {
	t.Helper()
	var out []map[string]any
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var m map[string]any
			require.NoError(t, json.Unmarshal(data, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func joinedUser(id string, userID int64, nick, channel, hash string) *models.ChatUser {
	return &models.ChatUser{
		ID: id, UserID: userID, Nick: nick, Channel: channel, Hash: hash,
		Level: models.LevelUser, Protocol: models.ProtocolCurrent,
	}
}

func TestHubBroadcastFilters(t *testing.T) {
	h := NewHub()
	a := testClient(h, joinedUser("a", 1, "alice", "lounge", "h1"))
	a2 := testClient(h, joinedUser("a2", 2, "alice2", "lounge", "h1"))
	b := testClient(h, joinedUser("b", 3, "bob", "lounge", "h2"))
	c := testClient(h, joinedUser("c", 4, "carol", "other", "h3"))

	h.Broadcast(ChatPayload{Cmd: CmdChat, Text: "hi"}, Filter{Channel: "lounge", Hash: "h1"})

	assert.Len(t, drain(t, a), 1)
	assert.Len(t, drain(t, a2), 1)
	assert.Empty(t, drain(t, b))
	assert.Empty(t, drain(t, c))
}

func TestHubFindUser(t *testing.T) {
	h := NewHub()
	alice := joinedUser("a", 7, "alice", "lounge", "h1")
	testClient(h, alice)
	testClient(h, joinedUser("b", 8, "alice", "other", "h2"))

	assert.Same(t, alice, h.FindUser(LegacyTarget{Nick: "alice", Channel: "lounge"}))
	assert.Same(t, alice, h.FindUser(CurrentTarget{UserID: 7, Channel: "lounge"}))
	assert.Nil(t, h.FindUser(CurrentTarget{UserID: 7, Channel: "other"}))
	assert.Nil(t, h.FindUser(LegacyTarget{Nick: "alice", Channel: ""}))
	assert.Nil(t, h.FindUser(LegacyTarget{Nick: "nobody", Channel: "lounge"}))

	assert.Len(t, h.ChannelUsers("lounge"), 1)
	assert.Equal(t, 2, h.OnlineCount())
}

func TestHubDispatchRunsHooksThenCommand(t *testing.T) {
	h := NewHub()
	user := joinedUser("a", 1, "alice", "lounge", "h1")
	c := testClient(h, user)

	var handled []string
	h.HandleCommand(CmdChat, func(sender *models.ChatUser, in *Inbound) {
		text, _ := in.String("text")
		handled = append(handled, text)
	})
	require.NoError(t, h.Hooks().Register(HookIn, CmdChat, func(_ *models.ChatUser, in *Inbound) HookResult {
		if text, _ := in.String("text"); text == "blocked" {
			return Suppress()
		}
		return Continue(in)
	}, 10))

	h.dispatch(c, []byte(`{"cmd":"chat","text":"hello"}`))
	h.dispatch(c, []byte(`{"cmd":"chat","text":"blocked"}`))
	h.dispatch(c, []byte(`garbage`))
	h.dispatch(c, []byte(`{"cmd":"nope"}`))

	assert.Equal(t, []string{"hello"}, handled)
}

func TestHubDispatchRequiresJoin(t *testing.T) {
	h := NewHub()
	c := testClient(h, &models.ChatUser{ID: "x", UserID: 1, Hash: "h"})

	var cmds []string
	h.HandleCommand(CmdChat, func(_ *models.ChatUser, in *Inbound) { cmds = append(cmds, in.Cmd) })
	h.HandleCommand(CmdJoin, func(_ *models.ChatUser, in *Inbound) { cmds = append(cmds, in.Cmd) })

	h.dispatch(c, []byte(`{"cmd":"chat","text":"early"}`))
	h.dispatch(c, []byte(`{"cmd":"join","nick":"x","channel":"c"}`))

	assert.Equal(t, []string{"join"}, cmds)
}

func TestHubRemoveClientCallsOnLeave(t *testing.T) {
	h := NewHub()
	var left []string
	h.OnLeave(func(u *models.ChatUser) { left = append(left, u.Nick) })

	joined := testClient(h, joinedUser("a", 1, "alice", "lounge", "h1"))
	anon := testClient(h, &models.ChatUser{ID: "b", UserID: 2})

	h.removeClient(joined)
	h.removeClient(anon)
	h.removeClient(joined) // ikinci çağrı etkisiz

	assert.Equal(t, []string{"alice"}, left)
	assert.Equal(t, 0, h.OnlineCount())
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	slow := &Client{hub: h, user: joinedUser("s", 1, "slow", "lounge", "h1"), send: make(chan []byte)}
	h.addClient(slow)

	h.Reply(slow.user, WarnPayload{Cmd: CmdWarn, Text: "x"})

	assert.Equal(t, 0, h.OnlineCount())
	_, ok := <-slow.send
	assert.False(t, ok, "send channel closed")
}

func TestHubRunStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	h.Stop()
	h.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestHubStopWithoutRun(t *testing.T) {
	h := NewHub()
	returned := make(chan struct{})
	go func() {
		h.Stop()
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked although Run never started")
	}
}

func TestHubStopWaitsForRunningCommand(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := NewHub()
	c := testClient(h, joinedUser("a", 1, "alice", "lounge", "h1"))

	entered := make(chan struct{})
	release := make(chan struct{})
	h.HandleCommand(CmdChat, func(*models.ChatUser, *Inbound) {
		close(entered)
		<-release
	})

	go h.Run()
	require.True(t, h.submit(c, []byte(`{"cmd":"chat","text":"hi"}`)))
	<-entered

	stopped := make(chan struct{})
	go func() {
		h.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a command was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the command finished")
	}
	assert.Equal(t, 0, h.OnlineCount())
}

func TestHubDispatchLogsRejectedFrame(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h := NewHub()
	c := testClient(h, joinedUser("a", 1, "alice", "lounge", "h1"))

	called := false
	h.HandleCommand(CmdChat, func(*models.ChatUser, *Inbound) { called = true })
	require.NoError(t, h.Hooks().Register(HookIn, CmdChat, func(*models.ChatUser, *Inbound) HookResult {
		return Reject("text too long")
	}, 10))

	h.dispatch(c, []byte(`{"cmd":"chat","text":"spam"}`))

	assert.False(t, called)
	out := buf.String()
	assert.Contains(t, out, "chat from conn=a rejected: text too long")
	assert.Contains(t, out, `frame={"cmd":"chat","text":"spam"}`)
}

type staticHasher struct{}

func (staticHasher) Hash(address string) string { return "hash:" + address }

func TestHandlerEndToEnd(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	h.HandleCommand(CmdJoin, func(u *models.ChatUser, in *Inbound) {
		u.Nick, _ = in.String("nick")
		u.Channel, _ = in.String("channel")
		h.Reply(u, InfoPayload{Cmd: CmdInfo, Text: "welcome " + u.Nick + " " + u.Hash})
	})

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(h, staticHasher{}, nil).HandleConnection))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"cmd":"join","nick":"alice","channel":"lounge"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var got InfoPayload
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, CmdInfo, got.Cmd)
	assert.Equal(t, "welcome alice hash:127.0.0.1", got.Text)
	assert.False(t, got.Channel)
}

func TestHandlerConnectLimit(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(h, staticHasher{}, denyAll{}).HandleConnection))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 429, resp.StatusCode)
}

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }
