package services

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg/i18n"
	"github.com/akinalp/hush/ws"
)

// Frisker, adres bazlı kötüye kullanım skorlayıcısı (ratelimit.Police).
// Frisk skoru ekler ve eşik aşıldıysa true döner.
type Frisker interface {
	Frisk(address string, score float64) bool
}

// TokenSource, davet kanalı token'ı için rastgelelik kaynağı.
// *rand.Rand bu interface'i karşılar; testler sabit seed'li kaynak verir.
type TokenSource interface {
	IntN(n int) int
}

// NewTokenSource, PCG tabanlı bir TokenSource oluşturur.
// seed 0 ise rastgele bir seed seçilir.
func NewTokenSource(seed uint64) TokenSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Frisk skorları
const (
	friskJoin           = 3
	friskInvite         = 2
	friskMuteProbe      = 10
	friskMutedChat      = 9
	friskMalformedText  = 13
	textScoreDivisor    = 83.0 * 4
	inviteTokenLength   = 8
	inviteTokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	// \s sadece ASCII boşluk yakalar; NBSP, ideographic space ve BOM de boşluk sayılır.
	edgeBlankRe   = regexp.MustCompile(`^[\s\p{Zs}\x{FEFF}]*\n|^[\s\p{Zs}\x{FEFF}]+$|\n[\s\p{Zs}\x{FEFF}]*$`)
	newlineRunRe  = regexp.MustCompile(`\n{3,}`)
	nickPatternRe = regexp.MustCompile(`^[a-zA-Z0-9_]{1,24}$`)
)

// sanitizeText, baştaki ve sondaki boş satırları siler, 3+ ardışık
// satır sonunu 2'ye indirir. Çıktıya tekrar uygulamak çıktıyı değiştirmez.
//
// Kenar temizliği sabit noktaya kadar tekrarlanır: "  \n\n  " tek geçişte
// "  " bırakır, ikinci geçişte boşalır.
func sanitizeText(text string) string {
	for {
		next := edgeBlankRe.ReplaceAllString(text, "")
		if next == text {
			break
		}
		text = next
	}
	return newlineRunRe.ReplaceAllString(text, "\n\n")
}

// textScore, metin uzunluğuyla orantılı frisk skoru.
func textScore(text string) float64 {
	return float64(utf8.RuneCountInString(text)) / textScoreDivisor
}

// inviteChannel, davet edilecek kanalı belirler: "to" dolu bir string ise
// aynen kullanılır, aksi halde 8 karakterlik [a-z0-9] token üretilir.
func inviteChannel(payload *ws.Inbound, tokens TokenSource) string {
	if to, ok := payload.String("to"); ok && to != "" {
		return to
	}

	var b strings.Builder
	b.Grow(inviteTokenLength)
	for range inviteTokenLength {
		b.WriteByte(inviteTokenAlphabet[tokens.IntN(len(inviteTokenAlphabet))])
	}
	return b.String()
}

// inviteTarget, invite frame'inden hedef tarifini çıkarır.
//
// Eski protokol: nick string olmalı, kanal gönderenin kanalıdır.
// Güncel protokol: userid tam sayı ve channel string olmalı.
func inviteTarget(sender *models.ChatUser, payload *ws.Inbound) (ws.TargetRef, bool) {
	if sender.IsLegacy() {
		nick, ok := payload.String("nick")
		if !ok || sender.Channel == "" {
			return nil, false
		}
		return ws.LegacyTarget{Nick: nick, Channel: sender.Channel}, true
	}

	id, ok := payload.Int("userid")
	if !ok {
		return nil, false
	}
	channel, ok := payload.String("channel")
	if !ok {
		return nil, false
	}
	return ws.CurrentTarget{UserID: id, Channel: channel}, true
}

// directTarget, dumb ve whisper frame'lerinden hedef tarifini çıkarır.
// Güncel protokolde channel verilmemişse gönderenin kanalı kullanılır.
func directTarget(sender *models.ChatUser, payload *ws.Inbound) (ws.TargetRef, bool) {
	if sender.IsLegacy() {
		nick, ok := payload.String("nick")
		if !ok {
			return nil, false
		}
		return ws.LegacyTarget{Nick: nick, Channel: sender.Channel}, true
	}

	id, ok := payload.Int("userid")
	if !ok {
		return nil, false
	}
	channel := sender.Channel
	if c, ok := payload.String("channel"); ok {
		channel = c
	}
	return ws.CurrentTarget{UserID: id, Channel: channel}, true
}

// targetChannel, çözümlenmiş hedef tarifinin kanalını döner.
func targetChannel(ref ws.TargetRef) string {
	switch t := ref.(type) {
	case ws.LegacyTarget:
		return t.Channel
	case ws.CurrentTarget:
		return t.Channel
	default:
		return ""
	}
}

// chatPayloadFor, kullanıcının görünen özellikleriyle bir chat payload'ı kurar.
func chatPayloadFor(sender *models.ChatUser, text string) ws.ChatPayload {
	return ws.ChatPayload{
		Cmd:     ws.CmdChat,
		Nick:    sender.Nick,
		UType:   sender.UType,
		UserID:  sender.UserID,
		Channel: sender.Channel,
		Text:    text,
		Level:   sender.Level,
		Trip:    sender.Trip,
		Color:   sender.Color,
	}
}

// sendWarn, kullanıcıya kendi dilinde bir warn gönderir. code boşsa id alanı yazılmaz.
func sendWarn(hub ws.EventPublisher, to *models.ChatUser, key, code string) {
	hub.Reply(to, ws.WarnPayload{
		Cmd:     ws.CmdWarn,
		Text:    i18n.NewLocalizer(to.Lang).T(key),
		ID:      code,
		Channel: to.Channel,
	})
}

// replyInvite, davet onayını gönderene protokolüne uygun şekilde iletir.
func replyInvite(hub ws.EventPublisher, sender, target *models.ChatUser, out ws.InvitePayload) {
	if sender.IsLegacy() {
		hub.Reply(sender, ws.LegacyInviteReply(out, target.Nick, sender.Lang))
		return
	}
	hub.Reply(sender, out)
}

// replyWhisper, fısıltı onayını gönderene protokolüne uygun şekilde iletir.
func replyWhisper(hub ws.EventPublisher, sender, target *models.ChatUser, out ws.WhisperPayload) {
	if sender.IsLegacy() {
		hub.Reply(sender, ws.LegacyWhisperReply(out, target.Nick, sender.Lang))
		return
	}
	hub.Reply(sender, out)
}
