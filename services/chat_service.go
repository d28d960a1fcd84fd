package services

import (
	"cmp"
	"log"
	"slices"
	"strings"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/ws"
)

// TripHasher, join şifresinden trip code üretir (*identity.Hasher karşılar).
type TripHasher interface {
	Trip(password string) string
}

// ModTokenValidator, join'deki token alanını doğrulamak için AuthService'in alt kümesi.
type ModTokenValidator interface {
	ValidateModToken(tokenString string) (*models.ModClaims, error)
}

// ChatService, hook zinciri Continue döndükten sonra çalışan varsayılan komutlar.
//
// Susturulmuş kullanıcıların chat/invite/whisper frame'leri buraya hiç
// ulaşmaz; ShadowMuteService onları önceden yutar.
type ChatService interface {
	Join(user *models.ChatUser, payload *ws.Inbound)
	Chat(user *models.ChatUser, payload *ws.Inbound)
	Invite(user *models.ChatUser, payload *ws.Inbound)
	Whisper(user *models.ChatUser, payload *ws.Inbound)

	// Leave, kanala katılmış bir bağlantı koptuğunda çağrılır.
	Leave(user *models.ChatUser)

	RegisterCommands(r ws.CommandRegistrar)
}

type chatService struct {
	hub    ws.EventPublisher
	police Frisker
	tokens TokenSource
	trips  TripHasher
	auth   ModTokenValidator
}

// NewChatService, constructor: interface döner.
func NewChatService(
	hub ws.EventPublisher,
	police Frisker,
	tokens TokenSource,
	trips TripHasher,
	auth ModTokenValidator,
) ChatService {
	return &chatService{
		hub:    hub,
		police: police,
		tokens: tokens,
		trips:  trips,
		auth:   auth,
	}
}

func (s *chatService) RegisterCommands(r ws.CommandRegistrar) {
	r.HandleCommand(ws.CmdJoin, s.Join)
	r.HandleCommand(ws.CmdChat, s.Chat)
	r.HandleCommand(ws.CmdInvite, s.Invite)
	r.HandleCommand(ws.CmdWhisper, s.Whisper)
	r.HandleCommand(ws.CmdPing, func(*models.ChatUser, *ws.Inbound) {})
}

// Join, bağlantıyı bir kanala sokar.
//
// Akış:
// 1. Zaten katıldıysa yok say
// 2. frisk(3) → eşik aşıldıysa warn
// 3. channel ve nick doğrulaması, kanal içinde nick çakışması kontrolü
// 4. pass → trip, token → seviye, protocol → protokol versiyonu
// 5. Kanaldakilere onlineAdd, katılana onlineSet
func (s *chatService) Join(user *models.ChatUser, payload *ws.Inbound) {
	if user.Joined() {
		return
	}

	if s.police.Frisk(user.Address, friskJoin) {
		sendWarn(s.hub, user, "warn.joinTooFast", models.ErrIDRateLimit)
		return
	}

	channel, _ := payload.String("channel")
	channel = strings.TrimSpace(channel)
	if channel == "" {
		sendWarn(s.hub, user, "warn.badChannel", models.ErrIDBadChannel)
		return
	}

	nick, _ := payload.String("nick")
	nick = strings.TrimSpace(nick)
	if !nickPatternRe.MatchString(nick) {
		sendWarn(s.hub, user, "warn.badNick", models.ErrIDBadNick)
		return
	}

	members := s.hub.ChannelUsers(channel)
	for _, m := range members {
		if strings.EqualFold(m.Nick, nick) {
			sendWarn(s.hub, user, "warn.nickTaken", models.ErrIDNickTaken)
			return
		}
	}

	level := models.LevelUser
	if token, ok := payload.String("token"); ok && token != "" {
		claims, err := s.auth.ValidateModToken(token)
		switch {
		case err != nil:
			log.Printf("[chat] rejected mod token for %s: %v", nick, err)
		case !strings.EqualFold(claims.Nick, nick):
			log.Printf("[chat] mod token for %s presented by %s", claims.Nick, nick)
		default:
			level = claims.Level
		}
	}

	trip := ""
	if pass, ok := payload.String("pass"); ok {
		trip = s.trips.Trip(pass)
	}

	protocol := models.ProtocolLegacy
	if v, ok := payload.Number("protocol"); ok && v >= float64(models.ProtocolCurrent) {
		protocol = models.ProtocolCurrent
	}

	color, _ := payload.String("color")
	if !isHexColor(color) {
		color = ""
	}

	user.Nick = nick
	user.Trip = trip
	user.Level = level
	user.UType = models.UTypeForLevel(level)
	user.Protocol = protocol
	user.Color = color

	// onlineAdd, user.Channel set edilmeden gönderilir: katılan kendisi listede değildir.
	s.hub.Broadcast(ws.OnlineAddPayload{Cmd: ws.CmdOnlineAdd, OnlineUser: onlineUser(user, channel, false)},
		ws.Filter{Channel: channel})

	user.Channel = channel

	members = append(members, user)
	slices.SortFunc(members, func(a, b *models.ChatUser) int { return cmp.Compare(a.UserID, b.UserID) })

	set := ws.OnlineSetPayload{Cmd: ws.CmdOnlineSet, Channel: channel}
	for _, m := range members {
		set.Nicks = append(set.Nicks, m.Nick)
		set.Users = append(set.Users, onlineUser(m, channel, m == user))
	}
	s.hub.Reply(user, set)

	log.Printf("[chat] %s joined ?%s (userid=%d level=%d protocol=%d)", nick, channel, user.UserID, level, protocol)
}

// Chat, mesajı kanaldaki herkese yayınlar.
func (s *chatService) Chat(user *models.ChatUser, payload *ws.Inbound) {
	raw, ok := payload.String("text")
	if !ok {
		return
	}
	text := sanitizeText(raw)
	if text == "" {
		return
	}

	if s.police.Frisk(user.Address, textScore(text)) {
		sendWarn(s.hub, user, "warn.tooMuchText", "")
		return
	}

	s.hub.Broadcast(chatPayloadFor(user, text), ws.Filter{Channel: user.Channel})
}

// Invite, hedefe davet bildirimi, gönderene onay gönderir.
func (s *chatService) Invite(user *models.ChatUser, payload *ws.Inbound) {
	if s.police.Frisk(user.Address, friskInvite) {
		sendWarn(s.hub, user, "warn.inviteTooFast", models.ErrIDRateLimit)
		return
	}

	ref, ok := inviteTarget(user, payload)
	if !ok {
		return
	}

	target := s.hub.FindUser(ref)
	if target == nil {
		sendWarn(s.hub, user, "warn.unknownUser", models.ErrIDUnknownUser)
		return
	}

	out := ws.InvitePayload{
		Cmd:           ws.CmdInvite,
		Channel:       user.Channel,
		From:          user.UserID,
		To:            target.UserID,
		InviteChannel: inviteChannel(payload, s.tokens),
	}

	if target.IsLegacy() {
		s.hub.Reply(target, ws.LegacyInviteOut(out, user.Nick, target.Lang))
	} else {
		s.hub.Reply(target, out)
	}
	replyInvite(s.hub, user, target, out)
}

// Whisper, hedefe özel mesaj, gönderene onay gönderir.
func (s *chatService) Whisper(user *models.ChatUser, payload *ws.Inbound) {
	raw, ok := payload.String("text")
	text := ""
	if ok {
		text = sanitizeText(raw)
	}
	if text == "" {
		s.police.Frisk(user.Address, friskMalformedText)
		return
	}

	if s.police.Frisk(user.Address, textScore(text)) {
		sendWarn(s.hub, user, "warn.tooMuchText", "")
		return
	}

	var target *models.ChatUser
	if ref, ok := directTarget(user, payload); ok {
		target = s.hub.FindUser(ref)
	}
	if target == nil {
		sendWarn(s.hub, user, "warn.unknownUser", models.ErrIDUnknownUser)
		return
	}

	out := ws.WhisperPayload{
		Cmd:     ws.CmdWhisper,
		Channel: user.Channel,
		From:    user.UserID,
		To:      target.UserID,
		Text:    text,
	}

	if target.IsLegacy() {
		s.hub.Reply(target, ws.LegacyWhisperOut(out, user, target.Lang))
	} else {
		s.hub.Reply(target, out)
	}
	replyWhisper(s.hub, user, target, out)

	target.WhisperReply = user.Nick
}

func (s *chatService) Leave(user *models.ChatUser) {
	s.hub.Broadcast(ws.OnlineRemovePayload{
		Cmd:     ws.CmdOnlineRemove,
		UserID:  user.UserID,
		Nick:    user.Nick,
		Channel: user.Channel,
	}, ws.Filter{Channel: user.Channel})

	log.Printf("[chat] %s left ?%s", user.Nick, user.Channel)
}

func onlineUser(u *models.ChatUser, channel string, isMe bool) ws.OnlineUser {
	return ws.OnlineUser{
		Nick:    u.Nick,
		Trip:    u.Trip,
		UType:   u.UType,
		UserID:  u.UserID,
		Level:   u.Level,
		Channel: channel,
		Hash:    u.Hash,
		IsMe:    isMe,
	}
}

func isHexColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 3 && len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}
