package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg/email"
	"github.com/akinalp/hush/repository"
	"github.com/akinalp/hush/ws"
)

// MuteCommands, mute komutunun adı ve alias'ları.
var MuteCommands = []string{"dumb", "muzzle", "mute"}

// muteHookPriority, interceptor'ların inbound zincirdeki sırası.
// Diğer chat filtrelerinden önce çalışmaları gerekir.
const muteHookPriority = 10

const auditTimeout = 10 * time.Second

// MuteResult, Mute komutunun sonucu.
type MuteResult int

const (
	// MuteIgnored: frame şekli geçersiz, hiçbir şey yapılmadı ve cevap verilmedi.
	MuteIgnored MuteResult = iota
	// MuteDenied: istek yapan moderatör değil; adresine frisk skoru eklendi, cevap yok.
	MuteDenied
	// MuteUnknownUser: hedef kanalda bulunamadı (UNKNOWN_USER warn).
	MuteUnknownUser
	// MutePermission: hedefin seviyesi istek yapana eşit veya yüksek (PERMISSION warn).
	MutePermission
	// MuteApplied: kayıt registry'ye yazıldı, moderatörlere duyuruldu.
	MuteApplied
)

func (r MuteResult) String() string {
	switch r {
	case MuteIgnored:
		return "ignored"
	case MuteDenied:
		return "denied"
	case MuteUnknownUser:
		return "unknown_user"
	case MutePermission:
		return "permission"
	case MuteApplied:
		return "applied"
	default:
		return fmt.Sprintf("MuteResult(%d)", int(r))
	}
}

// ShadowMuteService, gölge susturma (shadow mute) iş mantığı.
//
// Susturulan kullanıcının chat, invite ve whisper frame'leri normal
// handler'lara ulaşmadan yakalanır. Kullanıcıya her şey yolundaymış gibi
// sahte onaylar gönderilir; diğer kullanıcılar hiçbir şey görmez
// (chat'te ally listesi hariç).
type ShadowMuteService interface {
	// Mute, dumb/muzzle/mute komutunu işler.
	Mute(requester *models.ChatUser, payload *ws.Inbound) MuteResult

	// ChatCheck, chat frame'leri için inbound hook.
	ChatCheck(sender *models.ChatUser, payload *ws.Inbound) ws.HookResult

	// InviteCheck, invite frame'leri için inbound hook.
	InviteCheck(sender *models.ChatUser, payload *ws.Inbound) ws.HookResult

	// WhisperCheck, whisper frame'leri için inbound hook.
	WhisperCheck(sender *models.ChatUser, payload *ws.Inbound) ws.HookResult

	// RegisterHooks, üç interceptor'ı aynı priority ile kaydeder.
	RegisterHooks(r ws.HookRegistrar) error

	// RegisterCommands, mute komutunu ve alias'larını kaydeder.
	RegisterCommands(r ws.CommandRegistrar)

	// ListMutes, aktif mute'ları ve son audit kayıtlarını döner.
	ListMutes(ctx context.Context, limit int) (*models.MuteListResponse, error)

	// Close, bekleyen audit/email işlerinin bitmesini bekler.
	Close()
}

type shadowMuteService struct {
	registry  repository.MuteRegistry
	auditRepo repository.MuteAuditRepository
	hub       ws.EventPublisher
	police    Frisker
	tokens    TokenSource
	alerter   email.AlertSender

	wg sync.WaitGroup
}

// NewShadowMuteService, constructor: interface döner.
// auditRepo ve alerter nil olabilir.
func NewShadowMuteService(
	registry repository.MuteRegistry,
	auditRepo repository.MuteAuditRepository,
	hub ws.EventPublisher,
	police Frisker,
	tokens TokenSource,
	alerter email.AlertSender,
) ShadowMuteService {
	return &shadowMuteService{
		registry:  registry,
		auditRepo: auditRepo,
		hub:       hub,
		police:    police,
		tokens:    tokens,
		alerter:   alerter,
	}
}

func (s *shadowMuteService) RegisterHooks(r ws.HookRegistrar) error {
	hooks := []struct {
		event string
		fn    ws.HookFunc
	}{
		{ws.CmdChat, s.ChatCheck},
		{ws.CmdInvite, s.InviteCheck},
		{ws.CmdWhisper, s.WhisperCheck},
	}

	for _, h := range hooks {
		if err := r.Register(ws.HookIn, h.event, h.fn, muteHookPriority); err != nil {
			return fmt.Errorf("failed to register %s hook: %w", h.event, err)
		}
	}
	return nil
}

func (s *shadowMuteService) RegisterCommands(r ws.CommandRegistrar) {
	for _, cmd := range MuteCommands {
		r.HandleCommand(cmd, func(requester *models.ChatUser, payload *ws.Inbound) {
			s.Mute(requester, payload)
		})
	}
}

// Mute, hedefi susturur.
//
// Akış:
// 1. Moderatör değilse → frisk(10), sessizce bitir
// 2. Hedef tarifini protokole göre çıkar; geçersizse sessizce bitir
// 3. Hedefi bul; yoksa UNKNOWN_USER
// 4. Hedef seviyesi >= istek yapanınki ise PERMISSION
// 5. Registry'ye yaz, moderatörlere duyur, audit kaydını arka planda yaz
func (s *shadowMuteService) Mute(requester *models.ChatUser, payload *ws.Inbound) MuteResult {
	if !models.IsModerator(requester.Level) {
		s.police.Frisk(requester.Address, friskMuteProbe)
		return MuteDenied
	}

	ref, ok := directTarget(requester, payload)
	if !ok {
		return MuteIgnored
	}
	channel := targetChannel(ref)

	target := s.hub.FindUser(ref)
	if target == nil {
		sendWarn(s.hub, requester, "warn.unknownUser", models.ErrIDUnknownUser)
		return MuteUnknownUser
	}

	if target.Level >= requester.Level {
		sendWarn(s.hub, requester, "warn.sameLevel", models.ErrIDPermission)
		return MutePermission
	}

	record := models.MuteRecord{Muted: true}
	if allies, ok := payload.Strings("allies"); ok {
		record.Allies = allies
	}
	s.registry.Put(target.Hash, record)

	s.hub.Broadcast(ws.InfoPayload{
		Cmd: ws.CmdInfo,
		Text: fmt.Sprintf("%s#%s muzzled %s in %s, userhash: %s",
			requester.Nick, requester.Trip, target.Nick, channel, target.Hash),
		Channel: false,
	}, ws.Filter{Level: models.IsModerator})

	log.Printf("[moderation] %s muzzled %s (hash=%s) in %s, allies=%v",
		requester.Nick, target.Nick, target.Hash, channel, record.Allies)

	s.recordMute(models.MuteAudit{
		ModeratorNick: requester.Nick,
		ModeratorTrip: requester.Trip,
		TargetNick:    target.Nick,
		TargetHash:    target.Hash,
		Channel:       channel,
		Allies:        record.Allies,
	})

	return MuteApplied
}

// ChatCheck, susturulmuş gönderenin mesajını sadece kendi bağlantılarına
// ve ally'lerine yayınlar, frame'i yutar.
func (s *shadowMuteService) ChatCheck(sender *models.ChatUser, payload *ws.Inbound) ws.HookResult {
	text, ok := payload.String("text")
	if !ok {
		return ws.Reject("chat text is not a string")
	}

	record, muted := s.registry.Get(sender.Hash)
	if !muted {
		return ws.Continue(payload)
	}

	out := chatPayloadFor(sender, text)

	// Aynı hash'e sahip diğer bağlantılar (gönderenin kendisi dahil)
	s.hub.Broadcast(out, ws.Filter{Channel: sender.Channel, Hash: sender.Hash})

	if record.HasAllies() {
		s.hub.Broadcast(out, ws.Filter{Channel: sender.Channel, Nicks: record.Allies})
	}

	s.police.Frisk(sender.Address, friskMutedChat)

	return ws.Suppress()
}

// InviteCheck, susturulmuş gönderene sahte bir davet onayı döner.
// Hedefe hiçbir şey gitmez.
func (s *shadowMuteService) InviteCheck(sender *models.ChatUser, payload *ws.Inbound) ws.HookResult {
	if _, muted := s.registry.Get(sender.Hash); !muted {
		return ws.Continue(payload)
	}

	if s.police.Frisk(sender.Address, friskInvite) {
		sendWarn(s.hub, sender, "warn.inviteTooFast", models.ErrIDRateLimit)
		return ws.Suppress()
	}

	ref, ok := inviteTarget(sender, payload)
	if !ok {
		return ws.Suppress()
	}

	target := s.hub.FindUser(ref)
	if target == nil {
		sendWarn(s.hub, sender, "warn.unknownUser", models.ErrIDUnknownUser)
		return ws.Suppress()
	}

	replyInvite(s.hub, sender, target, ws.InvitePayload{
		Cmd:           ws.CmdInvite,
		Channel:       sender.Channel,
		From:          sender.UserID,
		To:            target.UserID,
		InviteChannel: inviteChannel(payload, s.tokens),
	})

	return ws.Suppress()
}

// WhisperCheck, susturulmuş gönderene sahte bir fısıltı onayı döner.
// Hedefe mesaj gitmez, ama hedefin "son fısıldayan" alanı gönderene ayarlanır.
func (s *shadowMuteService) WhisperCheck(sender *models.ChatUser, payload *ws.Inbound) ws.HookResult {
	if _, muted := s.registry.Get(sender.Hash); !muted {
		return ws.Continue(payload)
	}

	raw, ok := payload.String("text")
	text := ""
	if ok {
		text = sanitizeText(raw)
	}
	if text == "" {
		s.police.Frisk(sender.Address, friskMalformedText)
		return ws.Suppress()
	}

	if s.police.Frisk(sender.Address, textScore(text)) {
		sendWarn(s.hub, sender, "warn.tooMuchText", "")
		return ws.Suppress()
	}

	var target *models.ChatUser
	if ref, ok := directTarget(sender, payload); ok {
		target = s.hub.FindUser(ref)
	}
	if target == nil {
		sendWarn(s.hub, sender, "warn.unknownUser", models.ErrIDUnknownUser)
		return ws.Suppress()
	}

	replyWhisper(s.hub, sender, target, ws.WhisperPayload{
		Cmd:     ws.CmdWhisper,
		Channel: sender.Channel,
		From:    sender.UserID,
		To:      target.UserID,
		Text:    text,
	})

	target.WhisperReply = sender.Nick

	return ws.Suppress()
}

func (s *shadowMuteService) ListMutes(ctx context.Context, limit int) (*models.MuteListResponse, error) {
	resp := &models.MuteListResponse{
		Active: s.registry.Snapshot(),
		Recent: []models.MuteAudit{},
	}

	if s.auditRepo == nil {
		return resp, nil
	}

	recent, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	resp.Recent = recent
	return resp, nil
}

func (s *shadowMuteService) Close() {
	s.wg.Wait()
}

// recordMute, audit kaydını ve moderatör email'ini dispatch döngüsünü
// bloklamadan arka planda gönderir.
func (s *shadowMuteService) recordMute(audit models.MuteAudit) {
	if s.auditRepo == nil && s.alerter == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
		defer cancel()

		if s.auditRepo != nil {
			if err := s.auditRepo.Create(ctx, &audit); err != nil {
				log.Printf("[moderation] failed to persist mute audit for %s: %v", audit.TargetHash, err)
			}
		}

		if s.alerter != nil {
			alert := email.MuteAlert{
				ModeratorNick: audit.ModeratorNick,
				ModeratorTrip: audit.ModeratorTrip,
				TargetNick:    audit.TargetNick,
				TargetHash:    audit.TargetHash,
				Channel:       audit.Channel,
				Allies:        audit.Allies,
			}
			if err := s.alerter.SendMuteAlert(ctx, alert); err != nil {
				log.Printf("[moderation] failed to send mute alert for %s: %v", audit.TargetHash, err)
			}
		}
	}()
}
