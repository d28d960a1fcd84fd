// Package main: Service katmanı başlatma.
//
// Sıralama: AuthService, ChatService'ten önce oluşturulur (join token doğrulaması).
// ShadowMuteService hook'ları, ChatService komutlarından bağımsızdır ama
// ikisi de Hub.Run başlamadan register edilmelidir.
package main

import (
	"log"

	"github.com/akinalp/hush/config"
	"github.com/akinalp/hush/pkg/email"
	"github.com/akinalp/hush/pkg/identity"
	"github.com/akinalp/hush/pkg/ratelimit"
	"github.com/akinalp/hush/services"
	"github.com/akinalp/hush/ws"
)

// Services, service instance'larını tutan container struct.
type Services struct {
	Auth       services.AuthService
	Chat       services.ChatService
	ShadowMute services.ShadowMuteService
}

func initServices(
	repos *Repositories,
	hub *ws.Hub,
	police *ratelimit.Police,
	hasher *identity.Hasher,
	cfg *config.Config,
) *Services {
	authService := services.NewAuthService(cfg.JWT.Secret)

	// Aynı RNG hem gerçek hem sahte davetlerin token'larını üretir.
	// Tek goroutine'den (Hub.Run) çağrıldığı için paylaşılması güvenli.
	tokens := services.NewTokenSource(cfg.Moderation.TokenSeed)

	var alerter email.AlertSender
	if cfg.Email.Enabled() {
		alerter = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AlertTo)
		log.Printf("[main] mute alert emails enabled (from=%s)", cfg.Email.FromEmail)
	}

	chatService := services.NewChatService(hub, police, tokens, hasher, authService)
	shadowMuteService := services.NewShadowMuteService(repos.MuteRegistry, repos.MuteAudit, hub, police, tokens, alerter)

	return &Services{
		Auth:       authService,
		Chat:       chatService,
		ShadowMute: shadowMuteService,
	}
}
