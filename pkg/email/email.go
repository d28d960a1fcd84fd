// Package email, moderasyon olaylarını email ile bildirmek için soyutlama katmanı sağlar.
//
// AlertSender interface'i ile gönderim detayları soyutlanır (Dependency Inversion).
// Şu anki implementasyon Resend API kullanır. Konfigürasyon yoksa main.go
// sender oluşturmaz ve service nil sender ile çalışır.
package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v3"
)

// MuteAlert, bir mute işleminin email'e konu olan özeti.
type MuteAlert struct {
	ModeratorNick string
	ModeratorTrip string
	TargetNick    string
	TargetHash    string
	Channel       string
	Allies        []string
}

// AlertSender, moderasyon alert'leri için interface.
type AlertSender interface {
	// SendMuteAlert, moderatör ekibine bir kullanıcının susturulduğunu bildirir.
	SendMuteAlert(ctx context.Context, alert MuteAlert) error
}

// resendSender, Resend API ile email gönderen AlertSender implementasyonu.
type resendSender struct {
	client    *resend.Client
	fromEmail string
	to        []string
}

// NewResendSender, Resend API client'ı ile yeni bir AlertSender oluşturur.
//
// to: virgülle ayrılmış alıcı listesi (ör: "mods@example.org,admin@example.org").
func NewResendSender(apiKey, fromEmail, to string) AlertSender {
	var recipients []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}

	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		to:        recipients,
	}
}

// SendMuteAlert, mute alert email'i gönderir.
//
// Kullanıcı kontrolündeki tüm alanlar (nick, kanal, ally'ler) HTML escape edilir.
func (s *resendSender) SendMuteAlert(ctx context.Context, alert MuteAlert) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("hush <%s>", s.fromEmail),
		To:      s.to,
		Subject: fmt.Sprintf("[hush] %s muzzled in ?%s", alert.TargetNick, alert.Channel),
		Html:    renderMuteAlert(alert),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send mute alert email: %w", err)
	}
	return nil
}

// renderMuteAlert, alert'in HTML gövdesini üretir.
func renderMuteAlert(alert MuteAlert) string {
	moderator := alert.ModeratorNick
	if alert.ModeratorTrip != "" {
		moderator += "#" + alert.ModeratorTrip
	}

	allies := "none"
	if len(alert.Allies) > 0 {
		allies = strings.Join(alert.Allies, ", ")
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"></head>`)
	b.WriteString(`<body style="font-family:Arial,Helvetica,sans-serif;background:#1a1a2e;color:#e2e8f0;padding:24px;">`)
	b.WriteString(`<h2 style="margin:0 0 16px 0;">Shadow mute applied</h2>`)
	b.WriteString(`<table cellpadding="4" style="color:#94a3b8;font-size:14px;">`)
	row := func(label, value string) {
		fmt.Fprintf(&b, `<tr><td><b>%s</b></td><td>%s</td></tr>`, label, html.EscapeString(value))
	}
	row("Moderator", moderator)
	row("Target", alert.TargetNick)
	row("User hash", alert.TargetHash)
	row("Channel", alert.Channel)
	row("Allies", allies)
	b.WriteString(`</table></body></html>`)

	return b.String()
}
