// Package main: Handler katmanı başlatma.
package main

import (
	"github.com/akinalp/hush/handlers"
	"github.com/akinalp/hush/pkg/identity"
	"github.com/akinalp/hush/pkg/ratelimit"
	"github.com/akinalp/hush/ws"
)

// Handlers, handler instance'larını tutan container struct.
type Handlers struct {
	Health *handlers.HealthHandler
	Mute   *handlers.MuteHandler
	WS     *ws.Handler
}

func initHandlers(
	svcs *Services,
	repos *Repositories,
	hub *ws.Hub,
	hasher *identity.Hasher,
	connectLimiter *ratelimit.ConnectRateLimiter,
) *Handlers {
	return &Handlers{
		Health: handlers.NewHealthHandler(hub, repos.MuteRegistry),
		Mute:   handlers.NewMuteHandler(svcs.ShadowMute),
		WS:     ws.NewHandler(hub, hasher, connectLimiter),
	}
}
