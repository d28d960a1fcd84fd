// Package main: HTTP route registration.
package main

import (
	"net/http"

	"github.com/akinalp/hush/middleware"
	"github.com/akinalp/hush/services"
)

// initRoutes, endpoint'leri mux'a bağlar.
//
//	GET /api/health  public
//	GET /api/mutes   moderatör token'ı gerekir
//	GET /ws          chat WebSocket'i
func initRoutes(mux *http.ServeMux, h *Handlers, authService services.AuthService) {
	authMw := middleware.NewAuthMiddleware(authService)

	mux.HandleFunc("GET /api/health", h.Health.Get)
	mux.Handle("GET /api/mutes", authMw.RequireModerator(http.HandlerFunc(h.Mute.List)))

	// Tarayıcılar upgrade sırasında custom header gönderemez; moderatör
	// yetkisi join frame'indeki token alanıyla gelir.
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}
