// Package main, hush sunucusunun giriş noktasıdır.
//
// Wire-up sırası:
//  1. Config, database, i18n
//  2. Identity hasher, police, bağlantı limiti
//  3. Repository'ler, Hub, service'ler
//  4. Hook/komut/callback kayıtları, sonra `go hub.Run()`
//  5. Handler'lar, route'lar, CORS, HTTP server
//  6. Graceful shutdown
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/hush/config"
	"github.com/akinalp/hush/database"
	"github.com/akinalp/hush/pkg/i18n"
	"github.com/akinalp/hush/pkg/identity"
	"github.com/akinalp/hush/pkg/ratelimit"
	"github.com/akinalp/hush/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] hush server starting...")

	// ─── 1. Config, Database, i18n ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}
	db, err := database.New(cfg.Database.Path, migrations)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := i18n.LoadEmbedded(); err != nil {
		log.Fatalf("[main] failed to load i18n translations: %v", err)
	}

	// ─── 2. Kimlik ve abuse koruması ───
	hasher, err := identity.NewHasher(cfg.Identity.Salt)
	if err != nil {
		log.Fatalf("[main] failed to create identity hasher: %v", err)
	}
	police := ratelimit.NewPolice(cfg.Police.Threshold, cfg.Police.HalfLife)
	defer police.Stop()
	connectLimiter := ratelimit.NewConnectRateLimiter(cfg.Connect.MaxAttempts, cfg.Connect.Window)
	defer connectLimiter.Stop()

	// ─── 3. Repository, Hub, Service ───
	repos := initRepositories(db.Conn)
	hub := ws.NewHub()
	svcs := initServices(repos, hub, police, hasher, cfg)

	// ─── 4. Callback'ler, sonra event loop ───
	if err := registerHubCallbacks(hub, svcs); err != nil {
		log.Fatalf("[main] %v", err)
	}
	go hub.Run()

	// ─── 5. HTTP ───
	h := initHandlers(svcs, repos, hub, hasher, connectLimiter)
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           corsHandler.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// ─── 6. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce yeni request'leri durdur, sonra WebSocket'leri kapat.
	// Bekleyen audit/email işleri DB kapanmadan bitmeli.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] forced shutdown: %v", err)
	}

	hub.Stop()
	svcs.ShadowMute.Close()
	repos.MuteRegistry.Clear()

	log.Println("[main] server stopped gracefully")
}
