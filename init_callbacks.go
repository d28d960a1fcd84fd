// Package main: WebSocket Hub callback wire-up.
//
// Hub ws paketinde yaşar ve service'leri tanımaz; hook, komut ve
// ayrılma callback'leri burada bağlanır. Hepsi Hub.Run goroutine'inden çağrılır.
package main

import (
	"fmt"

	"github.com/akinalp/hush/ws"
)

// registerHubCallbacks, Hub.Run başlamadan önce çağrılmalıdır.
func registerHubCallbacks(hub *ws.Hub, svcs *Services) error {
	if err := svcs.ShadowMute.RegisterHooks(hub.Hooks()); err != nil {
		return fmt.Errorf("failed to register mute hooks: %w", err)
	}

	svcs.Chat.RegisterCommands(hub)
	svcs.ShadowMute.RegisterCommands(hub)

	hub.OnLeave(svcs.Chat.Leave)
	return nil
}
