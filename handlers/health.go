package handlers

import (
	"net/http"

	"github.com/akinalp/hush/pkg"
)

// OnlineCounter, bağlı client sayısını veren kaynak (*ws.Hub karşılar).
type OnlineCounter interface {
	OnlineCount() int
}

// MuteCounter, aktif mute sayısını veren kaynak (repository.MuteRegistry karşılar).
type MuteCounter interface {
	Len() int
}

// HealthResponse, GET /api/health yanıtı.
type HealthResponse struct {
	Status string `json:"status"`
	Online int    `json:"online"`
	Muted  int    `json:"muted"`
}

type HealthHandler struct {
	online OnlineCounter
	mutes  MuteCounter
}

func NewHealthHandler(online OnlineCounter, mutes MuteCounter) *HealthHandler {
	return &HealthHandler{online: online, mutes: mutes}
}

// Get, auth gerektirmez.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Online: h.online.OnlineCount(),
		Muted:  h.mutes.Len(),
	})
}
