package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/akinalp/hush/pkg"
	"github.com/akinalp/hush/services"
)

const (
	defaultMuteListLimit = 50
	maxMuteListLimit     = 500
)

// MuteHandler, aktif mute'ları ve audit geçmişini moderatörlere açar.
type MuteHandler struct {
	muteService services.ShadowMuteService
}

func NewMuteHandler(muteService services.ShadowMuteService) *MuteHandler {
	return &MuteHandler{muteService: muteService}
}

// List, aktif registry'yi ve son audit kayıtlarını döner.
//
// GET /api/mutes?limit=50
func (h *MuteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultMuteListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMuteListLimit {
			pkg.Error(w, fmt.Errorf("%w: limit must be between 1 and %d", pkg.ErrBadRequest, maxMuteListLimit))
			return
		}
		limit = n
	}

	resp, err := h.muteService.ListMutes(r.Context(), limit)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if claims, ok := ClaimsFrom(r.Context()); ok {
		log.Printf("[api] %s listed mutes (active=%d)", claims.Nick, len(resp.Active))
	}
	pkg.JSON(w, http.StatusOK, resp)
}
