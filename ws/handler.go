package ws

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg/i18n"
	"github.com/akinalp/hush/pkg/ratelimit"
)

// IdentityHasher, bağlantı adresinden kalıcı kimlik hash'i türetir.
//
// ws paketinin pkg/identity'ye doğrudan bağlanmaması için küçük bir interface;
// main.go'da *identity.Hasher bunu otomatik olarak karşılar.
type IdentityHasher interface {
	Hash(address string) string
}

// ConnectLimiter, IP bazlı bağlantı limiti için interface.
type ConnectLimiter interface {
	Allow(ip string) bool
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Chat client'ları farklı origin'lerden bağlanabilir (gömülü widget'lar dahil).
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ı.
type Handler struct {
	hub     *Hub
	hasher  IdentityHasher
	limiter ConnectLimiter
}

// NewHandler, yeni bir WebSocket handler oluşturur.
// limiter nil olabilir; bu durumda bağlantı limiti uygulanmaz.
func NewHandler(hub *Hub, hasher IdentityHasher, limiter ConnectLimiter) *Handler {
	return &Handler{
		hub:     hub,
		hasher:  hasher,
		limiter: limiter,
	}
}

// HandleConnection, HTTP bağlantısını WebSocket'e yükseltir ve client'ı Hub'a kaydeder.
//
// Kimlik doğrulama burada yapılmaz: herkes anonim bağlanır, nick ve
// (opsiyonel) moderatör token'ı join komutuyla gelir.
//
// Flow:
// 1. IP'yi çıkar, bağlantı limitini kontrol et
// 2. HTTP → WebSocket upgrade
// 3. ChatUser oluştur (bağlantı ID'si, numeric userid, hash, dil)
// 4. Hub'a kaydet, ReadPump ve WritePump'ı başlat
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	address := ratelimit.ExtractIP(r)

	if h.limiter != nil && !h.limiter.Allow(address) {
		log.Printf("[ws] connection rate limit exceeded for %s", address)
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for %s: %v", address, err)
		return
	}

	user := &models.ChatUser{
		ID:       uuid.New().String(),
		UserID:   h.hub.NextUserID(),
		Hash:     h.hasher.Hash(address),
		Address:  address,
		Lang:     i18n.DetectLanguage(r.Header.Get("Accept-Language")),
		Protocol: models.ProtocolLegacy,
		Level:    models.LevelUser,
		UType:    models.UTypeForLevel(models.LevelUser),
	}

	client := newClient(h.hub, conn, user)

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	// ReadPump mevcut goroutine'de çalışır ve bağlantı kapanana kadar bloklar.
	go client.WritePump()
	client.ReadPump()
}
