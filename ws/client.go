package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akinalp/hush/models"
)

// WebSocket bağlantı sabitleri
const (
	// writeWait: Bir mesajı yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Bu süre içinde client'tan hiçbir şey (frame veya pong) gelmezse
	// bağlantı kopmuş sayılır.
	pongWait = 60 * time.Second

	// pingPeriod: Sunucunun ping gönderme aralığı. pongWait'ten kısa olmalı.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize: Client'ın gönderebileceği maksimum frame boyutu (byte).
	// Daha büyük frame'ler bağlantıyı kapatır.
	maxMessageSize = 16 * 1024

	// sendBufferSize: Her client'ın send channel'ının buffer boyutu.
	// Buffer doluysa (client yavaş) client disconnect edilir.
	sendBufferSize = 256
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her bağlantı için iki goroutine vardır:
// - ReadPump: Client'dan gelen frame'leri okur → Hub.inbound
// - WritePump: send channel'daki mesajları WebSocket'e yazar (+ periyodik ping)
//
// user alanı bağlantının oturum durumudur ve sadece Hub.Run goroutine'inden
// değiştirilir.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	user *models.ChatUser
	send chan []byte
	mu   sync.Mutex // conn.WriteMessage çağrılarını korur
}

// newClient, Hub'a kaydedilmeye hazır bir Client oluşturur.
func newClient(hub *Hub, conn *websocket.Conn, user *models.ChatUser) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		user: user,
		send: make(chan []byte, sendBufferSize),
	}
}

// User, bağlantının oturum durumunu döner.
func (c *Client) User() *models.ChatUser {
	return c.user
}

// deliver, mesajı send buffer'ına bırakır. Buffer doluysa false döner.
func (c *Client) deliver(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		log.Printf("[ws] send buffer full for conn=%s, dropping connection", c.user.ID)
		return false
	}
}

// ReadPump, WebSocket bağlantısından gelen frame'leri okur ve Hub'a iletir.
//
// Bağlantı kapanana kadar döngüde kalır. Çıkışta client'ı Hub'dan çıkarır.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("[ws] failed to set read deadline for conn=%s: %v", c.user.ID, err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, rawMessage, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for conn=%s: %v", c.user.ID, err)
			}
			return
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		if messageType != websocket.TextMessage {
			log.Printf("[ws] ignoring non-text frame from conn=%s", c.user.ID)
			continue
		}

		if !c.hub.submit(c, rawMessage) {
			return
		}
	}
}

// WritePump, send channel'daki mesajları WebSocket bağlantısına yazar.
// pingPeriod'da bir ping göndererek ölü bağlantıları tespit eder.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Channel kapatıldı: Hub client'ı çıkardı
				c.writeMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.writeMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// writeMessage, WebSocket'e mesaj yazar (mutex ile korunur).
// gorilla/websocket aynı anda birden fazla yazmaya izin vermez.
func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
