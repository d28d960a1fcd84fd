package ws

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"

	"github.com/akinalp/hush/models"
)

// EventPublisher, service katmanının client'lara mesaj göndermek ve
// kullanıcı aramak için kullandığı interface.
//
// Dependency Inversion: Service'ler Hub'ın concrete struct'ına değil,
// bu interface'e bağımlıdır. Service testleri sahte bir publisher kullanır.
type EventPublisher interface {
	Reply(target *models.ChatUser, payload any)
	Broadcast(payload any, filter Filter)
	FindUser(ref TargetRef) *models.ChatUser
	ChannelUsers(channel string) []*models.ChatUser
}

// CommandFunc, hook zinciri Continue döndükten sonra çalışan komut handler'ı.
type CommandFunc func(sender *models.ChatUser, payload *Inbound)

// CommandRegistrar, service'lerin komut kaydı için kullandığı interface.
type CommandRegistrar interface {
	HandleCommand(cmd string, fn CommandFunc)
}

// inboundFrame, ReadPump'tan Run döngüsüne taşınan ham mesaj.
type inboundFrame struct {
	client *Client
	data   []byte
}

// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır.
//
// Tek goroutine kuralı:
// Run() register, unregister ve inbound channel'larını aynı select içinde okur.
// Böylece her frame hook zinciri ve komut handler'ı ile birlikte tamamen
// işlenmeden sıradaki frame'e geçilmez. ChatUser alanları (Nick, Channel,
// WhisperReply...) sadece bu goroutine'den değiştirilir.
type Hub struct {
	// clients: bağlantı ID'si → Client
	clients map[string]*Client

	// mu: clients map'ini korur. Yazma sadece Run goroutine'inden yapılır,
	// okuma HTTP handler'larından da gelebilir (OnlineCount).
	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame

	done     chan struct{}
	stopOnce sync.Once

	// stopped: Run dönerken kapanır. started false ise Stop beklemez.
	stopped chan struct{}
	started atomic.Bool

	hooks    *HookRegistry
	commands map[string]CommandFunc

	// nextUserID: protokolde görünen numeric kullanıcı ID'si üreteci.
	nextUserID atomic.Int64

	onLeave func(user *models.ChatUser)
}

// NewHub, yeni bir Hub oluşturur.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 64),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		hooks:      NewHookRegistry(),
		commands:   make(map[string]CommandFunc),
	}
}

// Hooks, inbound hook registry'sini döner.
func (h *Hub) Hooks() *HookRegistry {
	return h.hooks
}

// HandleCommand, bir komut için handler kaydeder. Run başlamadan önce çağrılmalıdır.
func (h *Hub) HandleCommand(cmd string, fn CommandFunc) {
	h.commands[cmd] = fn
}

// OnLeave, kanala katılmış bir bağlantı koptuğunda çağrılacak callback'i ayarlar.
// Callback Run goroutine'inde çalışır.
func (h *Hub) OnLeave(fn func(user *models.ChatUser)) {
	h.onLeave = fn
}

// NextUserID, yeni bağlantı için numeric kullanıcı ID'si üretir.
func (h *Hub) NextUserID() int64 {
	return h.nextUserID.Add(1)
}

// Run, Hub'ın ana event loop'udur. main.go'da `go hub.Run()` ile başlatılır.
// Stop çağrılınca tüm bağlantıları kapatıp döner. İkinci çağrı hemen döner.
func (h *Hub) Run() {
	if !h.started.CompareAndSwap(false, true) {
		return
	}
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case frame := <-h.inbound:
			h.dispatch(frame.client, frame.data)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop, Run döngüsünü sonlandırır ve Run dönene kadar bekler.
// İşlenmekte olan frame'in komut handler'ı Stop dönmeden biter; main.go
// service'leri bu yüzden Stop'tan sonra kapatabilir. Birden fazla çağrı güvenlidir.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
	if h.started.Load() {
		<-h.stopped
	}
}

// submit, ReadPump'tan gelen frame'i Run döngüsüne iletir.
// Hub durmuşsa false döner.
func (h *Hub) submit(c *Client, data []byte) bool {
	select {
	case h.inbound <- inboundFrame{client: c, data: data}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.user.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("[ws] client connected: conn=%s userid=%d (total: %d)",
		client.user.ID, client.user.UserID, total)
}

// removeClient, client'ı Hub'dan çıkarır ve send channel'ını kapatır.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.user.ID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.user.ID)
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	log.Printf("[ws] client disconnected: conn=%s (remaining: %d)", client.user.ID, total)

	if client.user.Joined() && h.onLeave != nil {
		h.onLeave(client.user)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	log.Println("[ws] hub shut down, all connections closed")
}

// dispatch, tek bir inbound frame'i işler: parse → hook zinciri → komut handler'ı.
func (h *Hub) dispatch(client *Client, data []byte) {
	h.mu.RLock()
	_, alive := h.clients[client.user.ID]
	h.mu.RUnlock()
	if !alive {
		return
	}

	in, err := ParseInbound(data)
	if err != nil {
		log.Printf("[ws] dropping frame from conn=%s: %v", client.user.ID, err)
		return
	}

	user := client.user
	if !user.Joined() && in.Cmd != CmdJoin && in.Cmd != CmdPing {
		return
	}

	result := h.hooks.Run(HookIn, in.Cmd, user, in)
	if result.Rejected() {
		frame, _ := in.MarshalJSON()
		log.Printf("[ws] %s from conn=%s rejected: %s frame=%s", in.Cmd, user.ID, result.Reason, frame)
		return
	}
	if result.Suppressed() {
		return
	}

	fn, ok := h.commands[in.Cmd]
	if !ok {
		log.Printf("[ws] unknown cmd from conn=%s: %q", user.ID, in.Cmd)
		return
	}
	fn(user, result.Payload)
}

// Reply, tek bir bağlantıya payload gönderir.
func (h *Hub) Reply(target *models.ChatUser, payload any) {
	if target == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ws] failed to marshal reply: %v", err)
		return
	}

	h.mu.RLock()
	client, ok := h.clients[target.ID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if !client.deliver(data) {
		h.removeClient(client)
	}
}

// Broadcast, filtreye uyan tüm bağlantılara payload gönderir.
func (h *Hub) Broadcast(payload any, filter Filter) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[ws] failed to marshal broadcast: %v", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		if filter.Match(client.user) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.deliver(data) {
			// Buffer dolu: bu client yavaş, kapat
			h.removeClient(client)
		}
	}
}

// FindUser, hedef tarifine uyan kanaldaki kullanıcıyı döner; yoksa nil.
func (h *Hub) FindUser(ref TargetRef) *models.ChatUser {
	channel := ref.targetChannel()
	if channel == "" {
		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		u := client.user
		if !u.Joined() || u.Channel != channel {
			continue
		}
		switch t := ref.(type) {
		case LegacyTarget:
			if u.Nick == t.Nick {
				return u
			}
		case CurrentTarget:
			if u.UserID == t.UserID {
				return u
			}
		}
	}
	return nil
}

// ChannelUsers, kanala katılmış tüm kullanıcıları döner.
func (h *Hub) ChannelUsers(channel string) []*models.ChatUser {
	h.mu.RLock()
	defer h.mu.RUnlock()

	users := make([]*models.ChatUser, 0)
	for _, client := range h.clients {
		if client.user.Joined() && client.user.Channel == channel {
			users = append(users, client.user)
		}
	}
	return users
}

// OnlineCount, bağlı bağlantı sayısını döner.
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
