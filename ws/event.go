// Package ws, WebSocket bağlantı yönetimi ve komut dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten ve inbound frame'leri sırayla işleyen merkezi yapı
// - Client: Her WebSocket bağlantısını temsil eder
// - HookRegistry: Komut handler'ından önce çalışan inbound filtreler
// - Payload tipleri: Client'a giden cmd-tagged JSON mesajlar
//
// Event akışı:
// 1. Client { "cmd": "chat", "text": "..." } gönderir → ReadPump → hub.inbound
// 2. Hub.Run() frame'i parse eder, "in" hook zincirini priority sırasıyla çalıştırır
// 3. Zincir Continue dönerse komut handler'ı çağrılır (ör: chat → kanala broadcast)
// 4. Handler Reply/Broadcast ile payload üretir, her client'ın WritePump'ı yazar
package ws

// Client → Server komutları
const (
	CmdJoin    = "join"
	CmdChat    = "chat"
	CmdInvite  = "invite"
	CmdWhisper = "whisper"
	CmdPing    = "ping"
)

// Server → Client komutları
const (
	CmdWarn         = "warn"
	CmdInfo         = "info"
	CmdOnlineSet    = "onlineSet"
	CmdOnlineAdd    = "onlineAdd"
	CmdOnlineRemove = "onlineRemove"
)

// Legacy info payload'larının type alanı
const (
	InfoTypeInvite  = "invite"
	InfoTypeWhisper = "whisper"
)

// WarnPayload, tek bir kullanıcıya giden uyarı.
// ID: makine tarafından okunabilir hata kodu (models.ErrID*), yoksa alan yazılmaz.
type WarnPayload struct {
	Cmd     string `json:"cmd"`
	Text    string `json:"text"`
	ID      string `json:"id,omitempty"`
	Channel string `json:"channel"`
}

// InfoPayload, kanal bağımsız (global) bilgi mesajı. Channel her zaman false yazılır.
type InfoPayload struct {
	Cmd     string `json:"cmd"`
	Text    string `json:"text"`
	Channel bool   `json:"channel"`
}

// LegacyInfoPayload, eski protokol client'larına giden invite/whisper bildirimi.
//
// Eski client'lar invite ve whisper cmd'lerini tanımaz; bunun yerine
// type alanı dolu bir info mesajı bekler.
type LegacyInfoPayload struct {
	Cmd           string `json:"cmd"`
	Type          string `json:"type"`
	From          string `json:"from,omitempty"`
	Trip          string `json:"trip,omitempty"`
	Level         int    `json:"level,omitempty"`
	UType         string `json:"uType,omitempty"`
	InviteChannel string `json:"inviteChannel,omitempty"`
	Text          string `json:"text"`
	Channel       string `json:"channel"`
}

// ChatPayload, kanala yayınlanan sohbet mesajı.
type ChatPayload struct {
	Cmd     string `json:"cmd"`
	Nick    string `json:"nick"`
	UType   string `json:"uType"`
	UserID  int64  `json:"userid"`
	Channel string `json:"channel"`
	Text    string `json:"text"`
	Level   int    `json:"level"`
	Trip    string `json:"trip,omitempty"`
	Color   string `json:"color,omitempty"`
}

// InvitePayload, bir kullanıcıyı başka kanala davet bildirimi.
type InvitePayload struct {
	Cmd           string `json:"cmd"`
	Channel       string `json:"channel"`
	From          int64  `json:"from"`
	To            int64  `json:"to"`
	InviteChannel string `json:"inviteChannel"`
}

// WhisperPayload, iki kullanıcı arası özel mesaj.
type WhisperPayload struct {
	Cmd     string `json:"cmd"`
	Channel string `json:"channel"`
	From    int64  `json:"from"`
	To      int64  `json:"to"`
	Text    string `json:"text"`
}

// OnlineUser, onlineSet/onlineAdd içinde yer alan kullanıcı özeti.
type OnlineUser struct {
	Nick    string `json:"nick"`
	Trip    string `json:"trip"`
	UType   string `json:"uType"`
	UserID  int64  `json:"userid"`
	Level   int    `json:"level"`
	Channel string `json:"channel"`
	Hash    string `json:"hash"`
	IsMe    bool   `json:"isme"`
}

// OnlineSetPayload, join sonrası katılan kullanıcıya kanaldaki herkesin listesi.
type OnlineSetPayload struct {
	Cmd     string       `json:"cmd"`
	Nicks   []string     `json:"nicks"`
	Users   []OnlineUser `json:"users"`
	Channel string       `json:"channel"`
}

// OnlineAddPayload, kanala yeni biri katıldığında diğerlerine giden bildirim.
type OnlineAddPayload struct {
	Cmd string `json:"cmd"`
	OnlineUser
}

// OnlineRemovePayload, kanaldan biri ayrıldığında giden bildirim.
type OnlineRemovePayload struct {
	Cmd     string `json:"cmd"`
	UserID  int64  `json:"userid"`
	Nick    string `json:"nick"`
	Channel string `json:"channel"`
}
