// Package models: ChatUser: tek bir WebSocket bağlantısının kimlik ve oturum durumu.
//
// Bir kişi birden fazla bağlantı açabilir (ör: iki sekme). Her bağlantının
// kendi ChatUser'ı vardır ama aynı adresten gelenler aynı Hash'i paylaşır.
// Mute kaydı Hash üzerinden tutulduğu için yeniden bağlanmak mute'u kaldırmaz.
//
// Alanlar sadece Hub'ın dispatch döngüsünden değiştirilir (tek goroutine),
// bu yüzden ayrıca kilit gerekmez.
package models

// Protocol, client'ın konuştuğu wire formatının versiyonu.
type Protocol int

const (
	// ProtocolLegacy: eski client'lar. Payload'larda channel/userid yoktur,
	// hedef nick ile belirtilir ve kanal bağlantı durumundan çıkarılır.
	ProtocolLegacy Protocol = 1
	// ProtocolCurrent: hedef numeric userid ve açık channel ile belirtilir.
	ProtocolCurrent Protocol = 2
)

// ChatUser, bağlı bir client'ın sunucu tarafı durumu.
type ChatUser struct {
	ID       string // bağlantı ID'si (uuid)
	UserID   int64  // protokolde kullanılan numeric kullanıcı ID'si
	Nick     string
	Trip     string
	Color    string
	UType    string // legacy görüntü tipi ("user", "mod", "admin")
	Level    int
	Channel  string
	Hash     string // adresten türetilen kalıcı kimlik
	Address  string
	Lang     string
	Protocol Protocol

	// WhisperReply, "son fısıldayana cevap ver" kısayolunun hedef nick'i.
	WhisperReply string
}

// Joined, kullanıcının bir kanala katılıp katılmadığını döner.
func (u *ChatUser) Joined() bool {
	return u.Channel != "" && u.Nick != ""
}

// IsLegacy, client'ın eski protokolü kullanıp kullanmadığını döner.
func (u *ChatUser) IsLegacy() bool {
	return u.Protocol == ProtocolLegacy
}

// UTypeForLevel, seviyeye karşılık gelen legacy uType değerini döner.
func UTypeForLevel(level int) string {
	switch {
	case IsAdmin(level):
		return "admin"
	case IsModerator(level):
		return "mod"
	default:
		return "user"
	}
}
