// Package models: shadow mute domain modeli.
//
// MuteRecord, susturulmuş (muzzled) bir kimliği temsil eder.
// Registry'de kaydın VARLIĞI tek başına yeterlidir: hash registry'deyse
// chat/invite/whisper interceptor'ları gönderene susturulmuş muamelesi yapar.
//
// Susturulan kullanıcı bunu fark etmez: kendi mesajlarını görmeye devam eder,
// invite/whisper için sahte onaylar alır. Diğer kullanıcılar hiçbir şey görmez.
package models

import "time"

// MuteRecord, bir identity hash için mute kaydı.
//
// Allies: susturulan kullanıcının gerçek mesajlarını görmeye devam eden nick'ler.
// Sadece oluşturma sırasında array verilmişse set edilir (nil = ally yok).
type MuteRecord struct {
	Muted  bool     `json:"muted"`
	Allies []string `json:"allies,omitempty"`
}

// HasAllies, kayıtta en az bir ally olup olmadığını döner.
func (r MuteRecord) HasAllies() bool {
	return len(r.Allies) > 0
}

// MuteAudit, bir mute işleminin kalıcı denetim (audit) kaydı.
//
// Sadece log amaçlıdır: sunucu yeniden başladığında mute'lar bu tablodan
// geri YÜKLENMEZ. Mute durumu process ömrü boyunca yaşar.
type MuteAudit struct {
	ID            int64     `json:"id"`
	ModeratorNick string    `json:"moderator_nick"`
	ModeratorTrip string    `json:"moderator_trip"`
	TargetNick    string    `json:"target_nick"`
	TargetHash    string    `json:"target_hash"`
	Channel       string    `json:"channel"`
	Allies        []string  `json:"allies"`
	CreatedAt     time.Time `json:"created_at"`
}

// MuteListResponse, GET /api/mutes yanıtı: aktif registry + son audit kayıtları.
type MuteListResponse struct {
	Active map[string]MuteRecord `json:"active"`
	Recent []MuteAudit           `json:"recent"`
}
