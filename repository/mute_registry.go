// Package repository: MuteRegistry interface.
//
// Susturulmuş identity hash'lerinin process içi kaydı. Veritabanına yazılmaz:
// sunucu yeniden başladığında registry boş başlar.
package repository

import "github.com/akinalp/hush/models"

// MuteRegistry, identity hash → MuteRecord eşlemesi.
//
// Bir hash'in registry'de bulunması, chat/invite/whisper interceptor'larının
// gönderene susturulmuş muamelesi yapması için hem gerekli hem yeterlidir.
type MuteRegistry interface {
	// Get, hash için kaydı döner. Kayıt yoksa ok=false.
	Get(hash string) (models.MuteRecord, bool)

	// Put, hash için kaydı yazar. Allies slice'ı kopyalanarak saklanır.
	Put(hash string, record models.MuteRecord)

	// Snapshot, tüm kayıtların kopyasını döner (admin API için).
	Snapshot() map[string]models.MuteRecord

	// Len, kayıt sayısını döner.
	Len() int

	// Clear, tüm kayıtları siler. Sadece sunucu kapanırken çağrılır.
	Clear()
}
