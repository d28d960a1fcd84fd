// Package models: yetki seviyeleri (UAC).
//
// Seviye sayısal bir değerdir; büyük olan daha yetkilidir.
// Moderasyon komutları hiyerarşiyi bu sayı üzerinden uygular:
// bir moderatör sadece kendisinden DÜŞÜK seviyedeki kullanıcıları yönetebilir.
package models

// Yetki seviyeleri.
const (
	LevelUser      = 1
	LevelTrusted   = 2
	LevelModerator = 3
	LevelAdmin     = 4
)

// IsModerator, seviyenin moderatör veya üstü olup olmadığını döner.
func IsModerator(level int) bool {
	return level >= LevelModerator
}

// IsAdmin, seviyenin admin olup olmadığını döner.
func IsAdmin(level int) bool {
	return level >= LevelAdmin
}
