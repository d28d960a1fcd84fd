package models

// Wire seviyesinde hata kimlikleri: warn payload'larının "id" alanında gönderilir.
// Client bu değerlere göre mesajı lokalize edebilir veya UI davranışı seçebilir.
const (
	ErrIDUnknownUser = "UNKNOWN_USER"
	ErrIDPermission  = "PERMISSION"
	ErrIDRateLimit   = "RATELIMIT"
	ErrIDNickTaken   = "NICK_TAKEN"
	ErrIDBadNick     = "BAD_NICK"
	ErrIDBadChannel  = "BAD_CHANNEL"
)
