package ws

import (
	"slices"

	"github.com/akinalp/hush/models"
)

// Filter, Broadcast alıcılarını seçer. Set edilmiş tüm kriterler sağlanmalıdır;
// boş bırakılan kriter kısıt koymaz. Sadece bir kanala katılmış bağlantılar eşleşir.
type Filter struct {
	Channel string
	Hash    string
	Nicks   []string
	Level   func(level int) bool
}

// Match, kullanıcının filtreye uyup uymadığını döner.
func (f Filter) Match(u *models.ChatUser) bool {
	if u == nil || !u.Joined() {
		return false
	}
	if f.Channel != "" && u.Channel != f.Channel {
		return false
	}
	if f.Hash != "" && u.Hash != f.Hash {
		return false
	}
	if f.Nicks != nil && !slices.Contains(f.Nicks, u.Nick) {
		return false
	}
	if f.Level != nil && !f.Level(u.Level) {
		return false
	}
	return true
}
