// Package identity, bağlantı kimliklerini ve trip code'ları üretir.
//
// Hash: client adresinden türetilen, yeniden bağlanmalarda değişmeyen kimlik.
// Mute kayıtları bu değer üzerinden tutulur. Adresin kendisi dışarı sızmaz -
// salt'lı (keyed) BLAKE2b ile tek yönlü olarak türetilir.
//
// Trip: kullanıcının join sırasında verdiği şifreden üretilen kısa, herkese
// açık imza. Aynı şifre her zaman aynı trip'i verir; nick taklidini zorlaştırır.
package identity

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	hashLength = 15
	tripLength = 6
)

// Hasher, salt'a bağlı kimlik üreticisi.
type Hasher struct {
	key []byte
}

// NewHasher, verilen salt ile yeni bir Hasher oluşturur.
//
// BLAKE2b keyed mode en fazla 64 byte key kabul eder; daha uzun salt'lar
// önce BLAKE2b-512 ile 64 byte'a indirilir.
func NewHasher(salt string) (*Hasher, error) {
	if salt == "" {
		return nil, fmt.Errorf("identity salt must not be empty")
	}
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &Hasher{key: key}, nil
}

// Hash, adresten kalıcı identity hash üretir.
func (h *Hasher) Hash(address string) string {
	return h.digest("hash:"+address, base64.RawURLEncoding, hashLength)
}

// Trip, şifreden trip code üretir. Boş şifre için boş string döner.
func (h *Hasher) Trip(password string) string {
	if password == "" {
		return ""
	}
	return h.digest("trip:"+password, base64.StdEncoding, tripLength)
}

func (h *Hasher) digest(input string, enc *base64.Encoding, n int) string {
	// Key uzunluğu NewHasher'da sınırlandı, New256 burada hata dönemez.
	mac, err := blake2b.New256(h.key)
	if err != nil {
		panic(fmt.Sprintf("identity: blake2b key rejected: %v", err))
	}
	mac.Write([]byte(input))
	return enc.EncodeToString(mac.Sum(nil))[:n]
}
