// Package i18n, sunucunun client'a gönderdiği warn/info metinlerini lokalize eder.
//
// Bağlantının dili WebSocket handshake'indeki Accept-Language header'ından
// belirlenir (DetectLanguage) ve models.ChatUser.Lang alanında tutulur.
// Çeviri bulunamazsa İngilizce'ye düşülür.
//
// Shadow mute açısından önemli: susturulan kullanıcıya giden sahte onaylar
// ile gerçek onaylar AYNI anahtarlardan üretilir: metin farkı suppression'ı
// ele vermemeli.
//
// Kullanım:
//
//	localizer := i18n.NewLocalizer("tr")
//	msg := localizer.T("warn.unknownUser")
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"sync"
)

// LoadEmbedded, binary'ye gömülü locales/ dizininden çevirileri yükler.
func LoadEmbedded() error {
	sub, err := fs.Sub(EmbeddedLocales, "locales")
	if err != nil {
		return fmt.Errorf("failed to open embedded locales: %w", err)
	}
	return Load(sub)
}

// SupportedLanguages: desteklenen dil kodları.
var SupportedLanguages = []string{"en", "tr"}

// DefaultLanguage: varsayılan dil.
const DefaultLanguage = "en"

// translations, tüm dil çevirilerini bellekte tutan harita.
// map[lang]map[key]value formatında.
// Uygulama başlangıcında yüklenir, sonra sadece okunur: thread-safe.
var (
	translations map[string]map[string]string
	loadOnce     sync.Once
	loadErr      error
)

// Load, çeviri dosyalarını fs.FS'ten yükler. Program ömrü boyunca sadece
// ilk çağrı etkilidir (sync.Once); sonraki çağrılar ilk sonucu döner.
// Her dil için bir JSON dosyası beklenir: en.json, tr.json
func Load(localesFS fs.FS) error {
	loadOnce.Do(func() {
		translations = make(map[string]map[string]string)

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				translations = nil
				return
			}

			// Nested JSON'u flat key'lere dönüştür: {"auth": {"login": "..."}} → "auth.login"
			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				translations = nil
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			translations[lang] = flat

			log.Printf("[i18n] loaded %d keys for language: %s", len(flat), lang)
		}
	})

	return loadErr
}

// Localizer, belirli bir dil için çeviri yapan struct.
type Localizer struct {
	lang string
}

// NewLocalizer, belirli bir dil için Localizer oluşturur.
// Desteklenmeyen dil verilirse varsayılana düşer.
func NewLocalizer(lang string) *Localizer {
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// T, çeviri anahtarına karşılık gelen metni döner.
// Anahtar bulunamazsa → İngilizce'ye düşer.
// İngilizce'de de yoksa → anahtarın kendisini döner.
func (l *Localizer) T(key string) string {
	// Önce kullanıcının dilinde ara
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	// Fallback: İngilizce
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	// Son çare: anahtarın kendisi
	return key
}

// TWithParams, parametreli çeviri yapar.
// Çeviri metnindeki {{param}} yer tutucularını değerlerle değiştirir.
//
// Örnek:
//
//	localizer.TWithParams("info.invited", map[string]string{"nick": "bob", "channel": "x1"})
//	→ "You invited bob to ?x1"
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	// Tek geçişli replacer: parametre değerleri (ör. kullanıcı metni) içindeki
	// "{{...}}" dizileri tekrar yer tutucu olarak yorumlanmaz.
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(l.T(key))
}

// DetectLanguage, Accept-Language header'ından en uygun dili belirler.
// Header formatı: "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7"
func DetectLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLanguage
	}

	// Basit parsing: ilk eşleşen desteklenen dili döndür
	parts := strings.Split(acceptLanguage, ",")
	for _, part := range parts {
		lang := strings.TrimSpace(strings.Split(part, ";")[0])
		// "tr-TR" → "tr"
		lang = strings.Split(lang, "-")[0]
		lang = strings.ToLower(lang)

		if isSupported(lang) {
			return lang
		}
	}

	return DefaultLanguage
}

// ─── Helpers ───

func isSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// flattenMap, nested JSON'u "dot notation" key'lere dönüştürür.
// {"auth": {"login": "Giriş"}} → {"auth.login": "Giriş"}
func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
