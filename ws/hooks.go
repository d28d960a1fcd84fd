package ws

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/akinalp/hush/models"
)

// Direction, hook'un hangi yöndeki trafiğe bağlandığı.
type Direction string

// HookIn: client'tan gelen frame'ler, komut handler'ından önce.
const HookIn Direction = "in"

var (
	ErrUnknownDirection = errors.New("unknown hook direction")
	ErrInvalidHook      = errors.New("invalid hook")
)

type hookAction int

const (
	actionContinue hookAction = iota
	actionSuppress
	actionReject
)

// HookResult, bir hook'un zincire verdiği karar.
//
//   - Continue(payload): zincir devam eder, sonraki hook (ve en sonunda komut
//     handler'ı) verilen payload'ı görür.
//   - Suppress(): frame sessizce yutulur. Hook gerekli cevabı kendisi vermiştir.
//   - Reject(reason): frame geçersiz, işlenmez. Reason sadece log'a yazılır.
type HookResult struct {
	action  hookAction
	Payload *Inbound
	Reason  string
}

// Continue, zincirin payload ile devam etmesini ister.
func Continue(payload *Inbound) HookResult {
	return HookResult{action: actionContinue, Payload: payload}
}

// Suppress, frame'in burada sessizce tüketilmesini ister.
func Suppress() HookResult {
	return HookResult{action: actionSuppress}
}

// Reject, frame'in geçersiz olduğunu bildirir.
func Reject(reason string) HookResult {
	return HookResult{action: actionReject, Reason: reason}
}

func (r HookResult) Continued() bool  { return r.action == actionContinue }
func (r HookResult) Suppressed() bool { return r.action == actionSuppress }
func (r HookResult) Rejected() bool   { return r.action == actionReject }

func (r HookResult) String() string {
	switch r.action {
	case actionContinue:
		return "continue"
	case actionSuppress:
		return "suppress"
	default:
		return "reject(" + r.Reason + ")"
	}
}

// HookFunc, gönderen bağlantının durumu ve frame ile çağrılan filtre.
type HookFunc func(sender *models.ChatUser, payload *Inbound) HookResult

// HookRegistrar, service'lerin hook kaydı için kullandığı interface.
type HookRegistrar interface {
	Register(direction Direction, event string, fn HookFunc, priority int) error
}

type hookEntry struct {
	fn       HookFunc
	priority int
}

// HookRegistry, event adı → priority sıralı hook listesi.
//
// Küçük priority önce çalışır. Eşit priority'de kayıt sırası korunur.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks map[Direction]map[string][]hookEntry
}

// NewHookRegistry, boş bir registry oluşturur.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		hooks: map[Direction]map[string][]hookEntry{
			HookIn: {},
		},
	}
}

// Register, bir hook ekler.
func (r *HookRegistry) Register(direction Direction, event string, fn HookFunc, priority int) error {
	if event == "" || fn == nil {
		return fmt.Errorf("%w: event=%q", ErrInvalidHook, event)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byEvent, ok := r.hooks[direction]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	// Run kilidi bıraktıktan sonra eski slice üzerinde dönebilir; yerinde sıralama yapılmaz.
	entries := append(slices.Clone(byEvent[event]), hookEntry{fn: fn, priority: priority})
	slices.SortStableFunc(entries, func(a, b hookEntry) int {
		return cmp.Compare(a.priority, b.priority)
	})
	byEvent[event] = entries

	return nil
}

// Count, bir event'e bağlı hook sayısını döner.
func (r *HookRegistry) Count(direction Direction, event string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[direction][event])
}

// Run, event'in hook zincirini çalıştırır.
// İlk Suppress/Reject zinciri keser; hiç hook yoksa Continue(payload) döner.
func (r *HookRegistry) Run(direction Direction, event string, sender *models.ChatUser, payload *Inbound) HookResult {
	r.mu.RLock()
	entries := r.hooks[direction][event]
	r.mu.RUnlock()

	for _, entry := range entries {
		result := entry.fn(sender, payload)
		if !result.Continued() {
			return result
		}
		if result.Payload != nil {
			payload = result.Payload
		}
	}

	return Continue(payload)
}
