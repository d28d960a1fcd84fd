package repository

import (
	"maps"
	"slices"
	"sync"

	"github.com/akinalp/hush/models"
)

// memoryMuteRegistry, MuteRegistry interface'inin bellek içi implementasyonu.
//
// Yazma Hub dispatch döngüsünden, okuma hem dispatch döngüsünden hem de
// admin HTTP handler'ından gelir; RWMutex ikisini ayırır.
type memoryMuteRegistry struct {
	mu      sync.RWMutex
	records map[string]models.MuteRecord
}

// NewMemoryMuteRegistry, constructor: interface döner.
func NewMemoryMuteRegistry() MuteRegistry {
	return &memoryMuteRegistry{records: make(map[string]models.MuteRecord)}
}

func (r *memoryMuteRegistry) Get(hash string) (models.MuteRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[hash]
	if !ok {
		return models.MuteRecord{}, false
	}
	return cloneRecord(rec), true
}

func (r *memoryMuteRegistry) Put(hash string, record models.MuteRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[hash] = cloneRecord(record)
}

func (r *memoryMuteRegistry) Snapshot() map[string]models.MuteRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]models.MuteRecord, len(r.records))
	for hash, rec := range r.records {
		out[hash] = cloneRecord(rec)
	}
	return out
}

func (r *memoryMuteRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *memoryMuteRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	maps.DeleteFunc(r.records, func(string, models.MuteRecord) bool { return true })
}

// cloneRecord, Allies slice'ının çağıranla paylaşılmamasını sağlar.
// nil Allies nil kalır (ally verilmemiş ile boş liste farklıdır).
func cloneRecord(rec models.MuteRecord) models.MuteRecord {
	rec.Allies = slices.Clone(rec.Allies)
	return rec
}
