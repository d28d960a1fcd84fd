// Package ratelimit: Police: adres bazlı, zamanla sönümlenen abuse skoru.
//
// LoginRateLimiter/ConnectRateLimiter'dan farkı: sabit bir istek sayısı yok.
// Her şüpheli davranış adrese bir skor ekler (spam mesaj 9, yetkisiz moderasyon
// denemesi 10, bozuk payload 13 ...). Skor yarı ömür (half-life) ile üstel
// olarak azalır. Toplam eşik değerine ulaşırsa Frisk true döner: caller
// isteği reddeder.
//
// Sönümleme formülü:
//
//	score = score * 2^(-(now - last) / halfLife) + delta
//
// Böylece seyrek hatalar zamanla unutulur, ama kısa sürede yoğun abuse
// hızla eşiği aşar.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// forgetBelow: sönümlenmiş skoru bu değerin altına düşen kayıtlar temizlenir.
const forgetBelow = 0.01

// policeRecord, bir adresin son skoru ve skorun hesaplandığı an.
type policeRecord struct {
	score float64
	last  time.Time
}

// Police, adres bazlı abuse skor takibi.
//
// Kullanım:
//
//	police := NewPolice(25, 30*time.Second)
//	if police.Frisk(addr, 9) { /* eşik aşıldı */ }
type Police struct {
	mu          sync.Mutex
	records     map[string]*policeRecord
	threshold   float64
	halfLife    time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewPolice, yeni bir Police oluşturur ve arka plan temizleme goroutine'ini başlatır.
func NewPolice(threshold float64, halfLife time.Duration) *Police {
	p := newPolice(threshold, halfLife, time.Now)
	go p.cleanupLoop(halfLife)
	return p
}

// newPolice, cleanup goroutine'i olmadan Police oluşturur (testlerde saat enjekte etmek için).
func newPolice(threshold float64, halfLife time.Duration, now func() time.Time) *Police {
	return &Police{
		records:     make(map[string]*policeRecord),
		threshold:   threshold,
		halfLife:    halfLife,
		now:         now,
		stopCleanup: make(chan struct{}),
	}
}

// Frisk, adrese delta skorunu ekler ve eşiğin aşılıp aşılmadığını döner.
//
// true: eşik aşıldı: caller isteği reddetmeli.
// false: devam edilebilir.
//
// Skor her çağrıda eklenir; eşik aşılmış olsa bile (ısrarlı abuse cezalandırılır).
func (p *Police) Frisk(address string, delta float64) bool {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.records[address]
	if !ok {
		r = &policeRecord{last: now}
		p.records[address] = r
	}

	r.score = p.decay(r, now) + delta
	r.last = now

	return r.score >= p.threshold
}

// Score, adresin şu anki (sönümlenmiş) skorunu döner. Kayıt yoksa 0.
func (p *Police) Score(address string) float64 {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	r, ok := p.records[address]
	if !ok {
		return 0
	}
	return p.decay(r, now)
}

// Stop, arka plan temizleme goroutine'ini durdurur. Birden fazla çağrı güvenlidir.
func (p *Police) Stop() {
	p.stopOnce.Do(func() { close(p.stopCleanup) })
}

// decay, kaydın skorunu now anına göre sönümler. p.mu tutulurken çağrılmalı.
func (p *Police) decay(r *policeRecord, now time.Time) float64 {
	if p.halfLife <= 0 {
		return r.score
	}
	elapsed := now.Sub(r.last)
	if elapsed <= 0 {
		return r.score
	}
	return r.score * math.Pow(2, -float64(elapsed)/float64(p.halfLife))
}

// cleanupLoop, unutulacak kadar sönümlenmiş kayıtları periyodik olarak siler.
func (p *Police) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cleanup()
		case <-p.stopCleanup:
			return
		}
	}
}

func (p *Police) cleanup() {
	now := p.now()

	p.mu.Lock()
	defer p.mu.Unlock()

	for addr, r := range p.records {
		if p.decay(r, now) < forgetBelow {
			delete(p.records, addr)
		}
	}
}
