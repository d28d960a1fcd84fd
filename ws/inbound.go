package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrMissingCmd, cmd alanı olmayan veya string olmayan frame'ler için döner.
var ErrMissingCmd = errors.New("frame has no cmd")

// Inbound, client'tan gelen tek bir frame.
//
// Frame şeması komuta göre değişir ve client'lar alan tiplerine uymayabilir
// ({"nick": 5} gibi). Bu yüzden alanlar ham JSON olarak tutulur ve her
// okuma tip kontrolü yapan accessor'larla yapılır. Tipi uymayan alan
// "yok" kabul edilir.
type Inbound struct {
	Cmd    string
	fields map[string]json.RawMessage
}

// ParseInbound, ham WebSocket frame'ini Inbound'a çevirir.
// Frame bir JSON obje olmalı ve string bir cmd alanı içermelidir.
func ParseInbound(data []byte) (*Inbound, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	if fields == nil {
		return nil, ErrMissingCmd
	}

	in := &Inbound{fields: fields}
	cmd, ok := in.String("cmd")
	if !ok || cmd == "" {
		return nil, ErrMissingCmd
	}
	in.Cmd = cmd

	return in, nil
}

// String, alan bir JSON string ise değerini döner.
func (in *Inbound) String(key string) (string, bool) {
	raw, ok := in.fields[key]
	if !ok || !isKind(raw, '"') {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Number, alan bir JSON number ise değerini döner.
func (in *Inbound) Number(key string) (float64, bool) {
	raw, ok := in.fields[key]
	if !ok || !isNumber(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}

// Int, alan tam sayı değerli bir JSON number ise değerini döner.
// 3 ve 3.0 kabul edilir, 3.5 edilmez.
func (in *Inbound) Int(key string) (int64, bool) {
	raw, ok := in.fields[key]
	if !ok || !isNumber(raw) {
		return 0, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}

	// float64(MaxInt64) 2^63'e yuvarlanır; 2^63 int64'e sığmaz.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Strings, alan bir JSON array ise içindeki string elemanları döner.
// String olmayan elemanlar atlanır; alan array değilse ok=false.
func (in *Inbound) Strings(key string) ([]string, bool) {
	raw, ok := in.fields[key]
	if !ok || !isKind(raw, '[') {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if !isKind(item, '"') {
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out, true
}

// MarshalJSON, frame'i aldığı haliyle geri yazar. Reddedilen frame'ler bu haliyle loglanır.
func (in *Inbound) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.fields)
}

func isKind(raw json.RawMessage, first byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == first
}

func isNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// TargetRef, bir komutun hedef kullanıcısını protokole göre tarif eder.
//
// Eski protokol hedefi nick ile, güncel protokol numeric userid ile belirtir.
// Hub.FindUser bu iki varyantı type switch ile ayırır.
type TargetRef interface {
	targetChannel() string
}

// LegacyTarget, eski protokol hedefi: kanal içindeki nick.
type LegacyTarget struct {
	Nick    string
	Channel string
}

// CurrentTarget, güncel protokol hedefi: kanal içindeki numeric userid.
type CurrentTarget struct {
	UserID  int64
	Channel string
}

func (t LegacyTarget) targetChannel() string  { return t.Channel }
func (t CurrentTarget) targetChannel() string { return t.Channel }
