// Package pkg, HTTP yüzeyi ve servisler arasında paylaşılan yardımcıları barındırır.
//
// Servisler aşağıdaki sentinel error'ları %w ile sarar; handler katmanı
// errors.Is ile açıp HTTP status code'una çevirir.
package pkg

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)
