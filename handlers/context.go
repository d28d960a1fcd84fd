// Package handlers, admin HTTP API'sinin handler'larını içerir.
//
// Handler'lar incedir: query parse, service çağrısı, pkg.JSON/pkg.Error ile yanıt.
// Chat trafiği HTTP'den değil ws paketinden akar.
package handlers

import (
	"context"

	"github.com/akinalp/hush/models"
)

type contextKey string

// ClaimsContextKey, middleware'in doğruladığı moderatör claim'lerini taşır.
const ClaimsContextKey contextKey = "mod_claims"

// WithClaims, claim'leri context'e ekler.
func WithClaims(ctx context.Context, claims *models.ModClaims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

// ClaimsFrom, context'teki claim'leri döner. Middleware'den geçmemiş
// request'lerde ok false olur.
func ClaimsFrom(ctx context.Context) (*models.ModClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*models.ModClaims)
	return claims, ok
}
