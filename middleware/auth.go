// Package middleware, admin HTTP API'sinin ara katmanlarını barındırır.
//
// Middleware bir fonksiyondur: func(next http.Handler) http.Handler.
// Kendi kontrolünü yapar, geçerse next'i çağırır; geçmezse request burada durur.
package middleware

import (
	"net/http"
	"strings"

	"github.com/akinalp/hush/handlers"
	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg"
	"github.com/akinalp/hush/services"
)

// ModTokenValidator, AuthService'in middleware'in kullandığı alt kümesi.
type ModTokenValidator interface {
	ValidateModToken(tokenString string) (*models.ModClaims, error)
}

// AuthMiddleware, moderatör token doğrulaması yapar.
type AuthMiddleware struct {
	auth ModTokenValidator
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: authService}
}

// RequireModerator, geçerli bir moderatör token'ı zorunlu kılar.
//
// Header formatı: Authorization: Bearer <token>
// Token yok/geçersiz → 401, geçerli ama seviye yetersiz → 403.
// Geçerse claim'ler context'e eklenir (handlers.ClaimsFrom ile okunur).
func (m *AuthMiddleware) RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}

		claims, err := m.auth.ValidateModToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		if !models.IsModerator(claims.Level) {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "moderator level required")
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
	})
}
