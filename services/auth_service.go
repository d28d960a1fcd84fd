// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern:
// WebSocket komut handler'ları ve HTTP handler'ları ile repository'ler
// arasında oturan katman. Tüm iş kuralları burada yaşar:
//   - Moderatör token'ı üretme/doğrulama
//   - Join/chat/invite/whisper kuralları
//   - Shadow mute interceptor'ları
//
// Service ASLA http.Request/Response bilmez: sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz: Repository interface'i kullanır.
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg"
)

const tokenIssuer = "hush"

// AuthService, moderatör token'ları için interface.
//
// Chat'te hesap yoktur: herkes anonim bağlanır. Yetki seviyesi, sunucu
// operatörünün cmd/modtoken ile ürettiği imzalı token'larla yükseltilir.
type AuthService interface {
	// ValidateModToken, token'ı doğrular ve claim'leri döner.
	ValidateModToken(tokenString string) (*models.ModClaims, error)

	// IssueModToken, verilen nick ve seviye için imzalı token üretir.
	IssueModToken(nick string, level int, ttl time.Duration) (string, error)
}

type authService struct {
	jwtSecret []byte
	now       func() time.Time
}

// NewAuthService, constructor: interface döner.
func NewAuthService(jwtSecret string) AuthService {
	return &authService{
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

func (s *authService) IssueModToken(nick string, level int, ttl time.Duration) (string, error) {
	nick = strings.TrimSpace(nick)
	if !nickPatternRe.MatchString(nick) {
		return "", fmt.Errorf("%w: invalid nick %q", pkg.ErrBadRequest, nick)
	}
	if level < models.LevelUser || level > models.LevelAdmin {
		return "", fmt.Errorf("%w: level must be between %d and %d", pkg.ErrBadRequest, models.LevelUser, models.LevelAdmin)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive", pkg.ErrBadRequest)
	}

	now := s.now()
	claims := &models.ModClaims{
		Nick:  nick,
		Level: level,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   nick,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign mod token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateModToken(tokenString string) (*models.ModClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.ModClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.ModClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}
	if claims.Level < models.LevelUser || claims.Level > models.LevelAdmin {
		return nil, fmt.Errorf("%w: invalid level in token", pkg.ErrUnauthorized)
	}

	return claims, nil
}
