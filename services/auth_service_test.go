package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/hush/models"
	"github.com/akinalp/hush/pkg"
)

func TestModTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")

	token, err := svc.IssueModToken("  boss ", models.LevelModerator, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateModToken(token)
	require.NoError(t, err)
	assert.Equal(t, "boss", claims.Nick)
	assert.Equal(t, models.LevelModerator, claims.Level)
	assert.Equal(t, "hush", claims.Issuer)
}

func TestIssueModTokenValidation(t *testing.T) {
	svc := NewAuthService("test-secret")

	tests := []struct {
		name  string
		nick  string
		level int
		ttl   time.Duration
	}{
		{"bad nick", "no spaces allowed", models.LevelModerator, time.Hour},
		{"level too low", "boss", 0, time.Hour},
		{"level too high", "boss", models.LevelAdmin + 1, time.Hour},
		{"zero ttl", "boss", models.LevelModerator, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.IssueModToken(tt.nick, tt.level, tt.ttl)
			assert.ErrorIs(t, err, pkg.ErrBadRequest)
		})
	}
}

func TestValidateModTokenRejects(t *testing.T) {
	issuer := NewAuthService("test-secret")
	token, err := issuer.IssueModToken("boss", models.LevelAdmin, time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewAuthService("other-secret").ValidateModToken(token)
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.ValidateModToken("not.a.token")
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		svc := NewAuthService("test-secret").(*authService)
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := svc.ValidateModToken(token)
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := &models.ModClaims{
			Nick:  "boss",
			Level: models.LevelAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = issuer.ValidateModToken(forged)
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})

	t.Run("out of range level", func(t *testing.T) {
		claims := &models.ModClaims{
			Nick:  "boss",
			Level: 99,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "hush",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = issuer.ValidateModToken(forged)
		assert.ErrorIs(t, err, pkg.ErrUnauthorized)
	})
}
