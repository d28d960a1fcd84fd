// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar, böylece
// her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Identity   IdentityConfig
	Police     PoliceConfig
	Connect    ConnectConfig
	Moderation ModerationConfig
	Email      EmailConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları (sadece mute audit kayıtları için).
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/hush.db)
}

// JWTConfig, moderatör token ayarları.
type JWTConfig struct {
	Secret string // Token imzalama anahtarı: GİZLİ TUTULMALI
}

// IdentityConfig, identity hash ve trip code üretimi için salt.
//
// Salt değişirse tüm hash'ler değişir: mevcut mute'lar yeni bağlantılarla
// eşleşmez. Production'da sabit tutulmalı.
type IdentityConfig struct {
	Salt string
}

// PoliceConfig, adres bazlı abuse skor takibinin ayarları.
type PoliceConfig struct {
	Threshold float64       // Bu skora ulaşan adres "yakalanır" (frisk → true)
	HalfLife  time.Duration // Skorun yarıya inme süresi
}

// ConnectConfig, IP bazlı bağlantı açma limiti.
type ConnectConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// ModerationConfig, shadow mute ayarları.
type ModerationConfig struct {
	// TokenSeed, sahte invite kanal token'larını üreten RNG'nin seed'i.
	// 0 ise başlangıç zamanından türetilir.
	TokenSeed uint64
}

// EmailConfig, Resend email servisi ayarları (opsiyonel mute alert'leri).
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AlertTo      string
}

// Enabled, mute alert email'lerinin gönderilip gönderilmeyeceğini döner.
func (c *EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != "" && c.AlertTo != ""
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyasını yükle: dosya yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "6060"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	threshold, err := strconv.ParseFloat(getEnv("POLICE_THRESHOLD", "25"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid POLICE_THRESHOLD: %w", err)
	}

	halfLife, err := strconv.Atoi(getEnv("POLICE_HALFLIFE_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLICE_HALFLIFE_SECONDS: %w", err)
	}

	connectMax, err := strconv.Atoi(getEnv("CONNECT_MAX_ATTEMPTS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECT_MAX_ATTEMPTS: %w", err)
	}

	connectWindow, err := strconv.Atoi(getEnv("CONNECT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECT_WINDOW_SECONDS: %w", err)
	}

	tokenSeed, err := strconv.ParseUint(getEnv("MODERATION_TOKEN_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MODERATION_TOKEN_SEED: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	salt := getEnv("IDENTITY_SALT", "")
	if salt == "" {
		return nil, fmt.Errorf("IDENTITY_SALT environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/hush.db"),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
		},
		Identity: IdentityConfig{
			Salt: salt,
		},
		Police: PoliceConfig{
			Threshold: threshold,
			HalfLife:  time.Duration(halfLife) * time.Second,
		},
		Connect: ConnectConfig{
			MaxAttempts: connectMax,
			Window:      time.Duration(connectWindow) * time.Second,
		},
		Moderation: ModerationConfig{
			TokenSeed: tokenSeed,
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM", ""),
			AlertTo:      getEnv("MUTE_ALERT_TO", ""),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:6060").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
