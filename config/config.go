// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi
// oluşturulup wire-up sırasında ihtiyacı olan katmanlara geçilir.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Relay    RelayConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/logit.db)
}

// JWTConfig, access token doğrulama ayarları.
//
// Token üretimi platformun auth servisine aittir — bu çekirdek sadece
// doğrular. Secret iki servis arasında paylaşılır.
type JWTConfig struct {
	Secret string // HMAC imza anahtarı — GİZLİ TUTULMALI
}

// RelayConfig, media-relay (LiveKit SFU) ayarları.
// Arama kabul edildikten sonra ses/video akışı bu relay üzerinden kurulur;
// signaling çekirdeği sadece katılım token'ı üretir.
type RelayConfig struct {
	URL       string // Relay server URL (ör: ws://localhost:7880)
	APIKey    string
	APISecret string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// Dosya yoksa hata vermez, sessizce devam eder.
	// Production'da bu dosya olmaz, gerçek env variable'lar kullanılır.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/logit.db"),
		},
		JWT: JWTConfig{
			Secret: jwtSecret,
		},
		Relay: RelayConfig{
			URL:       getEnv("RELAY_URL", "ws://localhost:7880"),
			APIKey:    getEnv("RELAY_API_KEY", ""),
			APISecret: getEnv("RELAY_API_SECRET", ""),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
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
