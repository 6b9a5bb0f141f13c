package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv pulls in a local .env if one exists. Real env vars win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("FLOWDESK_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("FLOWDESK_JWT_ISSUER")
	if issuer == "" {
		issuer = "flowdesk"
	}

	dur := 24 * time.Hour
	if ttl := os.Getenv("FLOWDESK_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			dur = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: dur,
	}
}

type ServerConfig struct {
	Addr string
}

func LoadServerConfig() ServerConfig {
	addr := os.Getenv("FLOWDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return ServerConfig{Addr: addr}
}

// CMSConfig controls how the Webflow client paces and pages its calls.
type CMSConfig struct {
	BaseURL      string
	PageSize     int
	RateInterval time.Duration
}

func LoadCMSConfig() CMSConfig {
	cfg := CMSConfig{
		BaseURL:      "https://api.webflow.com/v2",
		PageSize:     100,
		RateInterval: time.Second,
	}

	if u := os.Getenv("FLOWDESK_CMS_BASE_URL"); u != "" {
		cfg.BaseURL = u
	}
	if ms := os.Getenv("FLOWDESK_CMS_RATE_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			cfg.RateInterval = time.Duration(n) * time.Millisecond
		}
	}
	return cfg
}
