package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects all environment-driven settings. Everything has a fallback
// except the JWT secret, which must be set explicitly.
type Config struct {
	DatabaseURL string
	Port        string

	JWTSecret string
	JWTExpiry time.Duration

	CORSOrigins []string

	RateLimit       int
	RateWindowSecs  int
	MaxOrderTotal   float64
	MaxItemQuantity int

	PaystackSecretKey string

	FirebaseCredentialsFile string

	UploadsDir string

	AdminUsername string
	AdminPassword string
}

func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return nil, errors.New("JWT_SECRET_KEY environment variable is required")
	}

	cfg := &Config{
		DatabaseURL:             getEnv("DATABASE_URL", "farmstore.db"),
		Port:                    getEnv("PORT", "8080"),
		JWTSecret:               secret,
		JWTExpiry:               time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RateLimit:               getEnvInt("RATE_LIMIT", 50),
		RateWindowSecs:          getEnvInt("RATE_WINDOW_SECONDS", 1),
		MaxOrderTotal:           10_000_000,
		MaxItemQuantity:         1000,
		PaystackSecretKey:       os.Getenv("PAYSTACK_SECRET_KEY"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
		UploadsDir:              getEnv("UPLOADS_DIR", "uploads"),
		AdminUsername:           os.Getenv("ADMIN_USERNAME"),
		AdminPassword:           os.Getenv("ADMIN_PASSWORD"),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
