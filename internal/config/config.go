package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration values.
type Config struct {
	Secret            string
	DatabaseDSN       string
	HTTPPort          string
	TokenTTL          time.Duration
	KeepAliveEnabled  bool
	KeepAliveInterval time.Duration
	AppURL            string
	SeedCSV           string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "database/medicalStore.db"
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)"
	}

	ttlHours := 24
	if raw := os.Getenv("JWT_EXPIRATION_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			ttlHours = parsed
		} else {
			log.Printf("invalid JWT_EXPIRATION_HOURS value %q, defaulting to 24", raw)
		}
	}

	// 14 minutes keeps free-tier hosts from idling the process.
	interval := 840
	if raw := os.Getenv("KEEP_ALIVE_INTERVAL"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}

	return Config{
		Secret:            secret,
		DatabaseDSN:       dsn,
		HTTPPort:          port,
		TokenTTL:          time.Duration(ttlHours) * time.Hour,
		KeepAliveEnabled:  os.Getenv("KEEP_ALIVE_ENABLED") != "0",
		KeepAliveInterval: time.Duration(interval) * time.Second,
		AppURL:            os.Getenv("APP_URL"),
		SeedCSV:           os.Getenv("MEDICINE_CSV"),
	}
}
