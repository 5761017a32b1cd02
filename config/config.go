// Package config reads lectio's runtime settings from the environment.
package config

import (
	"log"
	"os"
	"strings"
	"time"
)

const (
	defaultPort            = "8080"
	defaultPlanFile        = "reading_plan.json"
	defaultHTTPTimeout     = 10 * time.Second
	defaultESVBaseURL      = "https://api.esv.org"
	defaultBibleAPIBaseURL = "https://bible-api.com"
	defaultTelegramBaseURL = "https://api.telegram.org"
)

// Config holds everything a run needs besides the reading plan itself.
type Config struct {
	TelegramToken   string
	TelegramChatID  string
	ESVAPIKey       string
	PlanFile        string
	DatabaseURL     string
	ArchiveDir      string
	Port            string
	HTTPTimeout     time.Duration
	ESVBaseURL      string
	BibleAPIBaseURL string
	TelegramBaseURL string
}

// Load reads the environment, applying defaults and logging a warning for
// settings that will make a run fail later.
func Load() Config {
	cfg := Config{
		TelegramToken:   strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		TelegramChatID:  strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")),
		ESVAPIKey:       strings.TrimSpace(os.Getenv("ESV_API_KEY")),
		PlanFile:        envOr("PLAN_FILE", defaultPlanFile),
		DatabaseURL:     os.Getenv("DB_CONNECTION_STRING"),
		ArchiveDir:      os.Getenv("ARCHIVE_DIR"),
		Port:            envOr("PORT", defaultPort),
		HTTPTimeout:     defaultHTTPTimeout,
		ESVBaseURL:      envOr("ESV_BASE_URL", defaultESVBaseURL),
		BibleAPIBaseURL: envOr("BIBLE_API_BASE_URL", defaultBibleAPIBaseURL),
		TelegramBaseURL: envOr("TELEGRAM_BASE_URL", defaultTelegramBaseURL),
	}

	if raw := os.Getenv("HTTP_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			log.Printf("WARNING: invalid HTTP_TIMEOUT %q, using %s", raw, defaultHTTPTimeout)
		} else {
			cfg.HTTPTimeout = d
		}
	}

	if cfg.TelegramToken == "" {
		log.Println("WARNING: TELEGRAM_TOKEN not set. Telegram delivery will fail at runtime.")
	}
	if cfg.TelegramChatID == "" {
		log.Println("WARNING: TELEGRAM_CHAT_ID not set. Telegram delivery will fail at runtime.")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
