package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "ESV_API_KEY", "PLAN_FILE",
		"DB_CONNECTION_STRING", "ARCHIVE_DIR", "PORT", "HTTP_TIMEOUT",
		"ESV_BASE_URL", "BIBLE_API_BASE_URL", "TELEGRAM_BASE_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "reading_plan.json", cfg.PlanFile)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://api.esv.org", cfg.ESVBaseURL)
	assert.Equal(t, "https://bible-api.com", cfg.BibleAPIBaseURL)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramBaseURL)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", " tok ")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("ESV_API_KEY", "key")
	t.Setenv("PLAN_FILE", "plans/psalms.yaml")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("PORT", "9090")

	cfg := Load()

	assert.Equal(t, "tok", cfg.TelegramToken)
	assert.Equal(t, "-100123", cfg.TelegramChatID)
	assert.Equal(t, "key", cfg.ESVAPIKey)
	assert.Equal(t, "plans/psalms.yaml", cfg.PlanFile)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
}
