package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	DBSchema          string
	GeminiAPIKey      string
	GeminiModel       string
	ChatModel         string
	GeminiTimeout     time.Duration
	AudioTimeout      time.Duration
	AudioMimeType     string
	OutputDir         string
	CampaignQuestions bool
	WriteCallAnalysis bool
	SQLMaxRows        int
	LogLevel          string
	Port              int
	APIToken          string
	NatsURL           string
	NatsToken         string
	SlackBotToken     string
	SlackChannel      string
}

// LoadDotEnv seeds the environment from the given .env files. Missing files are
// ignored and variables already set in the environment win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func Load() Config {
	return Config{
		DatabaseURL:       envStr("DATABASE_URL", envStr("DB_CONNECTION_STRING", "")),
		DBSchema:          envStr("DB_SCHEMA", "smartFlo"),
		GeminiAPIKey:      envStr("GEMINI_API_KEY", ""),
		GeminiModel:       envStr("GEMINI_MODEL", "gemini-2.5-pro"),
		ChatModel:         envStr("GEMINI_CHAT_MODEL", "gemini-2.0-flash"),
		GeminiTimeout:     envSeconds("GEMINI_TIMEOUT_SECONDS", 120*time.Second),
		AudioTimeout:      envSeconds("AUDIO_TIMEOUT_SECONDS", 30*time.Second),
		AudioMimeType:     envStr("AUDIO_MIME_TYPE", ""),
		OutputDir:         envStr("OUTPUT_DIR", "."),
		CampaignQuestions: envBool("CAMPAIGN_QUESTIONS", false),
		WriteCallAnalysis: envBool("WRITE_CALL_ANALYSIS", false),
		SQLMaxRows:        envInt("SQL_MAX_ROWS", 10),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		Port:              envInt("CALLSCRIBE_PORT", 8760),
		APIToken:          envStr("CALLSCRIBE_API_TOKEN", ""),
		NatsURL:           envStr("NATS_URL", ""),
		NatsToken:         envStr("NATS_TOKEN", ""),
		SlackBotToken:     envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:      envStr("SLACK_CHANNEL", ""),
	}
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	if n := envInt(key, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
