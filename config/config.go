package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	StripeSecretKey     string
	StripeWebhookSecret string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	SMTPHost            string
	SMTPPort            string
	SMTPUser            string
	SMTPPass            string
	FrontendURL         string
	ChromePath          string        // optional explicit Chrome binary for PDF rendering
	StageTimeout        time.Duration // per-pipeline-stage deadline
	MaxRetries          uint64        // render/delivery retry budget per run
	IntakeTTL           time.Duration // eviction age for abandoned checkouts
}

func LoadConfig() (*Config, error) {
	// Best effort; env vars may come from the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "3001"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "o4-mini"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getEnv("SMTP_PORT", "587"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:3000"),
		ChromePath:          os.Getenv("CHROME_PATH"),
		StageTimeout:        getDurationEnv("STAGE_TIMEOUT", 120*time.Second),
		MaxRetries:          getUintEnv("MAX_RETRIES", 3),
		IntakeTTL:           getDurationEnv("INTAKE_TTL", 24*time.Hour),
	}

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("missing required environment variables: STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET")
	}

	return cfg, nil
}

// HasOpenAI reports whether the generation backend is configured. Without it
// every run degrades to the fallback itinerary.
func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasEmail reports whether the SMTP transport is configured.
func (c *Config) HasEmail() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getUintEnv(key string, fallback uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
