// Package config loads the server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/01moynul/finmanager-golang/internal/database"
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	AI       AIConfig
	Supabase SupabaseConfig
	Stripe   StripeConfig
	App      AppConfig
}

type ServerConfig struct {
	Port       string
	CORSOrigin string
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type JWTConfig struct {
	Secret string
}

type AIConfig struct {
	GeminiAPIKey string
}

type SupabaseConfig struct {
	URL     string
	AnonKey string
}

// Configured reports whether a real identity service is available.
func (c SupabaseConfig) Configured() bool {
	return c.URL != "" && c.AnonKey != ""
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	ProPriceID    string
}

// Configured reports whether real payments are enabled.
func (c StripeConfig) Configured() bool {
	return c.SecretKey != ""
}

type AppConfig struct {
	BaseURL        string
	CheckoutDelay  time.Duration
	Location       *time.Location
	LogLevel       string
	ExpirySchedule string
	// AdminUserIDs may change the installation-wide AI settings.
	AdminUserIDs []string
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	delay, err := time.ParseDuration(getEnv("CHECKOUT_DELAY", "1500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_DELAY: %w", err)
	}

	loc := time.Local
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:       getEnv("PORT", "8080"),
			CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", database.DriverSQLite)),
			DSN:    os.Getenv("DB_DSN"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		AI: AIConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Supabase: SupabaseConfig{
			URL:     os.Getenv("SUPABASE_URL"),
			AnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			ProPriceID:    os.Getenv("STRIPE_PRO_PRICE_ID"),
		},
		App: AppConfig{
			BaseURL:        getEnv("APP_BASE_URL", "http://localhost:5173"),
			CheckoutDelay:  delay,
			Location:       loc,
			LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
			ExpirySchedule: getEnv("EXPIRY_SCHEDULE", "@hourly"),
			AdminUserIDs:   splitList(os.Getenv("ADMIN_USER_IDS")),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
