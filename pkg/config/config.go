package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Read-side guardrails.
	MaxReadLimit int

	// Advisory duplicate detection policy. Confidence is configured, never
	// hardcoded in the engine.
	DupExactConfidence float64
	DupNearConfidence  float64
	DupDateWindowDays  int

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string

	PosthogAPIKey  string
	PosthogHost    string
	MigrationsPath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "hera-data-engine")
	viper.SetDefault("MAX_READ_LIMIT", 100)
	viper.SetDefault("DUP_EXACT_CONFIDENCE", 0.95)
	viper.SetDefault("DUP_NEAR_CONFIDENCE", 0.75)
	viper.SetDefault("DUP_DATE_WINDOW_DAYS", 3)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_HOST", "https://us.i.posthog.com")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key. THIS IS NOT FOR PRODUCTION.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.MaxReadLimit = viper.GetInt("MAX_READ_LIMIT")
	if cfg.MaxReadLimit <= 0 || cfg.MaxReadLimit > 500 {
		log.Printf("Warning: MAX_READ_LIMIT out of range (%d). Defaulting to 100.\n", cfg.MaxReadLimit)
		cfg.MaxReadLimit = 100
	}

	cfg.DupExactConfidence = viper.GetFloat64("DUP_EXACT_CONFIDENCE")
	cfg.DupNearConfidence = viper.GetFloat64("DUP_NEAR_CONFIDENCE")
	cfg.DupDateWindowDays = viper.GetInt("DUP_DATE_WINDOW_DAYS")
	if cfg.DupExactConfidence <= 0 || cfg.DupExactConfidence > 1 {
		log.Printf("Warning: Invalid DUP_EXACT_CONFIDENCE (%f). Defaulting to 0.95.\n", cfg.DupExactConfidence)
		cfg.DupExactConfidence = 0.95
	}
	if cfg.DupNearConfidence <= 0 || cfg.DupNearConfidence > cfg.DupExactConfidence {
		log.Printf("Warning: Invalid DUP_NEAR_CONFIDENCE (%f). Defaulting to 0.75.\n", cfg.DupNearConfidence)
		cfg.DupNearConfidence = 0.75
	}
	if cfg.DupDateWindowDays <= 0 {
		cfg.DupDateWindowDays = 3
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogHost = viper.GetString("POSTHOG_HOST")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	return cfg, nil
}
