// config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the platform reads from the environment.
type Config struct {
	Port           string   `env:"PORT" envDefault:"5200"`
	DatabaseURL    string   `env:"DATABASE_URL"` // empty = in-memory SQLite
	ServiceToken   string   `env:"GAME_SERVICE_TOKEN"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	MatchGroupSize       int           `env:"MATCH_GROUP_SIZE" envDefault:"2"`
	HistoryFlushInterval time.Duration `env:"HISTORY_FLUSH_INTERVAL" envDefault:"10s"`
	SeedDemo             bool          `env:"SEED_DEMO" envDefault:"false"`

	AdminName  string `env:"ADMIN_NAME" envDefault:"lucas"`
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"POO@ic.com"`

	R2 R2Config
}

// R2Config points the ledger exporter at a Cloudflare R2 bucket.
type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

// Enabled reports whether enough R2 settings are present to upload.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MatchGroupSize < 1 {
		return nil, fmt.Errorf("MATCH_GROUP_SIZE must be at least 1, got %d", cfg.MatchGroupSize)
	}
	if cfg.HistoryFlushInterval <= 0 {
		return nil, fmt.Errorf("HISTORY_FLUSH_INTERVAL must be positive, got %s", cfg.HistoryFlushInterval)
	}
	return &cfg, nil
}
