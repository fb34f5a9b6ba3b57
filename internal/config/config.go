package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppName     = "home-inventory"
	EnvFileName = "config.env"
)

// Config is the immutable application configuration. It is built once at
// startup and passed into each gateway's constructor; nothing reads the
// environment after this.
type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" required:"true"`
	GCSBucket    string `envconfig:"GCS_BUCKET" required:"true"`

	// BigQuery sink. Optional: when ProjectID is empty, rows only go to the
	// local SQLite store.
	BQProjectID string `envconfig:"BQ_PROJECT_ID" default:""`
	BQDataset   string `envconfig:"BQ_DATASET" default:"inventory"`
	BQTable     string `envconfig:"BQ_TABLE" default:"items"`

	// Marketplace price-comparison API. Optional fallback behind the
	// grounded LLM lookup; disabled when empty.
	MarketAPIURL string `envconfig:"MARKET_API_URL" default:""`

	DBPath             string `envconfig:"INVENTORY_DB_PATH" default:"inventory.db"`
	PricingConcurrency int    `envconfig:"PRICING_CONCURRENCY" default:"4"`
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory and from a local .env. Errors are ignored since the files
// may not exist.
func LoadEnvFile() {
	_ = godotenv.Load()
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load builds the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
