// internal/common/config/loader.go
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "fretwatch/internal/common/errors"
)

// KnownDimensions is the full set of recognized scoring dimension keys.
// Weight maps carrying any other key fail validation at load time.
var KnownDimensions = map[string]bool{
	"value":      true,
	"appreciate": true,
	"fit":        true,
	"condition":  true,
	"iconic":     true,
}

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SCOUT_FEED_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay (config.development.yaml etc.), missing is fine.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one, walking up
// from the working directory so tests in nested packages still resolve it.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}
	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if godotenv.Load(path) == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars replaces ${VAR} placeholders in every string value.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		if s, ok := v.Get(key).(string); ok && strings.Contains(s, "${") {
			v.Set(key, os.ExpandEnv(s))
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fretwatch"
	}
	if cfg.Scout.PollIntervalSeconds == 0 {
		cfg.Scout.PollIntervalSeconds = 300
	}
	if cfg.Scout.GracePeriodSeconds == 0 {
		// Two scrape cycles at the 5-minute cadence.
		cfg.Scout.GracePeriodSeconds = 600
	}
	if cfg.Scout.MetricsAddress == "" {
		cfg.Scout.MetricsAddress = ":9402"
	}
	if cfg.Budget.TopN == 0 {
		cfg.Budget.TopN = 10
	}
	if len(cfg.Budget.Weights) == 0 {
		cfg.Budget.Weights = map[string]float64{
			"value":      0.30,
			"appreciate": 0.25,
			"fit":        0.25,
			"condition":  0.20,
		}
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.CompsIndex == "" {
		cfg.Database.Elasticsearch.CompsIndex = "fretwatch-sold-comps"
	}
	if cfg.MarketData.TimeoutMS == 0 {
		cfg.MarketData.TimeoutMS = 15000
	}
	if cfg.MarketData.RateLimitMS == 0 {
		cfg.MarketData.RateLimitMS = 500
	}
	if cfg.ML.MinTrainingRows == 0 {
		cfg.ML.MinTrainingRows = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate fails fast on malformed configuration. The scoring core never
// sees weights that did not pass this check.
func Validate(cfg *Config) error {
	if cfg.Scout.PollIntervalSeconds <= 0 {
		return apperrors.NewConfigInvalidError("scout.poll_interval_seconds must be positive")
	}
	if cfg.Scout.GracePeriodSeconds <= 0 {
		return apperrors.NewConfigInvalidError("scout.grace_period_seconds must be positive")
	}
	if cfg.Budget.TopN <= 0 {
		return apperrors.NewConfigInvalidError("budget.top_n must be positive")
	}
	if cfg.Budget.Spent < 0 || cfg.Budget.Total < 0 {
		return apperrors.NewConfigInvalidError("budget.total and budget.spent must be non-negative")
	}
	if cfg.Budget.MLBlend < 0 || cfg.Budget.MLBlend > 1 {
		return apperrors.NewConfigInvalidError(
			fmt.Sprintf("budget.ml_blend must be in [0,1], got %g", cfg.Budget.MLBlend))
	}
	if len(cfg.Budget.Weights) == 0 {
		return apperrors.NewConfigInvalidError("budget.weights must name at least one dimension")
	}

	var sum float64
	unknown := make([]string, 0)
	for dim, w := range cfg.Budget.Weights {
		if !KnownDimensions[dim] {
			unknown = append(unknown, dim)
		}
		if w <= 0 {
			return apperrors.NewConfigInvalidError(
				fmt.Sprintf("budget.weights.%s must be positive, got %g", dim, w))
		}
		sum += w
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.NewConfigInvalidError(
			fmt.Sprintf("unknown dimension key(s): %s", strings.Join(unknown, ", ")))
	}
	if math.Abs(sum-1.0) > 0.01 {
		return apperrors.NewConfigInvalidError(
			fmt.Sprintf("budget.weights must sum to ~1.0, got %.3f", sum))
	}
	return nil
}
