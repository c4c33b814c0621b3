// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Scout         ScoutConfig        `mapstructure:"scout"`
	Budget        BudgetConfig       `mapstructure:"budget"`
	Database      DatabaseConfig     `mapstructure:"database"`
	MarketData    MarketDataConfig   `mapstructure:"marketdata"`
	ML            MLConfig           `mapstructure:"ml"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ScoutConfig drives the polling loop and the lifecycle tracker.
type ScoutConfig struct {
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds"`
	GracePeriodSeconds  int      `mapstructure:"grace_period_seconds"`
	FeedURL             string   `mapstructure:"feed_url"`
	Sources             []string `mapstructure:"sources"`
	MetricsAddress      string   `mapstructure:"metrics_address"`
}

// BudgetConfig holds the scoring budget and dimension weights. The active
// dimension set is exactly the keys present in Weights.
type BudgetConfig struct {
	Total     float64            `mapstructure:"total"`
	Spent     float64            `mapstructure:"spent"`
	Weights   map[string]float64 `mapstructure:"weights"`
	TopN      int                `mapstructure:"top_n"`
	MLEnabled bool               `mapstructure:"ml_enabled"`
	MLBlend   float64            `mapstructure:"ml_blend"`
}

// Remaining returns the unspent budget.
func (b BudgetConfig) Remaining() float64 {
	return b.Total - b.Spent
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	CompsIndex string   `mapstructure:"comps_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MarketDataConfig configures the price-guide lookup client.
type MarketDataConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
	RateLimitMS int    `mapstructure:"rate_limit_ms"`
}

// MLConfig configures the optional secondary predictive model.
type MLConfig struct {
	ModelPath       string `mapstructure:"model_path"`
	MinTrainingRows int    `mapstructure:"min_training_rows"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NotificationConfig holds settings for the alert channels.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
			Recipient string `mapstructure:"recipient"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}
