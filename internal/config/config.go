// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	AI            AIConfig            `mapstructure:"ai"`
	Dialogue      DialogueConfig      `mapstructure:"dialogue"`
	Questionnaire QuestionnaireConfig `mapstructure:"questionnaire"`
	Badges        []BadgeConfig       `mapstructure:"badges"`
	Scheduler     SchedulerConfig     `mapstructure:"scheduler"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AIConfig contains settings for the generative-text backend.
type AIConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

// Timeout returns the per-request deadline for the generative-text backend.
func (c *AIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DialogueConfig contains per-mode dialogue settings.
type DialogueConfig struct {
	Modes map[string]ModeConfig `mapstructure:"modes"`
}

// ModeConfig configures one dialogue mode: the persona prompt, the annotation
// grammar the persona was instructed to use, and the completion thresholds.
type ModeConfig struct {
	Persona    string           `mapstructure:"persona"`
	Grammar    string           `mapstructure:"grammar"` // "brace" or "category"
	Completion CompletionConfig `mapstructure:"completion"`
}

// CompletionConfig holds the thresholds of the completion rule. When
// TargetPoints or TargetBadges is set, the mode completes once the user's
// cumulative total reaches either target; otherwise it completes once the
// session has at least MinTurns turns and MinPoints session points.
type CompletionConfig struct {
	MinTurns     int `mapstructure:"min_turns"`
	MinPoints    int `mapstructure:"min_points"`
	TargetPoints int `mapstructure:"target_points"`
	TargetBadges int `mapstructure:"target_badges"`
}

// QuestionnaireConfig seeds the disposition scale.
type QuestionnaireConfig struct {
	Questions []QuestionConfig `mapstructure:"questions"`
}

// QuestionConfig represents one Likert item to seed.
type QuestionConfig struct {
	Position int    `mapstructure:"position"`
	Text     string `mapstructure:"text"`
	Reversed bool   `mapstructure:"reversed"`
}

// BadgeConfig represents a badge to seed into the catalog.
type BadgeConfig struct {
	Name        string `mapstructure:"name"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	ImageRef    string `mapstructure:"image_ref"`
}

// SchedulerConfig contains settings for the daily maintenance job.
type SchedulerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Time     string `mapstructure:"time"` // cron expression
	Timezone string `mapstructure:"timezone"`
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// NotificationsConfig contains webhook announcement settings.
type NotificationsConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// MetricsConfig contains metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/crithink/")
	}

	// Bind specific environment variables (explicit bindings for 12-factor app compliance)
	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// AI backend configuration
	_ = v.BindEnv("ai.api_key", "GEMINI_API_KEY", "AI_API_KEY")
	_ = v.BindEnv("ai.model", "AI_MODEL")
	_ = v.BindEnv("ai.timeout_seconds", "AI_TIMEOUT_SECONDS")
	_ = v.BindEnv("ai.max_retries", "AI_MAX_RETRIES")

	// Notifications configuration
	_ = v.BindEnv("notifications.webhook_url", "NOTIFICATIONS_WEBHOOK_URL")
	_ = v.BindEnv("notifications.channel", "NOTIFICATIONS_CHANNEL")
	_ = v.BindEnv("notifications.enabled", "NOTIFICATIONS_ENABLED")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.time", "SCHEDULER_TIME")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ApplyDefaults()

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ApplyDefaults fills in settings omitted from the config file. The built-in
// completion thresholds preserve long-standing product behavior: debate and
// socratic end at 8 turns / 30 session points, challenge ends at 100 total
// points or 5 distinct badges.
func (c *Config) ApplyDefaults() {
	if c.Dialogue.Modes == nil {
		c.Dialogue.Modes = make(map[string]ModeConfig)
	}
	for name, def := range DefaultModes() {
		mode, ok := c.Dialogue.Modes[name]
		if !ok {
			c.Dialogue.Modes[name] = def
			continue
		}
		if mode.Grammar == "" {
			mode.Grammar = def.Grammar
		}
		if (mode.Completion == CompletionConfig{}) {
			mode.Completion = def.Completion
		}
		c.Dialogue.Modes[name] = mode
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash"
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 1
	}
	if c.Metrics.Prometheus.Path == "" {
		c.Metrics.Prometheus.Path = "/metrics"
	}
}

// DefaultModes returns the built-in dialogue mode configuration.
func DefaultModes() map[string]ModeConfig {
	return map[string]ModeConfig{
		"debate": {
			Grammar:    "category",
			Completion: CompletionConfig{MinTurns: 8, MinPoints: 30},
		},
		"socratic": {
			Grammar:    "brace",
			Completion: CompletionConfig{MinTurns: 8, MinPoints: 30},
		},
		"challenge": {
			Grammar:    "brace",
			Completion: CompletionConfig{TargetPoints: 100, TargetBadges: 5},
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required")
	}
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	for name, mode := range c.Dialogue.Modes {
		if mode.Grammar != "brace" && mode.Grammar != "category" {
			return fmt.Errorf("dialogue.modes.%s.grammar must be %q or %q", name, "brace", "category")
		}
	}
	return nil
}

// Mode returns the configuration for a dialogue mode.
func (c *Config) Mode(name string) (ModeConfig, bool) {
	mode, ok := c.Dialogue.Modes[name]
	return mode, ok
}
