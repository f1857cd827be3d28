package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backends understood by database.backend.
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Supabase      SupabaseConfig     `mapstructure:"supabase"`
	Webhooks      WebhookConfig      `mapstructure:"webhooks"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Redis         RedisConfig        `mapstructure:"redis"`
	Session       SessionConfig      `mapstructure:"session"`
	Analytics     AnalyticsConfig    `mapstructure:"analytics"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	VerifyToken string `mapstructure:"verify_token"`
}

// SupabaseConfig points at the hosted REST data API.
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WebhookConfig holds the workflow automation endpoints. Empty URLs are
// allowed at load time and reported when the workflow is triggered.
type WebhookConfig struct {
	Cities       string        `mapstructure:"cities"`
	Areas        string        `mapstructure:"areas"`
	ContextAreas string        `mapstructure:"context_areas"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Backend  string `mapstructure:"backend"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type AnalyticsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type NotificationConfig struct {
	DismissAfter time.Duration `mapstructure:"dismiss_after"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":                 "PORT",
	"server.mode":                 "GIN_MODE",
	"server.verify_token":         "VERIFY_TOKEN",
	"supabase.url":                "SUPABASE_URL",
	"supabase.key":                "SUPABASE_KEY",
	"supabase.timeout":            "SUPABASE_TIMEOUT",
	"webhooks.cities":             "CITIES_WEBHOOK",
	"webhooks.areas":              "AREAS_WEBHOOK",
	"webhooks.context_areas":      "CONTEXT_AREAS_WEBHOOK",
	"webhooks.timeout":            "WEBHOOK_TIMEOUT",
	"database.backend":            "DB_BACKEND",
	"database.host":               "DB_HOST",
	"database.port":               "DB_PORT",
	"database.user":               "DB_USER",
	"database.password":           "DB_PASSWORD",
	"database.name":               "DB_NAME",
	"database.sslmode":            "DB_SSLMODE",
	"database.path":               "DB_PATH",
	"redis.address":               "REDIS_ADDRESS",
	"redis.password":              "REDIS_PASSWORD",
	"redis.db":                    "REDIS_DB",
	"session.ttl":                 "SESSION_TTL",
	"analytics.cache_ttl":         "ANALYTICS_CACHE_TTL",
	"notifications.dismiss_after": "NOTIFICATION_DISMISS_AFTER",
	"logging.level":               "LOG_LEVEL",
	"logging.format":              "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.verify_token", "")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("supabase.timeout", "15s")
	v.SetDefault("webhooks.cities", "")
	v.SetDefault("webhooks.areas", "")
	v.SetDefault("webhooks.context_areas", "")
	v.SetDefault("webhooks.timeout", "60s")
	v.SetDefault("database.backend", BackendREST)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "leadgen")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "./leadgen.db")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("notifications.dismiss_after", "5s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// LoadConfig reads defaults, an optional config.yaml, a .env file and the
// process environment, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields each backend needs before anything connects.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch c.Database.Backend {
	case BackendREST:
		if c.Supabase.URL == "" {
			return fmt.Errorf("supabase.url is required for the rest backend")
		}
		if c.Supabase.Key == "" {
			return fmt.Errorf("supabase.key is required for the rest backend")
		}
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres backend")
		}
	case BackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown database.backend %q", c.Database.Backend)
	}

	if c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required")
	}
	if c.Notifications.DismissAfter <= 0 {
		return fmt.Errorf("notifications.dismiss_after must be positive")
	}
	return nil
}
