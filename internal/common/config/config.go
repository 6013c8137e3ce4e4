package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Data          DataConfig          `mapstructure:"data"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Session       SessionConfig       `mapstructure:"session"`
	Assistant     AssistantConfig     `mapstructure:"assistant"`
	Geocoder      GeocoderConfig      `mapstructure:"geocoder"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Server        ServerConfig        `mapstructure:"server"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// DataConfig locates per-tenant business documents on disk. Each tenant has
// its own directory under Root holding catalog.json, delivery.json,
// branches.json, faq.json and synonyms.json.
type DataConfig struct {
	Root         string `mapstructure:"root"`
	WatchReloads bool   `mapstructure:"watch_reloads"`
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
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig controls the conversational memory layer.
type SessionConfig struct {
	Backend    string `mapstructure:"backend"` // "memory" or "redis"
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// AssistantConfig carries per-tenant response-strategy settings. ModeByTenant
// overrides the default mode for specific tenants.
type AssistantConfig struct {
	DefaultMode  string            `mapstructure:"default_mode"` // deterministic | hybrid | flagship
	ModeByTenant map[string]string `mapstructure:"mode_by_tenant"`
	CTA          string            `mapstructure:"cta"`
	Guardrails   map[string]string `mapstructure:"guardrails"`
	Clarifiers   map[string]string `mapstructure:"clarifiers"`
}

type GeocoderConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	BaseURL         string `mapstructure:"base_url"`
	TimeoutMs       int    `mapstructure:"timeout_ms"`
	MaxRetries      int    `mapstructure:"max_retries"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

type NotificationConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	SenderEmail   string `mapstructure:"sender_email"`
	OperatorEmail string `mapstructure:"operator_email"`
	OperatorPhone string `mapstructure:"operator_phone"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}
