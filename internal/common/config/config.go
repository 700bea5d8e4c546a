// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	GenAI       GenAIConfig       `mapstructure:"genai"`
	Recommender RecommenderConfig `mapstructure:"recommender"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Session     SessionConfig     `mapstructure:"session"`
	Chat        ChatConfig        `mapstructure:"chat"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// GenAIConfig holds settings for the generative conversational provider.
type GenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// RecommenderConfig holds settings for the personalization provider.
type RecommenderConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Timeout       int    `mapstructure:"timeout"`        // milliseconds per attempt
	MaxRetries    int    `mapstructure:"max_retries"`    // extra attempts after the first
	HealthTimeout int    `mapstructure:"health_timeout"` // milliseconds for the best-effort probe
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
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

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig controls the conversation context store lifecycle.
type SessionConfig struct {
	Backend     string `mapstructure:"backend"`      // "memory" or "redis"
	MaxSessions int    `mapstructure:"max_sessions"` // LRU capacity of the memory backend
	IdleTTL     int    `mapstructure:"idle_ttl"`     // seconds a session survives without a turn
}

// ChatConfig controls orchestration behavior.
type ChatConfig struct {
	HistoryWindow      int    `mapstructure:"history_window"`      // turns sent to the generative provider
	ExtractionStrategy string `mapstructure:"extraction_strategy"` // "vocabulary" or "delegated"
	ProfileCacheTTL    int    `mapstructure:"profile_cache_ttl"`   // seconds, 0 disables the cache
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
