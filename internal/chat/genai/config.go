package genai

import (
	"time"

	"chatfood-service/internal/common/config"
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func LoadConfig(cfg config.GenAIConfig) *Config {
	return &Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.Timeout) * time.Millisecond,
	}
}
