package recommend

import (
	"time"

	"chatfood-service/internal/common/config"
)

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxRetries    int
	HealthTimeout time.Duration
}

func LoadConfig(cfg config.RecommenderConfig) *Config {
	return &Config{
		BaseURL:       cfg.BaseURL,
		Timeout:       time.Duration(cfg.Timeout) * time.Millisecond,
		MaxRetries:    cfg.MaxRetries,
		HealthTimeout: time.Duration(cfg.HealthTimeout) * time.Millisecond,
	}
}
