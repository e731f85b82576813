package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	LLMAPIKey    string `env:"LLM_API_KEY"`
	LLMBaseURL   string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-5.1"`

	RateLimitLimit         int           `env:"RATE_LIMIT_LIMIT" envDefault:"5"`
	RateLimitWindow        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
	RateLimitMaxIdentities int           `env:"RATE_LIMIT_MAX_IDENTITIES" envDefault:"10000"`

	InsightMaxRetries  int           `env:"INSIGHT_MAX_RETRIES" envDefault:"2"`
	InsightTimeout     time.Duration `env:"INSIGHT_TIMEOUT" envDefault:"30s"`
	InsightBackoffBase time.Duration `env:"INSIGHT_BACKOFF_BASE" envDefault:"1s"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
