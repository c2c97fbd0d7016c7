package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR"    envDefault:":5000"`
	CORSOrigins []string   `env:"CORS_ORIGINS"`
	LogLevel    slog.Level `env:"LOG_LEVEL"    envDefault:"INFO"`

	PrimaryProvider  string        `env:"PRIMARY_PROVIDER"  envDefault:"openai"`
	FallbackProvider string        `env:"FALLBACK_PROVIDER" envDefault:"gemini"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT"  envDefault:"60s"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_MODEL"      envDefault:"gpt-4o"`
	GoogleAPIKey    string `env:"GOOGLE_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL"      envDefault:"gemini-1.5-flash"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL"   envDefault:"claude-3-5-haiku-latest"`

	ExtractTimeout time.Duration `env:"EXTRACT_TIMEOUT" envDefault:"20s"`

	DBPath          string   `env:"DB_PATH"           envDefault:"newsbeam.sqlite"`
	NewsFeeds       []string `env:"NEWS_FEEDS"`
	NewsRefreshSpec string   `env:"NEWS_REFRESH_SPEC" envDefault:"0 * * * *"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`
}

// Load reads an optional .env file and then the process environment.
// It reports whether the .env file was found.
func Load(envFiles ...string) (Config, bool, error) {
	dotenvLoaded := godotenv.Load(envFiles...) == nil

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, dotenvLoaded, fmt.Errorf("parse env: %w", err)
	}

	return cfg, dotenvLoaded, nil
}
