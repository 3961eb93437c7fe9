package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName    string `env:"APP_NAME" envDefault:"Shiftwise"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	Port       string `env:"PORT" envDefault:"8080"`

	PostgresURL string `env:"POSTGRES_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-me"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"60m"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me-too"`

	Stripe    Stripe    `envPrefix:"STRIPE_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	SMTP      SMTP      `envPrefix:"SMTP_"`
	Postmark  Postmark  `envPrefix:"POSTMARK_"`
	Geocoding Geocoding `envPrefix:"GEOCODING_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

// Stripe holds the billing provider credentials. It is handed to the
// gateway constructor; nothing here is written to SDK globals.
type Stripe struct {
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
	Currency       string `env:"CURRENCY" envDefault:"gbp"`
}

type Redis struct {
	URL string `env:"URL"`
}

type SMTP struct {
	Host       string `env:"HOST"`
	Port       int    `env:"PORT" envDefault:"587"`
	Username   string `env:"USERNAME"`
	Password   string `env:"PASSWORD"`
	From       string `env:"FROM" envDefault:"no-reply@shiftwise.local"`
	FromName   string `env:"FROM_NAME" envDefault:"Shiftwise"`
	UseSSL     bool   `env:"USE_SSL" envDefault:"false"`
	RequireTLS bool   `env:"REQUIRE_TLS" envDefault:"true"`
}

type Postmark struct {
	ServerToken  string `env:"SERVER_TOKEN"`
	AccountToken string `env:"ACCOUNT_TOKEN"`
	SenderEmail  string `env:"SENDER_EMAIL"`
}

type Geocoding struct {
	APIKey   string        `env:"API_KEY"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`
}

type RateLimit struct {
	AuthPerMinute int `env:"AUTH_PER_MINUTE" envDefault:"10"`
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
