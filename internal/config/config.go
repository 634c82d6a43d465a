package config

import (
	"errors"
	"time"
)

// DevSessionSecret is the cookie signing secret used when none is set.
const DevSessionSecret = "dev-session-secret"

var ErrDefaultSessionSecret = errors.New("SESSION_SECRET must be set outside development")

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database Database `envPrefix:"DATABASE_"`
	Cart     Cart     `envPrefix:"CART_"`
	Redis    Redis    `envPrefix:"REDIS_"`
	Session  Session  `envPrefix:"SESSION_"`
	Stripe   Stripe   `envPrefix:"STRIPE_"`
	Mail     Mail     `envPrefix:"MAIL_"`
	Upload   Upload   `envPrefix:"UPLOAD_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	// requests per second per client on upload and checkout routes
	RateLimit float64 `env:"HTTP_RATE_LIMIT" envDefault:"2"`
	RateBurst int     `env:"HTTP_RATE_BURST" envDefault:"10"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"` // sqlite | mysql
	URL    string `env:"URL" envDefault:"storefront.db"`
}

type Cart struct {
	Backend string        `env:"BACKEND" envDefault:"sql"` // sql | redis
	TTL     time.Duration `env:"TTL" envDefault:"168h"`
	// sessions untouched this long are dropped from memory
	IdleTimeout   time.Duration `env:"IDLE_TIMEOUT" envDefault:"2h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
}

type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Session struct {
	Secret string        `env:"SECRET" envDefault:"dev-session-secret"`
	TTL    time.Duration `env:"TTL" envDefault:"168h"`
}

type Stripe struct {
	BaseApiURL    string        `env:"BASE_API_URL" envDefault:"https://api.stripe.com"`
	SecretKey     string        `env:"SECRET_KEY"`
	WebhookSecret string        `env:"WEBHOOK_SECRET"`
	Currency      string        `env:"CURRENCY" envDefault:"eur"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type Mail struct {
	Host            string        `env:"HOST" envDefault:"smtp.gmail.com"`
	Port            int           `env:"PORT" envDefault:"587"`
	Username        string        `env:"USERNAME"`
	Password        string        `env:"PASSWORD"`
	From            string        `env:"FROM"`
	BusinessAddress string        `env:"BUSINESS_ADDRESS" envDefault:"karatedesignscn@gmail.com"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Upload struct {
	Dir           string `env:"DIR" envDefault:"public/uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"` // defaults to BASE_URL + /uploads
	MaxFileSize   int64  `env:"MAX_FILE_SIZE" envDefault:"15728640"`
	MaxFiles      int    `env:"MAX_FILES" envDefault:"10"`
}

// Validate rejects settings that are only safe on a developer machine.
func (c *Config) Validate() error {
	if c.Environment.Name != "development" && (c.Session.Secret == "" || c.Session.Secret == DevSessionSecret) {
		return ErrDefaultSessionSecret
	}
	return nil
}
