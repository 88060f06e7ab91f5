package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const EnvLocal = "local"

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Storage    Storage    `yaml:"storage"`
	Database   Database   `yaml:"database"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Auth       Auth       `yaml:"auth"`
	Mail       Mail       `yaml:"mail"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
}

// Storage selects the persistence driver: "postgres" or "sqlite".
type Storage struct {
	Driver     string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	SQLitePath string        `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"./storage/events.db"`
	Timeout    time.Duration `yaml:"timeout" env:"STORAGE_TIMEOUT" env-default:"3s"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"events"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:3000"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// TrustProxy reads client addresses from X-Forwarded-For. Leave it off
	// unless a reverse proxy in front of the server rewrites that header.
	TrustProxy  bool          `yaml:"trust_proxy" env:"HTTP_TRUST_PROXY" env-default:"false"`
}

type Auth struct {
	JWTSecret    string        `yaml:"jwt_secret" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"120h"`
	BcryptCost   int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	CookieSecure bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
	ResetTTL     time.Duration `yaml:"reset_ttl" env-default:"1h"`
}

// Mail configures delivery of password reset messages. An empty SendGridAPIKey
// makes the service log messages instead of sending them.
type Mail struct {
	SendGridAPIKey string        `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromName       string        `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"Event Registry"`
	FromAddress    string        `yaml:"from_address" env:"MAIL_FROM" env-default:"no-reply@localhost"`
	ResetURLBase   string        `yaml:"reset_url_base" env:"RESET_URL_BASE"`
	Timeout        time.Duration `yaml:"timeout" env-default:"10s"`
}

type RateLimit struct {
	RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM" env-default:"20"`
	Burst             int `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"5"`
}

func MustLoad() *Config {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	return &cfg
}

// Validate rejects settings the server must not start with.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret must be at least 32 characters")
	}

	// Outside local development the reset link must not be derived from the
	// request Host header.
	if c.Env != EnvLocal && c.Mail.ResetURLBase == "" {
		return fmt.Errorf("mail.reset_url_base is required when env is %q", c.Env)
	}

	return nil
}
