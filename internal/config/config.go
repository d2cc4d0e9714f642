package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "dev-secret-change-in-production"

var ErrDefaultSecretInProduction = errors.New("JWT_SECRET must be set in production environment")

// Store drivers accepted in STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

type Config struct {
	Port string
	Env  string

	StoreDriver   string
	MongoURL      string
	MongoDatabase string
	DatabaseDSN   string

	JWTSecret string
	JWTExpiry time.Duration

	SendGridAPIKey string
	MailFrom       string

	AuthRateLimit float64
	AuthRateBurst int
}

// Load reads the configuration from the environment. Malformed numeric or
// duration values and an unknown store driver are errors, as is the default
// JWT secret when ENV is production.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		StoreDriver:    getEnv("STORE_DRIVER", StoreMongo),
		MongoURL:       getEnv("MONGODB_URL", "mongodb://127.0.0.1:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "task-manager-api"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/taskmanager?parseTime=true&clientFoundRows=true"),
		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "noreply@taskmanager.local"),
	}

	var err error
	if cfg.JWTExpiry, err = getEnvDuration("JWT_EXPIRY", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.AuthRateLimit, err = getEnvFloat("AUTH_RATE_LIMIT_RPS", 5); err != nil {
		errs = append(errs, err)
	}
	if cfg.AuthRateBurst, err = getEnvInt("AUTH_RATE_LIMIT_BURST", 10); err != nil {
		errs = append(errs, err)
	}

	switch cfg.StoreDriver {
	case StoreMongo, StoreMySQL, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver))
	}

	if cfg.Env == "production" && cfg.JWTSecret == defaultJWTSecret {
		errs = append(errs, ErrDefaultSecretInProduction)
	}

	return cfg, errors.Join(errs...)
}

// IsProduction reports whether ENV is production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// getEnvDuration accepts Go duration strings ("24h") or a plain number of seconds.
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
