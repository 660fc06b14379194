package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret-change-in-production"

// ErrInsecureSecret is returned when production runs with the development JWT secret.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production environment")

// Config is built once at startup and handed to the components that need it.
type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string `validate:"required,oneof=development test production"`
	LogLevel string `validate:"required,oneof=debug info warn error"`

	StoreDriver string `validate:"required,oneof=mysql mongo"`
	DatabaseDSN string `validate:"required_if=StoreDriver mysql"`
	MongoURI    string `validate:"required_if=StoreDriver mongo"`
	MongoDB     string `validate:"required_if=StoreDriver mongo"`

	JWTSecret string        `validate:"required"`
	JWTExpiry time.Duration `validate:"gte=0"`

	SendGridAPIKey  string
	MailFrom        string `validate:"required,email"`
	MailFromName    string
	NotifyWorkers   int `validate:"gte=1"`
	NotifyQueueSize int `validate:"gte=1"`

	CORSOrigins   []string
	AuthRateLimit float64 `validate:"gte=0"`
	AuthRateBurst int     `validate:"gte=0"`
}

// Load reads configuration from the environment, applying defaults for
// anything unset, and validates the result.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "mysql")
	v.SetDefault("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/taskly?parseTime=true")
	v.SetDefault("MONGO_URI", "mongodb://127.0.0.1:27017")
	v.SetDefault("MONGO_DB", "taskly")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRY", "168h")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM", "no-reply@taskly.local")
	v.SetDefault("MAIL_FROM_NAME", "Taskly")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 100)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("AUTH_RATE_LIMIT", 5)
	v.SetDefault("AUTH_RATE_BURST", 10)
	v.AutomaticEnv()

	cfg := Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("ENV"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDB:         v.GetString("MONGO_DB"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTExpiry:       v.GetDuration("JWT_EXPIRY"),
		SendGridAPIKey:  v.GetString("SENDGRID_API_KEY"),
		MailFrom:        v.GetString("MAIL_FROM"),
		MailFromName:    v.GetString("MAIL_FROM_NAME"),
		NotifyWorkers:   v.GetInt("NOTIFY_WORKERS"),
		NotifyQueueSize: v.GetInt("NOTIFY_QUEUE_SIZE"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		AuthRateLimit:   v.GetFloat64("AUTH_RATE_LIMIT"),
		AuthRateBurst:   v.GetInt("AUTH_RATE_BURST"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrInsecureSecret
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
