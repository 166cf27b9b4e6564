package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the application reads from the environment.
type Config struct {
	AppPort        string
	DBDriver       string
	DatabaseDSN    string
	UploadDir      string
	UploadNaming   string
	MaxUploadMB    int
	AuthEnabled    bool
	JWTSecret      string
	SessionTTL     time.Duration
	LoginRateLimit int
	RabbitMQURL    string
	LogLevel       string
	LogFormat      string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "mydatabase.db")
	v.SetDefault("UPLOAD_DIR", "static/uploads")
	v.SetDefault("UPLOAD_NAMING", "uuid")
	v.SetDefault("MAX_UPLOAD_MB", 16)
	v.SetDefault("AUTH_ENABLED", true)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		DBDriver:       v.GetString("DB_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		UploadNaming:   v.GetString("UPLOAD_NAMING"),
		MaxUploadMB:    v.GetInt("MAX_UPLOAD_MB"),
		AuthEnabled:    v.GetBool("AUTH_ENABLED"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the application cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite or postgres", c.DBDriver)
	}
	switch c.UploadNaming {
	case "uuid", "original":
	default:
		return fmt.Errorf("invalid UPLOAD_NAMING %q: want uuid or original", c.UploadNaming)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.AuthEnabled {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is true")
		}
		if c.SessionTTL <= 0 {
			return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
		}
		if c.LoginRateLimit <= 0 {
			return fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRateLimit)
		}
	}
	return nil
}
