// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                string  `mapstructure:"PORT"`
	DataDir             string  `mapstructure:"DATA_DIR"`
	UploadsDir          string  `mapstructure:"UPLOADS_DIR"`
	SessionLifetimeHrs  int     `mapstructure:"SESSION_LIFETIME_HOURS"`
	AnonCookieDays      int     `mapstructure:"ANON_COOKIE_DAYS"`
	MaxUploadSizeMB     int     `mapstructure:"MAX_UPLOAD_SIZE_MB"`
	AllowedOrigins      string  `mapstructure:"ALLOWED_ORIGINS"`
	RedisURL            string  `mapstructure:"REDIS_URL"`
	Env                 string  `mapstructure:"APP_ENV"`
	CookieSecure        bool    `mapstructure:"COOKIE_SECURE"`
	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	TracingOTLPEndpoint string  `mapstructure:"TRACING_OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars and defaults cover everything.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Println("Config file not found; using environment variables and defaults")
	}

	// Set default values for development
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("UPLOADS_DIR", "public/uploads")
	viper.SetDefault("SESSION_LIFETIME_HOURS", 24)
	viper.SetDefault("ANON_COOKIE_DAYS", 30)
	viper.SetDefault("MAX_UPLOAD_SIZE_MB", 50)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("TRACING_OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.UploadsDir == "" {
		return errors.New("UPLOADS_DIR is required")
	}
	if c.SessionLifetimeHrs <= 0 {
		return errors.New("SESSION_LIFETIME_HOURS must be positive")
	}
	if c.AnonCookieDays <= 0 {
		return errors.New("ANON_COOKIE_DAYS must be positive")
	}
	if c.MaxUploadSizeMB <= 0 {
		return errors.New("MAX_UPLOAD_SIZE_MB must be positive")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if !c.CookieSecure {
			log.Println("WARNING: COOKIE_SECURE is disabled in production. Session cookies will be sent over plain HTTP.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}

// MaxUploadSizeBytes returns the upload ceiling in bytes.
func (c *Config) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

// SessionLifetime returns the session lifetime as a duration.
func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeHrs) * time.Hour
}

// AnonCookieLifetime returns the anonymous-username cookie lifetime.
func (c *Config) AnonCookieLifetime() time.Duration {
	return time.Duration(c.AnonCookieDays) * 24 * time.Hour
}
