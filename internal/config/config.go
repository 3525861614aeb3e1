package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const defaultGeocodeBaseURL = "https://maps.googleapis.com"

// Config defines the tarcart service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Admin struct {
		Token        string `yaml:"token" env:"ADMIN_TOKEN"`
		PasswordHash string `yaml:"passwordHash" env:"ADMIN_PASSWORD_HASH"`
	} `yaml:"admin"`
	Geocoding struct {
		APIKey  string `yaml:"apiKey" env:"GOOGLE_API_KEY"`
		BaseURL string `yaml:"baseUrl" env:"GEOCODE_BASE_URL"`
	} `yaml:"geocoding"`
}

// Load reads configuration from YAML file and environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.TTL = 60
	cfg.Geocoding.BaseURL = defaultGeocodeBaseURL

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Admin.Token) == "" {
		return nil, errors.New("config: admin token required")
	}
	if strings.TrimSpace(cfg.Admin.PasswordHash) == "" {
		return nil, errors.New("config: admin password hash required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style listen address.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ReportTTL returns the redis report cache TTL as a duration.
func (c *Config) ReportTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return time.Minute
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// RedisEnabled reports whether a redis cache was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}
