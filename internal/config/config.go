package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	uberconfig "go.uber.org/config"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
)

type Config struct {
	Env            string        `yaml:"env"`
	LogLevel       string        `yaml:"log_level"`
	HTTPAddr       string        `yaml:"http_addr"`
	DBType         string        `yaml:"storage_backend"`
	DBDSN          string        `yaml:"postgres_dsn"`
	DataDir        string        `yaml:"data_dir"`
	AuthMode       string        `yaml:"auth_mode"`
	JWTSecret      string        `yaml:"jwt_secret"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	JWTTTL         time.Duration `yaml:"jwt_ttl"`
	AuthServiceURL string        `yaml:"auth_service_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
	WeekStartName  string        `yaml:"week_start"`
}

// Parse reads .env, then the YAML file named by CONFIG_PATH, then the environment.
// Later sources override earlier ones.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := c.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if err := c.overrideFromEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func defaults() *Config {
	return &Config{
		Env:            "development",
		LogLevel:       "info",
		HTTPAddr:       ":8088",
		DBType:         "file",
		DataDir:        "data",
		AuthMode:       "local",
		JWTIssuer:      "hydrosleep",
		JWTTTL:         72 * time.Hour,
		RequestTimeout: 5 * time.Second,
		RateLimitRPS:   5,
		RateLimitBurst: 20,
		WeekStartName:  "sunday",
	}
}

func (c *Config) loadYAML(path string) error {
	provider, err := uberconfig.NewYAML(
		uberconfig.File(path),
		uberconfig.Expand(os.LookupEnv),
	)
	if err != nil {
		return fmt.Errorf("failed to create config provider: %w", err)
	}
	if err := provider.Get(uberconfig.Root).Populate(c); err != nil {
		return fmt.Errorf("failed to populate config: %w", err)
	}
	return nil
}

func (c *Config) overrideFromEnv() error {
	setString(&c.Env, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.DBType, "STORAGE_BACKEND")
	setString(&c.DBDSN, "POSTGRES_DSN")
	setString(&c.DataDir, "DATA_DIR")
	setString(&c.AuthMode, "AUTH_MODE")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.JWTIssuer, "JWT_ISSUER")
	setString(&c.AuthServiceURL, "AUTH_SERVICE_URL")
	setString(&c.WeekStartName, "WEEK_START")

	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.JWTTTL = d
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimitRPS = f
	}
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimitBurst = i
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return errors.New("APP_ENV must be one of: development, staging, production, test")
	}
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "file":
		if c.DataDir == "" {
			return errors.New("file storage requires DATA_DIR to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres")
	}
	switch c.AuthMode {
	case "local":
		if c.Env != "development" && c.Env != "test" && len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters outside development")
		}
	case "remote":
		if c.AuthServiceURL == "" {
			return errors.New("AUTH_SERVICE_URL is required when AUTH_MODE=remote")
		}
	default:
		return errors.New("AUTH_MODE must be one of: local, remote")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if _, err := calendar.ParseWeekday(c.WeekStartName); err != nil {
		return fmt.Errorf("WEEK_START: %w", err)
	}
	return nil
}

// WeekStart is the configured first day of the analytics week.
func (c *Config) WeekStart() time.Weekday {
	d, err := calendar.ParseWeekday(c.WeekStartName)
	if err != nil {
		return calendar.DefaultWeekStart
	}
	return d
}

// Secret returns the signing secret, falling back to a fixed development value.
func (c *Config) Secret() string {
	if c.JWTSecret == "" {
		return "development-only-secret-change-me!"
	}
	return c.JWTSecret
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
