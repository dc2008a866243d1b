// Package config loads service settings from an optional YAML file, an
// optional .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Port     string         `yaml:"port"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Payments PaymentsConfig `yaml:"payments"`
	Session  SessionConfig  `yaml:"session"`
	CORS     CORSConfig     `yaml:"cors"`
}

// APIConfig points at the club REST backend.
type APIConfig struct {
	URL string `yaml:"url"`
	// Timeout bounds calls made without a caller deadline. Payment status
	// checks use Payments.VerifyTimeout instead.
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig configures the Postgres audit store. An empty URL disables
// it.
type DatabaseConfig struct {
	URL        string        `yaml:"url"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// RedisConfig configures the session store. An empty URL selects the
// in-memory store.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// PaymentsConfig tunes the reconciliation flow.
type PaymentsConfig struct {
	VerifyTimeout time.Duration `yaml:"verify_timeout"`
}

// SessionConfig controls the session cookie and stored values.
type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Port: "8080",
		API: APIConfig{
			URL:     "http://localhost:8000/",
			Timeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			MaxRetries: 60,
			RetryDelay: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Payments: PaymentsConfig{
			VerifyTimeout: 30 * time.Second,
		},
		Session: SessionConfig{
			CookieName: "club_session",
			TTL:        2 * time.Hour,
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:3000"},
		},
	}
}

// Load builds a Config. path names an optional YAML file; envFile names an
// optional dotenv file. Missing files are not an error, malformed ones are.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.API.URL, "CLUB_API_URL")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Session.CookieName, "SESSION_COOKIE")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.Origins = origins
	}
	if v := os.Getenv("SESSION_SECURE"); v != "" {
		c.Session.Secure = v == "1" || strings.EqualFold(v, "true")
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&c.API.Timeout, "CLUB_API_TIMEOUT"},
		{&c.Database.RetryDelay, "DATABASE_RETRY_DELAY"},
		{&c.Payments.VerifyTimeout, "VERIFY_TIMEOUT"},
		{&c.Session.TTL, "SESSION_TTL"},
	}
	for _, d := range durations {
		v := os.Getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
