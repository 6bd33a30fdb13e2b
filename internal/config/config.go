package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Backend   BackendConfig   `toml:"backend"`
	Redis     RedisConfig     `toml:"redis"`
	Minio     MinioConfig     `toml:"minio"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Jobs      JobsConfig      `toml:"jobs"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// BackendConfig points at the OData inventory service
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the outbound request timeout
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// RedisConfig contains the rate limiter store settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MinioConfig contains attachment storage settings
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

// RateLimitConfig limits requests per caller. Requests <= 0 disables it.
type RateLimitConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

// Window returns the rate limit window
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// JobsConfig contains background job intervals
type JobsConfig struct {
	BackendProbeIntervalSeconds int `toml:"backend_probe_interval_seconds"`
}

// BackendProbeInterval returns the availability probe interval
func (j JobsConfig) BackendProbeInterval() time.Duration {
	return time.Duration(j.BackendProbeIntervalSeconds) * time.Second
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Backend: BackendConfig{
			TimeoutSeconds: 30,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "part-attachments",
		},
		RateLimit: RateLimitConfig{
			Requests:      120,
			WindowSeconds: 60,
		},
		Jobs: JobsConfig{
			BackendProbeIntervalSeconds: 60,
		},
	}
}

// Load reads the optional TOML file at path on top of the defaults and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	str("BACKEND_URL", &c.Backend.BaseURL)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("MINIO_ENDPOINT", &c.Minio.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Minio.AccessKey)
	str("MINIO_SECRET_KEY", &c.Minio.SecretKey)
	str("MINIO_BUCKET", &c.Minio.Bucket)
	str("LOG_LEVEL", &c.Server.LogLevel)
	if v, ok := lookup("MINIO_USE_SSL"); ok && v != "" {
		c.Minio.UseSSL = v == "true"
	}

	for key, dst := range map[string]*int{
		"PORT":                           &c.Server.Port,
		"BACKEND_TIMEOUT_SECONDS":        &c.Backend.TimeoutSeconds,
		"REDIS_DB":                       &c.Redis.DB,
		"RATE_LIMIT_REQUESTS":            &c.RateLimit.Requests,
		"RATE_LIMIT_WINDOW_SECONDS":      &c.RateLimit.WindowSeconds,
		"BACKEND_PROBE_INTERVAL_SECONDS": &c.Jobs.BackendProbeIntervalSeconds,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings the service cannot run without
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required (BACKEND_URL)")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid backend base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend base URL must be an absolute http(s) URL, got %q", c.Backend.BaseURL)
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend timeout must be positive")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate limit window must be positive when rate limiting is enabled")
	}
	if c.Jobs.BackendProbeIntervalSeconds <= 0 {
		return fmt.Errorf("backend probe interval must be positive")
	}
	return nil
}
