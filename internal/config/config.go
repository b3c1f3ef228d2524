package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evanofslack/porkbun-ddns/internal/target"
)

const (
	defaultCheckInterval = 300 * time.Second
	defaultIPEchoURL     = "https://api.ipify.org"
	defaultAPIBaseURL    = "https://api.porkbun.com/api/json/v3"
	defaultRecordTTL     = 600
	defaultHTTPTimeout   = 15 * time.Second
	defaultMetricsAddr   = ":9090"
)

// Config is assembled once at startup and read-only afterwards. Required
// values come from the environment; an optional YAML file supplies defaults
// that the environment overrides.
type Config struct {
	APIKey       string
	SecretAPIKey string
	Domain       string
	Targets      []target.Target

	CheckInterval time.Duration
	IPEchoURL     string
	APIBaseURL    string
	RecordTTL     int
	HTTPTimeout   time.Duration

	MetricsAddr string
	LogLevel    string
	Env         string
}

// fileConfig mirrors the optional YAML file. Every field is overridable from
// the environment.
type fileConfig struct {
	APIKey               string `yaml:"apiKey"`
	SecretAPIKey         string `yaml:"secretApiKey"`
	Domain               string `yaml:"domain"`
	Subdomains           string `yaml:"subdomains"`
	CheckIntervalSeconds int    `yaml:"checkIntervalSeconds"`
	IPEchoURL            string `yaml:"ipEchoUrl"`
	APIBaseURL           string `yaml:"apiBaseUrl"`
	RecordTTL            int    `yaml:"recordTtl"`
	HTTPTimeout          string `yaml:"httpTimeout"`
	MetricsAddr          string `yaml:"metricsAddr"`
	LogLevel             string `yaml:"logLevel"`
	Env                  string `yaml:"env"`
}

// Load reads configuration from the environment, layered over the optional
// file named by DDNS_CONFIG_FILE. Any missing or invalid required value is
// returned as an error; the caller is expected to treat it as fatal.
func Load() (*Config, error) {
	var fc fileConfig
	if path := os.Getenv("DDNS_CONFIG_FILE"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		APIKey:       getenv("PORKBUN_API_KEY", fc.APIKey),
		SecretAPIKey: getenv("PORKBUN_SECRET_API_KEY", fc.SecretAPIKey),
		Domain:       getenv("PORKBUN_DOMAIN", fc.Domain),
		IPEchoURL:    getenv("DDNS_IP_ECHO_URL", firstOf(fc.IPEchoURL, defaultIPEchoURL)),
		APIBaseURL:   getenv("DDNS_API_BASE_URL", firstOf(fc.APIBaseURL, defaultAPIBaseURL)),
		MetricsAddr:  getenv("DDNS_METRICS_ADDR", firstOf(fc.MetricsAddr, defaultMetricsAddr)),
		LogLevel:     getenv("DDNS_LOG_LEVEL", firstOf(fc.LogLevel, "info")),
		Env:          getenv("DDNS_ENV", firstOf(fc.Env, "production")),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PORKBUN_API_KEY is required")
	}
	if cfg.SecretAPIKey == "" {
		return nil, fmt.Errorf("PORKBUN_SECRET_API_KEY is required")
	}
	if cfg.Domain == "" {
		return nil, fmt.Errorf("PORKBUN_DOMAIN is required")
	}

	subdomains, subdomainSet := os.LookupEnv("PORKBUN_SUBDOMAIN")
	if !subdomainSet {
		subdomains = fc.Subdomains
	}
	targets, err := target.Parse(cfg.Domain, subdomains)
	if err != nil {
		return nil, fmt.Errorf("parse targets: %w", err)
	}
	cfg.Targets = targets

	interval, err := positiveSeconds("PORKBUN_CHECK_INTERVAL_SECONDS", fc.CheckIntervalSeconds, defaultCheckInterval)
	if err != nil {
		return nil, err
	}
	cfg.CheckInterval = interval

	ttl, err := positiveInt("DDNS_RECORD_TTL", fc.RecordTTL, defaultRecordTTL)
	if err != nil {
		return nil, err
	}
	cfg.RecordTTL = ttl

	timeout, err := duration("DDNS_HTTP_TIMEOUT", fc.HTTPTimeout, defaultHTTPTimeout)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func positiveSeconds(key string, fileValue int, fallback time.Duration) (time.Duration, error) {
	if raw := os.Getenv(key); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
		}
		if n <= 0 {
			return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
		}
		return time.Duration(n) * time.Second, nil
	}
	if fileValue != 0 {
		if fileValue < 0 {
			return 0, fmt.Errorf("%s: must be positive, got %d", key, fileValue)
		}
		return time.Duration(fileValue) * time.Second, nil
	}
	return fallback, nil
}

func positiveInt(key string, fileValue, fallback int) (int, error) {
	if raw := os.Getenv(key); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
		}
		if n <= 0 {
			return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
		}
		return n, nil
	}
	if fileValue != 0 {
		if fileValue < 0 {
			return 0, fmt.Errorf("%s: must be positive, got %d", key, fileValue)
		}
		return fileValue, nil
	}
	return fallback, nil
}

func duration(key, fileValue string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		raw = fileValue
	}
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
