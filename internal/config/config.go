package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Billing struct {
		BaseURL     string `yaml:"base_url"`
		ProductCode string `yaml:"product_code"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		// Format selects the response encoding requested from the service: json or xml.
		Format     string `yaml:"format"`
		TimeoutMs  int    `yaml:"timeout_ms"`
		RetryCount int    `yaml:"retry_count"`
	} `yaml:"billing"`

	Fixtures struct {
		Dir        string `yaml:"dir"`
		Manifest   string `yaml:"manifest"`
		Listen     string `yaml:"listen"`
		AutoReload bool   `yaml:"auto_reload"`
		DebounceMs int    `yaml:"debounce_ms"`
	} `yaml:"fixtures"`

	Logging struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"logging"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// LoadOrDefault is Load, except that a missing file yields the defaults (plus env overrides).
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Parse(nil)
	}
	return cfg, err
}

func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Billing.TimeoutMs) * time.Millisecond
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Fixtures.DebounceMs) * time.Millisecond
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Billing.BaseURL) == "" {
		cfg.Billing.BaseURL = "https://billing.example.com/api/v1"
	}
	if strings.TrimSpace(cfg.Billing.Format) == "" {
		cfg.Billing.Format = "json"
	}
	if cfg.Billing.TimeoutMs <= 0 {
		cfg.Billing.TimeoutMs = 30000
	}
	if cfg.Billing.RetryCount < 0 {
		cfg.Billing.RetryCount = 0
	}
	if strings.TrimSpace(cfg.Fixtures.Dir) == "" {
		cfg.Fixtures.Dir = "./fixtures"
	}
	if strings.TrimSpace(cfg.Fixtures.Manifest) == "" {
		cfg.Fixtures.Manifest = "routes.yaml"
	}
	if strings.TrimSpace(cfg.Fixtures.Listen) == "" {
		cfg.Fixtures.Listen = "127.0.0.1:3900"
	}
	if cfg.Fixtures.DebounceMs <= 0 {
		cfg.Fixtures.DebounceMs = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("BILLING_BASE_URL")); v != "" {
		cfg.Billing.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_PRODUCT_CODE")); v != "" {
		cfg.Billing.ProductCode = v
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_USERNAME")); v != "" {
		cfg.Billing.Username = v
	}
	if v := os.Getenv("BILLING_PASSWORD"); v != "" {
		cfg.Billing.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_FORMAT")); v != "" {
		cfg.Billing.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Billing.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_RETRY_COUNT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Billing.RetryCount = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_FIXTURES_DIR")); v != "" {
		cfg.Fixtures.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("BILLING_FIXTURES_LISTEN")); v != "" {
		cfg.Fixtures.Listen = v
	}
	cfg.Fixtures.AutoReload = envBool("BILLING_FIXTURES_AUTO_RELOAD", cfg.Fixtures.AutoReload)
	if v := strings.TrimSpace(os.Getenv("BILLING_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	cfg.Logging.JSON = envBool("BILLING_LOG_JSON", cfg.Logging.JSON)
}

func validate(cfg *Config) error {
	u, err := url.Parse(strings.TrimSpace(cfg.Billing.BaseURL))
	if err != nil {
		return fmt.Errorf("billing.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("billing.base_url must be an absolute http(s) url, got %q", cfg.Billing.BaseURL)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Billing.Format)) {
	case "json", "xml":
		cfg.Billing.Format = strings.ToLower(strings.TrimSpace(cfg.Billing.Format))
	default:
		return fmt.Errorf("billing.format must be json or xml, got %q", cfg.Billing.Format)
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	return nil
}

// RequireProductCode is checked by commands that talk to the service.
func (c *Config) RequireProductCode() error {
	if strings.TrimSpace(c.Billing.ProductCode) == "" {
		return errors.New("billing.product_code is required (or set BILLING_PRODUCT_CODE)")
	}
	return nil
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
