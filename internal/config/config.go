package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the order watcher configuration loaded from files and environment variables.
type Config struct {
	AppName        string `mapstructure:"app_name"`
	Env            string `mapstructure:"app_env"`
	LogLevel       string `mapstructure:"log_level"`
	PublishersFile string `mapstructure:"publishers_file"`

	UpgatesAPIURL         string        `mapstructure:"upgates_api_url"`
	UpgatesLogin          string        `mapstructure:"upgates_login"`
	UpgatesAPIKey         string        `mapstructure:"upgates_api_key"`
	UpgatesDebug          bool          `mapstructure:"upgates_debug"`
	UpgatesTimeoutSeconds int64         `mapstructure:"upgates_timeout_seconds"`
	UpgatesTimeout        time.Duration `mapstructure:"-"`

	PollIntervalSeconds  int64         `mapstructure:"poll_interval"`
	PollInterval         time.Duration `mapstructure:"-"`
	WatchLookbackSeconds int64         `mapstructure:"watch_lookback_seconds"`
	WatchLookback        time.Duration `mapstructure:"-"`
	WatchMaxPages        int           `mapstructure:"watch_max_pages"`
	WatchStatusID        string        `mapstructure:"watch_status_id"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "upgates-order-watcher")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("upgates_api_url", "")
	v.SetDefault("upgates_login", "")
	v.SetDefault("upgates_api_key", "")
	v.SetDefault("upgates_debug", false)
	v.SetDefault("upgates_timeout_seconds", 30)
	v.SetDefault("poll_interval", 300) // seconds
	v.SetDefault("watch_lookback_seconds", 3600)
	v.SetDefault("watch_max_pages", 20)
	v.SetDefault("watch_status_id", "")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/orders.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finalize() error {
	c.UpgatesAPIURL = strings.TrimSpace(c.UpgatesAPIURL)
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))

	var missing []string
	if c.UpgatesAPIURL == "" {
		missing = append(missing, "UPGATES_API_URL")
	}
	if strings.TrimSpace(c.UpgatesLogin) == "" {
		missing = append(missing, "UPGATES_LOGIN")
	}
	if strings.TrimSpace(c.UpgatesAPIKey) == "" {
		missing = append(missing, "UPGATES_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.UpgatesTimeoutSeconds <= 0 {
		return errors.New("invalid upgates_timeout_seconds (must be positive seconds)")
	}
	c.UpgatesTimeout = time.Duration(c.UpgatesTimeoutSeconds) * time.Second

	if c.PollIntervalSeconds <= 0 {
		return errors.New("invalid poll_interval (must be positive seconds)")
	}
	c.PollInterval = time.Duration(c.PollIntervalSeconds) * time.Second

	if c.WatchLookbackSeconds <= 0 {
		return errors.New("invalid watch_lookback_seconds (must be positive seconds)")
	}
	c.WatchLookback = time.Duration(c.WatchLookbackSeconds) * time.Second

	if c.WatchMaxPages <= 0 {
		return errors.New("invalid watch_max_pages (must be positive)")
	}

	switch c.StorageType {
	case "bbolt", "none":
	default:
		return fmt.Errorf("unsupported storage_type %q", c.StorageType)
	}

	if c.StorageTTLSeconds <= 0 {
		return errors.New("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return errors.New("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second

	return nil
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	out := *c
	if out.UpgatesAPIKey != "" {
		out.UpgatesAPIKey = "***"
	}
	return out
}
