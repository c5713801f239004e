package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort            = "3000"
	DefaultTelegramAPIBase = "https://api.telegram.org"
	DefaultGeoAPIBase      = "http://ip-api.com"
	DefaultMaxUploadBytes  = 20 << 20
)

// Config is the process-wide configuration. It is built once at startup and
// handed to every component constructor; nothing reads the environment after that.
type Config struct {
	Port           string   `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	DatabaseURL    string   `yaml:"database_url"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	Telegram       Telegram `yaml:"telegram"`
	Geo            Geo      `yaml:"geo"`
}

type Telegram struct {
	BotToken string        `yaml:"bot_token"`
	ChatID   string        `yaml:"chat_id"`
	APIBase  string        `yaml:"api_base"`
	Timeout  time.Duration `yaml:"timeout"`
}

type Geo struct {
	APIBase string        `yaml:"api_base"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns a Config with every optional field populated.
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		LogLevel:       "info",
		MaxUploadBytes: DefaultMaxUploadBytes,
		Telegram: Telegram{
			APIBase: DefaultTelegramAPIBase,
			Timeout: 30 * time.Second,
		},
		Geo: Geo{
			APIBase: DefaultGeoAPIBase,
			Timeout: 5 * time.Second,
		},
	}
}

// LoadEnvFile loads variables from a .env file if present. A missing file is
// fine, the variables may come from the real environment.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not load %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from defaults, the optional YAML file at path, and then
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
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
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	str("DATABASE_URL", &c.DatabaseURL)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatID)
	str("TELEGRAM_API_BASE", &c.Telegram.APIBase)
	str("GEO_API_BASE", &c.Geo.APIBase)
	if err := dur("TELEGRAM_TIMEOUT", &c.Telegram.Timeout); err != nil {
		return err
	}
	if err := dur("GEO_TIMEOUT", &c.Geo.Timeout); err != nil {
		return err
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	return nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	if c.Telegram.ChatID == "" {
		return errors.New("TELEGRAM_CHAT_ID is not set")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// Addr is the listen address for the HTTP service.
func (c *Config) Addr() string {
	return ":" + c.Port
}
