package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http  HTTPConfig  `yaml:"http"`
	Model ModelConfig `yaml:"model"`
	Log   LogConfig   `yaml:"log"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type ModelConfig struct {
	Path      string `yaml:"path"`
	Watch     bool   `yaml:"watch"`
	CacheSize int    `yaml:"cache_size"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Development bool   `yaml:"development"`
}

func Default() *Config {
	return &Config{
		Http: HTTPConfig{
			Port:           8080,
			Timeout:        30 * time.Second,
			MaxBodyBytes:   1 << 20,
			AllowedOrigins: []string{"*"},
		},
		Model: ModelConfig{
			Path:      "models/price_tree.json",
			CacheSize: 1024,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// .env and PHONEPRICE_* environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.Model.Path == "" {
		return errors.New("model path is required")
	}
	if c.Model.CacheSize < 0 {
		return fmt.Errorf("invalid model cache size %d", c.Model.CacheSize)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PHONEPRICE_HTTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("PHONEPRICE_HTTP_PORT: %w", err)
		}
		cfg.Http.Port = p
	}
	if watch := os.Getenv("PHONEPRICE_MODEL_WATCH"); watch != "" {
		w, err := strconv.ParseBool(watch)
		if err != nil {
			return fmt.Errorf("PHONEPRICE_MODEL_WATCH: %w", err)
		}
		cfg.Model.Watch = w
	}
	cfg.Model.Path = getEnv("PHONEPRICE_MODEL_PATH", cfg.Model.Path)
	cfg.Log.Level = getEnv("PHONEPRICE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = getEnv("PHONEPRICE_LOG_FILE", cfg.Log.File)
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
