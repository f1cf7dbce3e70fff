package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	sharederrors "github.com/mkorobov/daily-topic-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	TelegramBotToken   string `koanf:"telegram_bot_token"`
	StoragePath        string `koanf:"storage_path"`
	HTTPPort           string `koanf:"http_port"`
	Timezone           string `koanf:"timezone"`
	GatewayTimeoutSecs int    `koanf:"gateway_timeout_secs"`
	AdminCacheTTLSecs  int    `koanf:"admin_cache_ttl_secs"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load config file from various formats
	configFiles := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"config.toml",
	}

	// Use lo.Find to find the first existing config file
	configFile, found := lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})

	if found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Load environment variables (they override config file values)
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	// Set defaults
	if !k.Exists("storage_path") {
		k.Set("storage_path", "./data")
	}
	if !k.Exists("http_port") {
		k.Set("http_port", "8080")
	}
	if !k.Exists("timezone") {
		k.Set("timezone", "Europe/Moscow")
	}
	if !k.Exists("gateway_timeout_secs") {
		k.Set("gateway_timeout_secs", 10)
	}
	if !k.Exists("admin_cache_ttl_secs") {
		k.Set("admin_cache_ttl_secs", 600)
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	// Validate required fields
	if cfg.TelegramBotToken == "" {
		return nil, sharederrors.ErrMissingBotToken
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, oops.With("timezone", cfg.Timezone).Wrap(err)
	}

	return &cfg, nil
}

// Location resolves the configured fixed time zone. Load has already
// validated it, so this never fails after a successful Load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GatewayTimeout is the per-call deadline for chat gateway requests.
func (c *Config) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutSecs) * time.Second
}

// AdminCacheTTL bounds the staleness of cached administrator sets.
func (c *Config) AdminCacheTTL() time.Duration {
	return time.Duration(c.AdminCacheTTLSecs) * time.Second
}
