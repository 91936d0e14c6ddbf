package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/AlexisVallejos/macroentreno-flet/internal/app"
)

const EnvPrefix = "MACRO"

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config is read from config.yaml, MACRO_* environment variables and flags,
// in increasing order of precedence.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Log       LogConfig       `mapstructure:"log"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	USDA      USDAConfig      `mapstructure:"usda"`
	FatSecret FatSecretConfig `mapstructure:"fatsecret"`
}

type DataConfig struct {
	Path    string `mapstructure:"path"`
	Backend string `mapstructure:"backend"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type USDAConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// FatSecretConfig holds the Platform API consumer credentials. Region and
// language pick the food market.
type FatSecretConfig struct {
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`
	Region         string `mapstructure:"region"`
	Language       string `mapstructure:"language"`
	APIURL         string `mapstructure:"api_url"`
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.path", "")
	v.SetDefault("data.backend", BackendJSON)
	v.SetDefault("log.level", "warn")
	v.SetDefault("catalog.path", "")
	v.SetDefault("usda.api_key", "")
	v.SetDefault("usda.base_url", "")
	v.SetDefault("fatsecret.consumer_key", "")
	v.SetDefault("fatsecret.consumer_secret", "")
	v.SetDefault("fatsecret.region", "AR")
	v.SetDefault("fatsecret.language", "es")
	v.SetDefault("fatsecret.api_url", "")
	return v
}

// Load reads an optional .env file and an optional config.yaml in configDir
// into v and returns the merged configuration.
func Load(v *viper.Viper, configDir, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if configDir != "" {
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Data.Backend = strings.ToLower(strings.TrimSpace(cfg.Data.Backend))
	switch cfg.Data.Backend {
	case "":
		cfg.Data.Backend = BackendJSON
	case BackendJSON, BackendSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported data backend %q (want %s or %s)", cfg.Data.Backend, BackendJSON, BackendSQLite)
	}

	if strings.TrimSpace(cfg.Data.Path) == "" {
		var err error
		if cfg.Data.Backend == BackendSQLite {
			cfg.Data.Path, err = app.DefaultSQLitePath()
		} else {
			cfg.Data.Path, err = app.DefaultDataPath()
		}
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
