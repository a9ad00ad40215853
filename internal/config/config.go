// Package config loads the docbrowse application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	UI      UIConfig      `mapstructure:"ui"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type GeneralConfig struct {
	AutoConnectLast bool `mapstructure:"auto_connect_last"`
	DefaultLimit    int  `mapstructure:"default_limit"`
}

type UIConfig struct {
	MouseEnabled         bool `mapstructure:"mouse_enabled"`
	MaxCellDisplayLength int  `mapstructure:"max_cell_display_length"`
	FormatDocuments      bool `mapstructure:"format_documents"`
}

type StoreConfig struct {
	IDField        string `mapstructure:"id_field"`
	QueryTimeout   int    `mapstructure:"query_timeout"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
}

type LoggingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Level   string `mapstructure:"level"`
}

// Load loads configuration from files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// User config directory first, then the working directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "docbrowse"))
	}
	v.AddConfigPath(".")

	v.SetDefault("general.auto_connect_last", false)
	v.SetDefault("general.default_limit", 100)
	v.SetDefault("ui.mouse_enabled", true)
	v.SetDefault("ui.max_cell_display_length", 100)
	v.SetDefault("ui.format_documents", true)
	v.SetDefault("store.id_field", "Id")
	v.SetDefault("store.query_timeout", 30000)
	v.SetDefault("store.connect_timeout", 10000)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.level", "info")

	// A missing file is fine, defaults apply
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "docbrowse"), nil
}
