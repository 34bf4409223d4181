package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API   APIConfig
	UI    UIConfig
	Debug DebugConfig
}

// APIConfig holds platform API settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Token          string
	TokenEnv       string `mapstructure:"token_env"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize   int    `mapstructure:"page_size"`
	DateFormat string `mapstructure:"date_format"`
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	LogFile string `mapstructure:"log_file"`
}

// Load reads configuration from file and env. Env var overrides use prefix PAYPERIOD_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "https://api.topcoder-dev.com/v5")
	v.SetDefault("api.token", "")
	v.SetDefault("api.token_env", "PAYPERIOD_API_TOKEN")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("ui.page_size", 10)
	v.SetDefault("ui.date_format", "Jan 2")
	v.SetDefault("debug.log_file", "")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PAYPERIOD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "payperiod"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PAYPERIOD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.API.Token == "" && c.API.TokenEnv != "" {
		c.API.Token = os.Getenv(c.API.TokenEnv)
	}
	if c.UI.PageSize < 5 {
		c.UI.PageSize = 5
	}
	if c.UI.PageSize > 100 {
		c.UI.PageSize = 100
	}
	return c, nil
}
