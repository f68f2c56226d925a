// Package config loads application settings from file and environment.
// Env var overrides use the prefix PRAKTIJKKAS_ with dots replaced by
// underscores, e.g. PRAKTIJKKAS_SERVER_PORT.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Forecast ForecastConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ImportConfig bounds the import diagnostics.
type ImportConfig struct {
	MaxMessages int    `mapstructure:"max_messages"`
	UploadDir   string `mapstructure:"upload_dir"`
}

// ForecastConfig holds projection settings. MaterialityFloor is a decimal
// string, parsed where it is used.
type ForecastConfig struct {
	HorizonDays      int    `mapstructure:"horizon_days"`
	MaterialityFloor string `mapstructure:"materiality_floor"`
}

// Load reads configuration from file and env.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "./data/praktijkkas.db")
	v.SetDefault("import.max_messages", 20)
	v.SetDefault("import.upload_dir", "./data/uploads")
	v.SetDefault("forecast.horizon_days", 90)
	v.SetDefault("forecast.materiality_floor", "25")

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("PRAKTIJKKAS_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("praktijkkas")
	}

	v.SetEnvPrefix("PRAKTIJKKAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// config file is optional
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
