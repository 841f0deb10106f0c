// Package config loads NanoDB's process-level settings — data directory,
// network listen address, and log verbosity — from built-in defaults, a
// config file, and environment variables, in that increasing order of
// precedence, via viper.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds every setting a NanoDB process needs at startup.
type Config struct {
	DataDir    string `mapstructure:"data_dir"`
	ListenAddr string `mapstructure:"listen_addr"`
	LogLevel   string `mapstructure:"log_level"`
}

const envPrefix = "NANODB"

// Load reads settings from viper's in-process defaults, a config file
// named configName (if found on the search path), and environment
// variables prefixed NANODB_; a later source overrides an earlier one.
func Load(configName string) (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", "./data")
	v.SetDefault("listen_addr", ":8765")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configName != "" {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nanodb")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(err, "config: reading config file")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshalling")
	}
	return &cfg, nil
}
