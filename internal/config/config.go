package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"taskfile/pkg/task"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKFILE_PORT
const EnvPrefix = "TASKFILE"

// Config holds settings shared by all commands
type Config struct {
	Dir          string `mapstructure:"dir"`
	Port         string `mapstructure:"port"`
	MaxBodySize  int    `mapstructure:"max_body_size"`
	ExportFormat string `mapstructure:"export_format"`
	Verbose      bool   `mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Dir:          ".",
		Port:         "22124",
		MaxBodySize:  task.DefaultMaxBodySize,
		ExportFormat: "yaml",
	}
}

// Load merges defaults, the config file, TASKFILE_* environment variables and
// flags, in increasing priority. Only flags the user actually set override
// the other sources. If configFile is empty, taskfile.yaml is looked up in the
// working directory and in the user config directory; a missing file is fine.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("dir", defaults.Dir)
	v.SetDefault("port", defaults.Port)
	v.SetDefault("max_body_size", defaults.MaxBodySize)
	v.SetDefault("export_format", defaults.ExportFormat)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("taskfile")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "taskfile"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		for key, name := range map[string]string{
			"dir":           "dir",
			"port":          "port",
			"max_body_size": "max-body-size",
			"export_format": "format",
			"verbose":       "verbose",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
