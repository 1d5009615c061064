package main

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config controls an export run. Values come from defaults, then the
// COL2JSON_* environment, then an optional YAML config file, then flags.
type Config struct {
	BatchSize int      `mapstructure:"batch_size"`
	Workers   int      `mapstructure:"workers"`
	Columns   []string `mapstructure:"columns"`
	Output    string   `mapstructure:"output"`
}

// LoadConfig reads the configuration, optionally merging a YAML file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("batch_size", 1024)
	v.SetDefault("workers", 1)
	v.SetEnvPrefix("COL2JSON")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
