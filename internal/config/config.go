// Copyright (c) 2025 River Szasz
// psqlite - encrypted single-table persistence for SQLite
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads and persists the psqlite CLI configuration.
// Precedence: command-line flags, then environment (PSQLITE_*), then the
// config file, then defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full CLI configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Debug    bool           `mapstructure:"debug" yaml:"debug"`
}

// DatabaseConfig describes where the store lives and how it is opened.
type DatabaseConfig struct {
	// Path is the SQLite file backing the store.
	Path string `mapstructure:"path" yaml:"path"`
	// Encrypted selects passphrase-protected opens. The passphrase
	// itself is never written to the config file; it comes from
	// PSQLITE_PASSPHRASE or an interactive prompt.
	Encrypted bool `mapstructure:"encrypted" yaml:"encrypted"`
	// Mocked runs against the in-memory backend. Useful for dry runs.
	Mocked bool `mapstructure:"mocked" yaml:"mocked"`
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(configDir, "psqlite", "psqlite.yaml"), nil
}

// Load resolves the configuration for the given command, binding its
// flags so they take precedence over file and environment values.
func Load(cmd *cobra.Command, explicitFile string) (Config, error) {
	var c Config
	v := viper.New()

	v.SetDefault("database.path", "./psqlite.db")
	v.SetDefault("database.encrypted", false)
	v.SetDefault("database.mocked", false)
	v.SetDefault("debug", false)

	v.SetConfigName("psqlite")
	v.SetConfigType("yaml")

	if explicitFile != "" {
		v.SetConfigFile(explicitFile)
	}
	if userConfigPath, err := getConfigPath(); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("psqlite")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		// Flag names are flat; map them onto their config keys.
		bindings := map[string]string{
			"database.path":      "db",
			"database.encrypted": "encrypted",
			"database.mocked":    "mocked",
			"debug":              "debug",
		}
		for key, flag := range bindings {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// Write persists the configuration to the user config location.
func Write(c *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file names the database location; keep it private anyway.
	return os.WriteFile(path, data, 0o600)
}
