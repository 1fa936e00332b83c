// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reader ReaderConfig `toml:"reader"`
	Assist AssistConfig `toml:"assist"`
}

// ReaderConfig maps reader-related settings.
type ReaderConfig struct {
	WPM        *int      `toml:"wpm"`
	FontSize   *string   `toml:"font-size"`
	FontFamily *string   `toml:"font-family"`
	Theme      *string   `toml:"theme"`
	ZenTimeout *Duration `toml:"zen-timeout"`
	Skip       *int      `toml:"skip"`
}

// AssistConfig maps the optional summarize/define endpoint.
type AssistConfig struct {
	Endpoint  *string   `toml:"endpoint"`
	Model     *string   `toml:"model"`
	APIKeyEnv *string   `toml:"api-key-env"`
	Timeout   *Duration `toml:"timeout"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
