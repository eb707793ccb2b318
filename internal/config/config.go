// Package config loads the optional TOML defaults file.
//
// Every field is a pointer so that an absent key can be told apart from a zero value;
// command-line flags that were set explicitly always take precedence.
//
// Example config.toml:
//
//	[count]
//	unit = "word"
//	top = 20
//	ignore-case = true
//
//	[output]
//	format = "table"
//	tokens = true
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Count  CountConfig  `toml:"count"`
	Output OutputConfig `toml:"output"`
}

// CountConfig maps counting and normalization settings.
type CountConfig struct {
	Unit       *string `toml:"unit"`
	Top        *int    `toml:"top"`
	IgnoreCase *bool   `toml:"ignore-case"`
	Stem       *bool   `toml:"stem"`
	Language   *string `toml:"language"`
	MinLength  *int    `toml:"min-length"`
}

// OutputConfig maps report settings.
type OutputConfig struct {
	Format   *string `toml:"format"`
	Tokens   *bool   `toml:"tokens"`
	Encoding *string `toml:"encoding"`
}

// Load reads a TOML config from the given path. A missing file is not an error.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func Load(path string) (FileConfig, error) {
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// DefaultPath returns the default TOML config path.
func DefaultPath() string {
	return filepath.Join(XDGConfigHome(), "wordcount", "config.toml")
}
