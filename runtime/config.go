package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnvVar names the environment variable holding a config path.
const ConfigEnvVar = "LOX_CONFIG"

// Config holds interpreter settings read from a YAML file.
type Config struct {
	Path string `yaml:"-"`

	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	HistoryFile        string `yaml:"history_file"`
	Warnings           *bool  `yaml:"warnings"`
	Debug              bool   `yaml:"debug"`
}

// DefaultConfig returns the settings used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Prompt:             "lox> ",
		ContinuationPrompt: ".... ",
	}
}

// ShowWarnings reports whether resolver warnings should be printed.
func (c *Config) ShowWarnings() bool {
	return c.Warnings == nil || *c.Warnings
}

// HistoryPath returns the REPL history location, expanding a leading "~".
func (c *Config) HistoryPath() string {
	if c.HistoryFile != "" {
		return expandHome(c.HistoryFile)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".lox_history")
}

// LoadConfig reads the configuration from explicit, or else from
// $LOX_CONFIG, or else from ~/.loxrc.yaml. A missing default file yields
// the defaults; a missing explicit file is an error.
func LoadConfig(explicit string) (*Config, error) {
	path := strings.TrimSpace(explicit)
	required := path != ""
	if !required {
		path = strings.TrimSpace(os.Getenv(ConfigEnvVar))
		required = path != ""
	}
	if !required {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".loxrc.yaml")
	}

	cfg, err := LoadConfigFile(expandHome(path))
	if errors.Is(err, os.ErrNotExist) && !required {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadConfigFile parses a single YAML config file. Unknown keys are errors.
func LoadConfigFile(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			cfg.Path = absPath
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	cfg.Path = absPath
	return cfg, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
