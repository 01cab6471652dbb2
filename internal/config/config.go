package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/specwalk/internal/domain"
)

// EnvVar names the environment variable pointing at a config file.
const EnvVar = "SPECWALK_CONFIG"

// Config is the top-level configuration struct.
type Config struct {
	Explore ExploreConfig `yaml:"explore"`
	Report  ReportConfig  `yaml:"report"`
	Input   InputConfig   `yaml:"input"`
	Logging LoggingConfig `yaml:"logging"`
}

type ExploreConfig struct {
	MaxPasses int   `yaml:"max_passes"` // 0 disables the limit
	FlatPaths bool  `yaml:"flat_paths"`
	Parallel  *bool `yaml:"parallel"` // pointer to distinguish unset from false
}

type ReportConfig struct {
	Format     string `yaml:"format"`      // "text", "yaml" or "html"
	Output     string `yaml:"output"`      // file path, "-" for stdout
	Locations  bool   `yaml:"locations"`   // print source positions in text output
	RecordsDir string `yaml:"records_dir"` // where entry records are exported, empty disables
}

type InputConfig struct {
	Directories []string `yaml:"directories"`
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	Recursive   *bool    `yaml:"recursive"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseConfig, path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError(domain.PhaseConfig, path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// FromEnv loads the file named by SPECWALK_CONFIG, or returns the defaults
// when the variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
