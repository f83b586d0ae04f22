package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Version int `yaml:"version"`
	Story   struct {
		Path string `yaml:"path"`
	} `yaml:"story"`
	Saves struct {
		Dir string `yaml:"dir"`
	} `yaml:"saves"`
	Network struct {
		APIPort int `yaml:"api_port"`
		DBPort  int `yaml:"db_port"`
	} `yaml:"network"`
}

// APIPort returns the configured HTTP port, defaulting to 8080 if not set.
func (c *RuntimeConfig) APIPort() int {
	if c.Network.APIPort == 0 {
		return 8080
	}
	return c.Network.APIPort
}

// SavesDir returns the save-slot directory, defaulting to "saves" if not set.
func (c *RuntimeConfig) SavesDir() string {
	if c.Saves.Dir == "" {
		return "saves"
	}
	return c.Saves.Dir
}

func LoadRuntimeConfig(path string) (*RuntimeConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RuntimeConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported runtime.yaml version: %d", cfg.Version)
	}

	if cfg.Story.Path == "" {
		return nil, fmt.Errorf("runtime.yaml: story.path is required")
	}

	return &cfg, nil
}
