package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	envVarPrefix = "FATNAV"
	appName      = "fatnav"
)

// Config holds the settings shared by all subcommands. Flags override the
// environment, the environment overrides the config file.
type Config struct {
	Image     string `envconfig:"FATNAV_IMAGE"     yaml:"image"`
	Partition int    `envconfig:"FATNAV_PARTITION" yaml:"partition"`
	Verbose   bool   `envconfig:"FATNAV_VERBOSE"   yaml:"verbose"`
}

// loadConfig reads the YAML file named by FATNAV_CONFIG_FILE, falling back to
// ~/.config/fatnav.yaml, and applies the FATNAV_* environment on top. A
// missing config file is fine, the zero Config is valid.
func loadConfig() (*Config, error) {
	configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE")
	if configFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configFile = filepath.Join(home, ".config", appName+".yaml")
		}
	}

	var c Config
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}
