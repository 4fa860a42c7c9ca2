// Package config loads the coordinator's YAML configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration. Zero values fall back to
// Default; the listen address has no default and must be given.
type Config struct {
	Listen      string `yaml:"listen"`
	MaxWorkers  int    `yaml:"max_workers"`
	WorkersQuit bool   `yaml:"workers_quit"`

	BoardSize int     `yaml:"board_size"`
	Komi      float64 `yaml:"komi"`
	Handicap  int     `yaml:"handicap"`

	// Book nodes below this playout count are not persisted.
	BookThreshold int `yaml:"book_threshold"`

	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		BoardSize:     19,
		Komi:          7.5,
		BookThreshold: 100,
		LogLevel:      "info",
	}
}

// Load reads and validates the configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: read")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: parse")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.BoardSize < 2 || c.BoardSize > 25 {
		return errors.Errorf("config: board size %d out of range", c.BoardSize)
	}
	if c.MaxWorkers < 0 {
		return errors.Errorf("config: max_workers %d is negative", c.MaxWorkers)
	}
	return nil
}
