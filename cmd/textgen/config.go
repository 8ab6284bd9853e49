package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the textgen configuration file
// (~/.config/textgen/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	// Vocabulary defaults
	VocabMode *string `yaml:"vocab_mode"`
	VocabSize *int64  `yaml:"vocab_size"`
	Sentinel  *string `yaml:"sentinel"`
	EOS       *string `yaml:"eos"`

	// Generation defaults
	Temperatures []float64 `yaml:"temperatures"`
	Steps        *int64    `yaml:"steps"`
	Seed         *int64    `yaml:"seed"`
	Parallel     *bool     `yaml:"parallel"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "textgen", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when path
// is empty. A missing file yields a zero Config; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
	}
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyLoggingConfig applies config file defaults to the root logging flags
// when they were not explicitly set.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyVocabConfig applies config file defaults to vocabulary construction
// flags.
func applyVocabConfig(c *cli.Command, cfg Config, mode *string, size *int64, sentinel, eos *string) {
	if cfg.VocabMode != nil && !c.IsSet("mode") {
		*mode = *cfg.VocabMode
	}
	if cfg.VocabSize != nil && !c.IsSet("size") {
		*size = *cfg.VocabSize
	}
	if cfg.Sentinel != nil && !c.IsSet("sentinel") {
		*sentinel = *cfg.Sentinel
	}
	if cfg.EOS != nil && !c.IsSet("eos") {
		*eos = *cfg.EOS
	}
}

// applyGenerateConfig applies config file defaults to sampling flags.
func applyGenerateConfig(c *cli.Command, cfg Config, temps *[]float64, steps, seed *int64, parallel *bool) {
	if len(cfg.Temperatures) > 0 && !c.IsSet("temps") {
		*temps = append([]float64(nil), cfg.Temperatures...)
	}
	if cfg.Steps != nil && !c.IsSet("steps") {
		*steps = *cfg.Steps
	}
	if cfg.Seed != nil && !c.IsSet("rng-seed") {
		*seed = *cfg.Seed
	}
	if cfg.Parallel != nil && !c.IsSet("parallel") {
		*parallel = *cfg.Parallel
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
