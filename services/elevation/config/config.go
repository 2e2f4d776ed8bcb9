// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the elevation pass configuration.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all settings of the elevation pass.
type Config struct {
	// TileStorePath is the tile store root directory.
	TileStorePath string `yaml:"tile_store_path" validate:"required"`

	// ElevationDir is the directory holding SRTM ".hgt" rasters. When
	// empty or nonexistent, the pass is skipped with a warning rather
	// than failing.
	ElevationDir string `yaml:"elevation_dir"`

	// Concurrency is the worker-thread count. Zero means one worker
	// per CPU.
	Concurrency int `yaml:"concurrency" validate:"gte=0"`

	// ReaderBudgetBytes bounds each worker's decoded-tile cache.
	// Zero selects the default budget (64 MiB). The bound is per
	// worker, not global.
	ReaderBudgetBytes int64 `yaml:"reader_budget_bytes" validate:"gte=0"`

	// ShuffleSeed fixes the randomized tile order. Zero draws a seed
	// from the clock.
	ShuffleSeed int64 `yaml:"shuffle_seed"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogDir enables JSON file logging when set.
	LogDir string `yaml:"log_dir"`
}

// Default returns the configuration defaults applied before a YAML
// file is merged over them.
func Default() Config {
	return Config{
		LogLevel: "info",
	}
}

// Load reads, merges, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct-tag constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
