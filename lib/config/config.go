// Copyright 2026 The Amanda Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the service configuration file. Every field
// has a default; a missing file yields a fully working configuration
// for a local deployment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	// DataDir holds one subdirectory of JSON documents per guild.
	DataDir string `yaml:"data_dir"`

	// ScratchDir holds in-flight export trees and finished bundles.
	ScratchDir string `yaml:"scratch_dir"`

	// SocketPath is where the control socket listens.
	SocketPath string `yaml:"socket_path"`

	Backup Backup `yaml:"backup"`
	Bundle Bundle `yaml:"bundle"`
}

// Backup configures the daily export job.
type Backup struct {
	// Hour and Minute are the daily firing time in the zone given by
	// UTCOffsetHours.
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`

	// UTCOffsetHours fixes the job's zone. The deployment this grew
	// up in runs on Brasília time, UTC-3, with no DST.
	UTCOffsetHours int `yaml:"utc_offset_hours"`

	// RetryAttempts and RetryDelay bound the per-guild export retry.
	RetryAttempts int      `yaml:"retry_attempts"`
	RetryDelay    Duration `yaml:"retry_delay"`
}

// Duration wraps time.Duration so YAML accepts "2s"-style strings.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var text string
	if err := value.Decode(&text); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Bundle configures bundle compression.
type Bundle struct {
	// Compression is one of none, lz4, zstd.
	Compression string `yaml:"compression"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:    "./dados_servidores",
		ScratchDir: "./temp_backups",
		SocketPath: "./amanda.sock",
		Backup: Backup{
			Hour:           23,
			Minute:         59,
			UTCOffsetHours: -3,
			RetryAttempts:  3,
			RetryDelay:     Duration(2 * time.Second),
		},
		Bundle: Bundle{Compression: "zstd"},
	}
}

// LoadFile reads a YAML configuration file over the defaults. An
// empty path returns the defaults unchanged.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.ScratchDir == "" {
		errs = append(errs, errors.New("scratch_dir must not be empty"))
	}
	if c.SocketPath == "" {
		errs = append(errs, errors.New("socket_path must not be empty"))
	}
	if c.Backup.Hour < 0 || c.Backup.Hour > 23 {
		errs = append(errs, fmt.Errorf("backup.hour %d out of range", c.Backup.Hour))
	}
	if c.Backup.Minute < 0 || c.Backup.Minute > 59 {
		errs = append(errs, fmt.Errorf("backup.minute %d out of range", c.Backup.Minute))
	}
	if c.Backup.UTCOffsetHours < -12 || c.Backup.UTCOffsetHours > 14 {
		errs = append(errs, fmt.Errorf("backup.utc_offset_hours %d out of range", c.Backup.UTCOffsetHours))
	}
	if c.Backup.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("backup.retry_attempts %d must be at least 1", c.Backup.RetryAttempts))
	}
	if c.Backup.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("backup.retry_delay %v must not be negative", c.Backup.RetryDelay))
	}
	switch c.Bundle.Compression {
	case "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("bundle.compression %q must be none, lz4, or zstd", c.Bundle.Compression))
	}
	return errors.Join(errs...)
}

// Location returns the backup schedule's fixed zone.
func (c Config) Location() *time.Location {
	name := fmt.Sprintf("UTC%+d", c.Backup.UTCOffsetHours)
	return time.FixedZone(name, c.Backup.UTCOffsetHours*60*60)
}

// EnsurePaths creates the data and scratch directories.
func (c Config) EnsurePaths() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.MkdirAll(c.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("creating scratch dir: %w", err)
	}
	return nil
}
