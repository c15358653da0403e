// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads the ls8 TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/ls8/cpu"
)

const (
	DEFAULT_INTERVAL = "100ms" // Step pacing of the original machine.
)

// Config is the contents of an ls8.toml file.
type Config struct {
	Verbose  bool   `toml:"verbose"`  // Verbose logging.
	Interval string `toml:"interval"` // Step pacing, "0s" for a tight loop.
	Limit    int    `toml:"limit"`    // Maximum ticks, 0 for no limit.
	Stack    string `toml:"stack"`    // Stack mode, "pop" or "peek".
	Break    string `toml:"break"`    // Breakpoint expression.
	Snapshot string `toml:"snapshot"` // Path to write a snapshot to at exit.
}

// Default returns the default configuration.
func Default() (cfg *Config) {
	cfg = &Config{
		Interval: DEFAULT_INTERVAL,
		Stack:    cpu.STACK_MODE_POP.String(),
	}
	return
}

// Parse decodes TOML over the default configuration.
func Parse(data []byte) (cfg *Config, err error) {
	cfg = Default()

	err = toml.Unmarshal(data, cfg)
	if err != nil {
		cfg = nil
		return
	}

	err = cfg.Validate()
	if err != nil {
		cfg = nil
		return
	}

	return
}

// Load reads and validates a configuration file.
func Load(path string) (cfg *Config, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	cfg, err = Parse(data)
	if err != nil {
		err = fmt.Errorf("%v: %w", path, err)
		return
	}

	return
}

// Validate checks the stack mode, interval and limit.
func (cfg *Config) Validate() (err error) {
	var errs []error

	if _, serr := cfg.StackMode(); serr != nil {
		errs = append(errs, serr)
	}

	if interval, ierr := cfg.Duration(); ierr != nil {
		errs = append(errs, ierr)
	} else if interval < 0 {
		errs = append(errs, fmt.Errorf("%w: interval %v", ErrNegative, interval))
	}

	if cfg.Limit < 0 {
		errs = append(errs, fmt.Errorf("%w: limit %d", ErrNegative, cfg.Limit))
	}

	err = errors.Join(errs...)
	return
}

// StackMode returns the CPU stack mode named by Stack.
func (cfg *Config) StackMode() (mode cpu.StackMode, err error) {
	mode, err = cpu.ParseStackMode(cfg.Stack)
	if err != nil {
		err = errors.Join(ErrStackMode, err)
		return
	}
	return
}

// Duration returns the step pacing. An empty Interval is no pacing.
func (cfg *Config) Duration() (interval time.Duration, err error) {
	if len(cfg.Interval) == 0 {
		return
	}

	interval, err = time.ParseDuration(cfg.Interval)
	if err != nil {
		err = errors.Join(ErrInterval, err)
		return
	}

	return
}
