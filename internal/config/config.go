// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "govern.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultSweepInterval   = "10m"
	// Default lease watermarks, in seconds of ledger time
	DefaultLeaseLowWatermark  = 30 * 24 * 60 * 60
	DefaultLeaseHighWatermark = 31 * 24 * 60 * 60
)

var ErrInvalidLeaseWatermarks = errors.New(
	"lease low watermark must not exceed the high watermark",
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath       string `yaml:"databasePath"       split_words:"true"`
	BindAddr           string `yaml:"bindAddr"           split_words:"true"`
	ShutdownTimeout    string `yaml:"shutdownTimeout"    split_words:"true"`
	SweepInterval      string `yaml:"sweepInterval"      split_words:"true"`
	GovernanceAddress  string `yaml:"governanceAddress"  split_words:"true"`
	ApiPort            uint   `yaml:"apiPort"            split_words:"true"`
	MetricsPort        uint   `yaml:"metricsPort"        split_words:"true"`
	BadgerCacheSize    uint64 `yaml:"badgerCacheSize"    split_words:"true"`
	LeaseLowWatermark  uint64 `yaml:"leaseLowWatermark"  split_words:"true"`
	LeaseHighWatermark uint64 `yaml:"leaseHighWatermark" split_words:"true"`
	// Restrict proposal creation to shareholders
	ProposalCreatorsMembersOnly bool `yaml:"proposalCreatorsMembersOnly" split_words:"true"`
	Tracing                     bool `yaml:"tracing"`
	TracingStdout               bool `yaml:"tracingStdout"               split_words:"true"`
}

// ShutdownTimeoutDuration returns the parsed shutdown timeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return ret, nil
}

// SweepIntervalDuration returns the parsed lease sweep interval. A zero
// interval disables the background sweeper.
func (c *Config) SweepIntervalDuration() (time.Duration, error) {
	if c.SweepInterval == "" {
		return time.ParseDuration(DefaultSweepInterval)
	}
	ret, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid sweep interval: %w", err)
	}
	if ret < 0 {
		return 0, fmt.Errorf("invalid sweep interval: %s", c.SweepInterval)
	}
	return ret, nil
}

func (c *Config) validate() error {
	if c.LeaseLowWatermark > c.LeaseHighWatermark {
		return fmt.Errorf(
			"%w: %d > %d",
			ErrInvalidLeaseWatermarks,
			c.LeaseLowWatermark,
			c.LeaseHighWatermark,
		)
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.SweepIntervalDuration(); err != nil {
		return err
	}
	return nil
}

var globalConfig = &Config{
	DatabasePath:       ".govern",
	BindAddr:           "0.0.0.0",
	ApiPort:            8080,
	MetricsPort:        12799,
	BadgerCacheSize:    268435456,
	LeaseLowWatermark:  DefaultLeaseLowWatermark,
	LeaseHighWatermark: DefaultLeaseHighWatermark,
	SweepInterval:      DefaultSweepInterval,
	ShutdownTimeout:    DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.govern/govern.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".govern", "govern.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/govern/govern.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/govern/govern.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("govern", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
