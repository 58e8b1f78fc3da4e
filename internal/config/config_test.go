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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobalConfig() {
	globalConfig = &Config{
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
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "govern.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	resetGlobalConfig()
	path := writeConfigFile(t, `
databasePath: /var/lib/govern
apiPort: 9000
leaseLowWatermark: 100
leaseHighWatermark: 200
proposalCreatorsMembersOnly: true
sweepInterval: 1m
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	expected := &Config{
		DatabasePath:                "/var/lib/govern",
		BindAddr:                    "0.0.0.0",
		ApiPort:                     9000,
		MetricsPort:                 12799,
		BadgerCacheSize:             268435456,
		LeaseLowWatermark:           100,
		LeaseHighWatermark:          200,
		ProposalCreatorsMembersOnly: true,
		SweepInterval:               "1m",
		ShutdownTimeout:             DefaultShutdownTimeout,
	}
	assert.Equal(t, expected, cfg)
	interval, err := cfg.SweepIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, interval)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	resetGlobalConfig()
	path := writeConfigFile(t, "apiPort: 9000\ndatabasePath: /from/file\n")
	t.Setenv("GOVERN_API_PORT", "9100")
	t.Setenv("GOVERN_GOVERNANCE_ADDRESS", "GDAO")
	t.Setenv("GOVERN_TRACING", "true")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9100), cfg.ApiPort)
	assert.Equal(t, "/from/file", cfg.DatabasePath)
	assert.Equal(t, "GDAO", cfg.GovernanceAddress)
	assert.True(t, cfg.Tracing)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errIs   error
	}{
		{
			name:    "watermarks inverted",
			content: "leaseLowWatermark: 300\nleaseHighWatermark: 200\n",
			errIs:   ErrInvalidLeaseWatermarks,
		},
		{
			name:    "bad shutdown timeout",
			content: "shutdownTimeout: soon\n",
		},
		{
			name:    "negative sweep interval",
			content: "sweepInterval: -5s\n",
		},
		{
			name:    "malformed yaml",
			content: "apiPort: [\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetGlobalConfig()
			_, err := LoadConfig(writeConfigFile(t, tc.content))
			require.Error(t, err)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	resetGlobalConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDurationDefaults(t *testing.T) {
	cfg := &Config{}
	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
	interval, err := cfg.SweepIntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, interval)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := &Config{DatabasePath: "x"}
	ctx := WithContext(context.Background(), cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
