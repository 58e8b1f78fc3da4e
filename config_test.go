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

package govern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDatabasePath("/tmp/govern"),
		WithLeaseWatermarks(100, 200),
		WithSweepInterval(time.Minute),
		WithApiListenAddress("127.0.0.1:0"),
		WithGovernanceAddress("GDAO"),
		WithProposalCreatorsMembersOnly(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, "/tmp/govern", cfg.dataDir)
	assert.Equal(t, uint64(100), cfg.leaseLowWatermark)
	assert.Equal(t, uint64(200), cfg.leaseHighWatermark)
	assert.Equal(t, time.Minute, cfg.sweepInterval)
	assert.Equal(t, "127.0.0.1:0", cfg.apiListenAddress)
	assert.Equal(t, "GDAO", string(cfg.governanceAddress))
	assert.True(t, cfg.membersOnly)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
	assert.False(t, cfg.tracing)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOptionFunc
		wantErr bool
	}{
		{name: "defaults"},
		{
			name: "watermarks",
			opts: []ConfigOptionFunc{WithLeaseWatermarks(10, 20)},
		},
		{
			name:    "inverted watermarks",
			opts:    []ConfigOptionFunc{WithLeaseWatermarks(30, 20)},
			wantErr: true,
		},
		{
			name:    "negative sweep interval",
			opts:    []ConfigOptionFunc{WithSweepInterval(-time.Second)},
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := New(NewConfig(tc.opts...))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, n.Stop())
		})
	}
}
