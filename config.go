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
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry       prometheus.Registerer
	logger             *slog.Logger
	clock              database.Clock
	dataDir            string
	apiListenAddress   string
	governanceAddress  types.Address
	badgerCacheSize    uint64
	leaseLowWatermark  uint64
	leaseHighWatermark uint64
	sweepInterval      time.Duration
	shutdownTimeout    time.Duration
	membersOnly        bool
	tracing            bool
	tracingStdout      bool
}

func (n *Node) configValidate() error {
	if n.config.leaseLowWatermark > n.config.leaseHighWatermark &&
		n.config.leaseHighWatermark != 0 {
		return errors.New(
			"lease low watermark must not exceed the high watermark",
		)
	}
	if n.config.sweepInterval < 0 {
		return errors.New("sweep interval must not be negative")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new govern config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBadgerCacheSize specifies the block cache size of the blob store, in bytes
func WithBadgerCacheSize(size uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.badgerCacheSize = size
	}
}

// WithLeaseWatermarks specifies the lease watermarks, in seconds of ledger time. A write leaves an
// entry live for high seconds, and reads extend it again once fewer than low seconds remain
func WithLeaseWatermarks(low uint64, high uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.leaseLowWatermark = low
		c.leaseHighWatermark = high
	}
}

// WithClock specifies the ledger clock. The default is wall clock time in unix seconds
func WithClock(clock database.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithApiListenAddress specifies the listen address for the REST API. The API is disabled when empty
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithGovernanceAddress specifies the address the engine uses when calling contracts
func WithGovernanceAddress(address types.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.governanceAddress = address
	}
}

// WithProposalCreatorsMembersOnly restricts proposal creation to shareholders
func WithProposalCreatorsMembersOnly(membersOnly bool) ConfigOptionFunc {
	return func(c *Config) {
		c.membersOnly = membersOnly
	}
}

// WithSweepInterval specifies how often lapsed entries are moved to the archive. The sweeper is disabled when zero
func WithSweepInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.sweepInterval = interval
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
