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

package node

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/govern"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// nodeOptions translates the loaded configuration into node options
func nodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
) ([]govern.ConfigOptionFunc, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	return []govern.ConfigOptionFunc{
		govern.WithLogger(logger),
		govern.WithDatabasePath(cfg.DatabasePath),
		govern.WithBadgerCacheSize(cfg.BadgerCacheSize),
		govern.WithLeaseWatermarks(
			cfg.LeaseLowWatermark,
			cfg.LeaseHighWatermark,
		),
		govern.WithGovernanceAddress(types.Address(cfg.GovernanceAddress)),
		govern.WithProposalCreatorsMembersOnly(
			cfg.ProposalCreatorsMembersOnly,
		),
		govern.WithShutdownTimeout(shutdownTimeout),
	}, nil
}

// Open builds and opens a node without any background services, for
// one-shot commands. The caller must Stop it.
func Open(cfg *config.Config, logger *slog.Logger) (*govern.Node, error) {
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	n, err := govern.New(govern.NewConfig(opts...))
	if err != nil {
		return nil, err
	}
	if err := n.Open(); err != nil {
		_ = n.Stop()
		return nil, err
	}
	return n, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	sweepInterval, err := cfg.SweepIntervalDuration()
	if err != nil {
		return err
	}
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return err
	}
	opts = append(
		opts,
		govern.WithSweepInterval(sweepInterval),
		// Enable metrics with default prometheus registry
		govern.WithPrometheusRegistry(prometheus.DefaultRegisterer),
		govern.WithTracing(cfg.Tracing),
		govern.WithTracingStdout(cfg.TracingStdout),
	)
	if cfg.ApiPort > 0 {
		opts = append(
			opts,
			govern.WithApiListenAddress(
				fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
			),
		)
	}
	d, err := govern.New(govern.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component",
		"node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()
	shutdownMetrics := func() {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		err := d.Run(signalCtx)
		select {
		case errChan <- err:
		case <-signalCtx.Done():
		}
	}()

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
		shutdownMetrics()
		if err := d.Stop(); err != nil {
			logger.Error("shutdown errors occurred", "error", err)
			return err
		}
		logger.Info("shutdown complete")
		return nil

	case err := <-errChan:
		shutdownMetrics()
		if err == nil {
			logger.Info("node stopped")
			return nil
		}
		logger.Error("node error", "error", err)
		signalCtxStop()
		if stopErr := d.Stop(); stopErr != nil {
			logger.Error(
				"shutdown errors occurred during error cleanup",
				"error",
				stopErr,
			)
		}
		return err
	}
}
