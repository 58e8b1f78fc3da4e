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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/govern/api"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/event"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/host"
)

var ErrNodeStopped = errors.New("node stopped")

type Node struct {
	db            *database.Database
	eventBus      *event.EventBus
	host          *host.Registry
	state         *governance.State
	sweeper       *governance.Sweeper
	api           *api.Server
	apiCancel     context.CancelFunc
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	openMu        sync.Mutex
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Open loads the database and builds the governance state machine. Run
// calls it before starting the background services.
func (n *Node) Open() error {
	n.openMu.Lock()
	defer n.openMu.Unlock()
	if n.state != nil {
		return nil
	}
	select {
	case <-n.done:
		return ErrNodeStopped
	default:
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:            n.config.dataDir,
		Logger:             n.config.logger,
		PromRegistry:       n.config.promRegistry,
		Clock:              n.config.clock,
		BlobCacheSize:      n.config.badgerCacheSize,
		LeaseLowWatermark:  n.config.leaseLowWatermark,
		LeaseHighWatermark: n.config.leaseHighWatermark,
	})
	if err != nil {
		var dbErr database.CommitTimestampError
		if db == nil || !errors.As(err, &dbErr) {
			if db != nil {
				_ = db.Close()
			}
			return fmt.Errorf("failed to open database: %w", err)
		}
		n.config.logger.Warn(
			"database initialization error, needs recovery",
			"error",
			err,
		)
		if err := db.RecoverCommitTimestamp(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to recover database: %w", err)
		}
	}
	n.db = db
	// Contract host shares the governance database
	n.host = host.NewRegistry(
		n.db,
		host.WithLogger(n.config.logger),
		host.WithPromRegistry(n.config.promRegistry),
	)
	state, err := governance.NewState(
		governance.StateConfig{
			Logger:                      n.config.logger,
			Database:                    n.db,
			Host:                        n.host,
			EventBus:                    n.eventBus,
			PromRegistry:                n.config.promRegistry,
			Address:                     n.config.governanceAddress,
			ProposalCreatorsMembersOnly: n.config.membersOnly,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load governance state: %w", err)
	}
	n.state = state
	return nil
}

// Run opens the node, starts the lease sweeper and the REST API, and blocks
// until ctx is done or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Open(); err != nil {
		return err
	}
	if err := n.startServices(); err != nil {
		return err
	}

	// Wait for shutdown
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

// startServices starts the lease sweeper and the REST API unless the node
// is already shutting down
func (n *Node) startServices() error {
	n.openMu.Lock()
	defer n.openMu.Unlock()
	select {
	case <-n.done:
		return nil
	default:
	}
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Start lease sweeper
	if n.config.sweepInterval > 0 {
		n.sweeper = governance.NewSweeper(n.state, n.config.sweepInterval)
		n.sweeper.Start()
	}
	// Configure REST API
	if n.config.apiListenAddress != "" {
		n.api = api.New(
			api.Config{
				ListenAddress: n.config.apiListenAddress,
			},
			n.state,
			n.config.logger,
		)
		apiCtx, apiCancel := context.WithCancel(context.Background())
		n.apiCancel = apiCancel
		//nolint:contextcheck
		if err := n.api.Start(apiCtx); err != nil {
			return err
		}
	}
	return nil
}

// State returns the governance state machine. It is nil until Open
// succeeds.
func (n *Node) State() *governance.State {
	return n.state
}

// Host returns the in-process contract host
func (n *Node) Host() *host.Registry {
	return n.host
}

// EventBus returns the node event bus
func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

// ApiAddr returns the address the REST API is listening on, or an empty
// string if it is not running
func (n *Node) ApiAddr() string {
	n.openMu.Lock()
	defer n.openMu.Unlock()
	if n.api == nil {
		return ""
	}
	return n.api.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	n.openMu.Lock()
	defer n.openMu.Unlock()
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	n.config.logger.Debug("shutdown phase 1: stopping new work")

	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
		n.apiCancel()
	}

	if n.sweeper != nil {
		n.sweeper.Stop()
	}

	// Phase 2: Cleanup resources
	n.config.logger.Debug("shutdown phase 2: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Phase 3: Close database
	n.config.logger.Debug("shutdown phase 3: closing database")

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
