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

// Package governance orchestrates the proposal lifecycle: it gates proposal
// creation, voting and execution, and dispatches the instruction batch of a
// passed proposal exactly once.
package governance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/event"
	"github.com/blinklabs-io/govern/host"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultAddress is the account the engine acts as when it deploys and
	// administers the governance token
	DefaultAddress = types.Address("GOVERN")

	tracerName = "github.com/blinklabs-io/govern/governance"
)

type StateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	Host         host.Host
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	// Address identifies the engine itself to contracts
	Address types.Address
	// ProposalCreatorsMembersOnly restricts proposal creation to shareholders
	ProposalCreatorsMembersOnly bool
}

// State is the governance state machine. Every mutating entry point runs as
// a single read-write database transaction, and entry points are serialized
// so that each guard sees the state committed by the previous call.
type State struct {
	config  StateConfig
	db      *database.Database
	host    host.Host
	logger  *slog.Logger
	metrics *stateMetrics
	tracer  trace.Tracer
	mu      sync.Mutex
}

func NewState(cfg StateConfig) (*State, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.Host == nil {
		return nil, errors.New("no host provided")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	s := &State{
		config: cfg,
		db:     cfg.Database,
		host:   cfg.Host,
		logger: cfg.Logger,
		tracer: otel.Tracer(tracerName),
	}
	s.metrics = newStateMetrics(cfg.PromRegistry)
	return s, nil
}

// Address returns the account the engine acts as
func (s *State) Address() types.Address {
	return s.config.Address
}

// update runs fn in a new read-write transaction, committing only if fn
// succeeds. Contract calls made through ctx join the transaction.
func (s *State) update(
	ctx context.Context,
	op string,
	fn func(context.Context, *database.Txn) error,
	attrs ...attribute.KeyValue,
) error {
	ctx, span := s.tracer.Start(
		ctx,
		"governance."+op,
		trace.WithAttributes(attrs...),
	)
	defer span.End()
	s.mu.Lock()
	defer s.mu.Unlock()
	txn := s.db.Transaction(true)
	ctx = database.WithTxn(ctx, txn)
	ctx = host.WithInvoker(ctx, s.config.Address)
	err := txn.Do(func(txn *database.Txn) error {
		return fn(ctx, txn)
	})
	s.finish(span, op, err)
	return err
}

// view runs fn in a read-only transaction
func (s *State) view(
	ctx context.Context,
	op string,
	fn func(context.Context, *database.Txn) error,
	attrs ...attribute.KeyValue,
) error {
	ctx, span := s.tracer.Start(
		ctx,
		"governance."+op,
		trace.WithAttributes(attrs...),
	)
	defer span.End()
	txn := s.db.Transaction(false)
	defer txn.Release()
	ctx = database.WithTxn(ctx, txn)
	ctx = host.WithInvoker(ctx, s.config.Address)
	err := fn(ctx, txn)
	s.finish(span, op, err)
	return err
}

func (s *State) finish(span trace.Span, op string, err error) {
	if err == nil {
		return
	}
	class := Classify(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.class", class.String()))
	s.metrics.errors.WithLabelValues(op, class.String()).Inc()
	s.logger.Debug(
		"governance call failed",
		"component", "governance",
		"operation", op,
		"class", class.String(),
		"error", err,
	)
}

func (s *State) publish(eventType event.EventType, data any) {
	if s.config.EventBus == nil {
		return
	}
	s.config.EventBus.Publish(eventType, event.NewEvent(eventType, data))
}

// publishAsync is used for events that may come in large batches
func (s *State) publishAsync(eventType event.EventType, data any) {
	if s.config.EventBus == nil {
		return
	}
	s.config.EventBus.PublishAsync(eventType, event.NewEvent(eventType, data))
}
