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

package governance

import (
	"context"

	"github.com/blinklabs-io/govern/core"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/event"
	"github.com/blinklabs-io/govern/proposal"
	"go.opentelemetry.io/otel/attribute"
)

// RestoreProposal brings every lapsed entry of a proposal back with a fresh
// lease and returns the number of entries restored
func (s *State) RestoreProposal(ctx context.Context, id uint32) (int, error) {
	return s.restore(
		ctx,
		types.ProposalScope(id),
		func(txn *database.Txn) error {
			_, err := proposal.Get(txn, id)
			return err
		},
	)
}

// RestoreCore brings the lapsed configuration and proposal counter back
func (s *State) RestoreCore(ctx context.Context) (int, error) {
	return s.restore(
		ctx,
		types.ScopeCore,
		func(txn *database.Txn) error {
			_, err := core.Get(txn)
			return err
		},
	)
}

// RestoreContract brings the lapsed state of a hosted contract back
func (s *State) RestoreContract(
	ctx context.Context,
	contract types.Address,
) (int, error) {
	return s.restore(ctx, types.ContractScope(contract), nil)
}

// restore runs a scope restore, then verify, which must find the scope's
// primary entry live again
func (s *State) restore(
	ctx context.Context,
	scope string,
	verify func(*database.Txn) error,
) (int, error) {
	var count int
	err := s.update(
		ctx,
		"restore",
		func(_ context.Context, txn *database.Txn) error {
			var err error
			count, err = txn.RestoreScope(scope)
			if err != nil {
				return err
			}
			if verify != nil {
				return verify(txn)
			}
			return nil
		},
		attribute.String("scope", scope),
	)
	if err != nil {
		return 0, err
	}
	s.metrics.restored.Add(float64(count))
	s.logger.Info(
		"scope restored",
		"component", "governance",
		"scope", scope,
		"entries", count,
	)
	s.publish(
		event.EntryRestoredEventType,
		event.EntryRestoredEvent{
			Scope: scope,
			Count: count,
		},
	)
	return count, nil
}

// Sweep moves up to limit lapsed entries out of the live key space into the
// archive, where they wait to be restored. A limit of zero uses the
// database default.
func (s *State) Sweep(
	ctx context.Context,
	limit int,
) ([]database.ArchivedEntry, error) {
	var archived []database.ArchivedEntry
	err := s.update(
		ctx,
		"sweep",
		func(_ context.Context, txn *database.Txn) error {
			var err error
			archived, err = txn.ArchiveExpired(limit)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	if len(archived) == 0 {
		return nil, nil
	}
	s.metrics.archived.Add(float64(len(archived)))
	s.logger.Info(
		"archived lapsed entries",
		"component", "governance",
		"entries", len(archived),
	)
	for _, entry := range archived {
		s.publishAsync(
			event.EntryArchivedEventType,
			event.EntryArchivedEvent{
				Scope:     entry.Scope,
				Key:       entry.Key,
				LiveUntil: entry.LiveUntil,
			},
		)
	}
	return archived, nil
}
