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
	"fmt"

	"github.com/blinklabs-io/govern/core"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/event"
	"github.com/blinklabs-io/govern/proposal"
	"github.com/blinklabs-io/govern/tally"
	"go.opentelemetry.io/otel/attribute"
)

// Execute runs the instruction batch of a passed proposal. It reports true
// once the batch has completed and the execution was committed.
func (s *State) Execute(ctx context.Context, id uint32) (bool, error) {
	if _, err := s.ExecuteWithResults(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// ExecuteWithResults is Execute, returning the result of each instruction in
// batch order
func (s *State) ExecuteWithResults(
	ctx context.Context,
	id uint32,
) ([]any, error) {
	var results []any
	var executedAt uint64
	err := s.update(
		ctx,
		"execute",
		func(ctx context.Context, txn *database.Txn) error {
			executedAt = txn.Now()
			var err error
			results, err = s.execute(ctx, txn, id)
			return err
		},
		attribute.Int64("proposal_id", int64(id)),
	)
	if err != nil {
		return nil, err
	}
	s.metrics.executed.Inc()
	s.logger.Info(
		"proposal executed",
		"component", "governance",
		"proposal_id", id,
		"instructions", len(results),
		"executed_at", executedAt,
	)
	s.publish(
		event.ProposalExecutedEventType,
		event.ProposalExecutedEvent{
			Results:    results,
			ProposalID: id,
			ExecutedAt: executedAt,
		},
	)
	return results, nil
}

// checkPassed applies the quorum and majority tests to the final tally
func checkPassed(state *core.CoreState, counts tally.VotesCount) error {
	total, err := counts.Total()
	if err != nil {
		return err
	}
	if total.Cmp(state.Quorum) < 0 {
		return fmt.Errorf(
			"%w: %s of %s",
			ErrQuorumNotMet,
			total.String(),
			state.Quorum.String(),
		)
	}
	if counts.For.Cmp(counts.Against) <= 0 {
		return fmt.Errorf(
			"%w: for %s, against %s",
			ErrProposalNotPassed,
			counts.For.String(),
			counts.Against.String(),
		)
	}
	return nil
}

func (s *State) execute(
	ctx context.Context,
	txn *database.Txn,
	id uint32,
) ([]any, error) {
	state, err := core.Get(txn)
	if err != nil {
		return nil, err
	}
	prop, err := proposal.Get(txn, id)
	if err != nil {
		return nil, err
	}
	if !prop.Passed(txn.Now()) {
		return nil, fmt.Errorf(
			"%w: deadline %d",
			ErrTooEarlyToExecute,
			prop.Deadline,
		)
	}
	counts, err := tally.Get(txn, id)
	if err != nil {
		return nil, err
	}
	if err := checkPassed(state, counts); err != nil {
		return nil, err
	}
	executed, err := txn.HasEntry(types.ExecutedKey(id))
	if err != nil {
		return nil, err
	}
	if executed {
		return nil, ErrAlreadyExecuted
	}
	results := make([]any, 0, len(prop.Instructions))
	for idx, instr := range prop.Instructions {
		res, err := s.host.Invoke(ctx, instr.Contract, instr.Function, instr.Args)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", idx, err)
		}
		results = append(results, res)
	}
	if err := txn.PutEntry(types.ExecutedKey(id), true); err != nil {
		return nil, fmt.Errorf("store executed flag: %w", err)
	}
	if err := s.db.MarkProposalExecuted(id, txn.Now(), txn); err != nil {
		return nil, err
	}
	return results, nil
}

// Status is the lifecycle state of a proposal
type Status string

const (
	StatusOpen           Status = "open"
	StatusClosedPending  Status = "closed_pending"
	StatusExecuted       Status = "executed"
	StatusClosedRejected Status = "closed_rejected"
)

// Status derives the lifecycle state of a proposal. A proposal past its
// deadline that failed the quorum or majority test is rejected for good,
// since no further votes are accepted.
func (s *State) Status(ctx context.Context, id uint32) (Status, error) {
	var ret Status
	err := s.view(
		ctx,
		"status",
		func(_ context.Context, txn *database.Txn) error {
			state, err := core.Get(txn)
			if err != nil {
				return err
			}
			prop, err := proposal.Get(txn, id)
			if err != nil {
				return err
			}
			executed, err := txn.HasEntry(types.ExecutedKey(id))
			if err != nil {
				return err
			}
			switch {
			case executed:
				ret = StatusExecuted
			case !prop.Passed(txn.Now()):
				ret = StatusOpen
			default:
				counts, err := tally.Get(txn, id)
				if err != nil {
					return err
				}
				ret = StatusClosedPending
				if err := checkPassed(state, counts); err != nil {
					ret = StatusClosedRejected
				}
			}
			return nil
		},
		attribute.Int64("proposal_id", int64(id)),
	)
	return ret, err
}
