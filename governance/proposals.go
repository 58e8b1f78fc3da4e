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
	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/event"
	"github.com/blinklabs-io/govern/proposal"
	"go.opentelemetry.io/otel/attribute"
)

// ProposalParams describes a proposal to create
type ProposalParams struct {
	Instructions []proposal.Instruction
	Deadline     uint64
}

// CreateProposal registers a new proposal and returns its id
func (s *State) CreateProposal(
	ctx context.Context,
	author types.Address,
	params ProposalParams,
) (uint32, error) {
	var id uint32
	var createdAt uint64
	err := s.update(
		ctx,
		"create_proposal",
		func(_ context.Context, txn *database.Txn) error {
			state, err := core.Get(txn)
			if err != nil {
				return err
			}
			if s.config.ProposalCreatorsMembersOnly && !state.IsMember(author) {
				return fmt.Errorf("%w: %s", ErrNotAMember, author)
			}
			createdAt = txn.Now()
			if params.Deadline < createdAt+state.MinProposalDuration {
				return fmt.Errorf(
					"%w: deadline %d, earliest %d",
					ErrInvalidDeadline,
					params.Deadline,
					createdAt+state.MinProposalDuration,
				)
			}
			id, err = proposal.Create(
				txn,
				author,
				params.Instructions,
				params.Deadline,
			)
			if err != nil {
				return err
			}
			return s.db.IndexProposal(
				&models.GovernanceProposal{
					ProposalID:       id,
					Author:           string(author),
					Deadline:         params.Deadline,
					InstructionCount: len(params.Instructions),
					CreatedAt:        createdAt,
				},
				txn,
			)
		},
		attribute.String("author", string(author)),
	)
	if err != nil {
		return 0, err
	}
	s.metrics.proposals.Inc()
	s.logger.Info(
		"proposal created",
		"component", "governance",
		"proposal_id", id,
		"author", author,
		"deadline", params.Deadline,
	)
	s.publish(
		event.ProposalCreatedEventType,
		event.ProposalCreatedEvent{
			Author:           author,
			ProposalID:       id,
			Deadline:         params.Deadline,
			InstructionCount: len(params.Instructions),
		},
	)
	return id, nil
}

// GetProposal returns a stored proposal
func (s *State) GetProposal(
	ctx context.Context,
	id uint32,
) (*proposal.Proposal, error) {
	var ret *proposal.Proposal
	err := s.view(
		ctx,
		"get_proposal",
		func(_ context.Context, txn *database.Txn) error {
			if _, err := core.Get(txn); err != nil {
				return err
			}
			var err error
			ret, err = proposal.Get(txn, id)
			return err
		},
		attribute.Int64("proposal_id", int64(id)),
	)
	return ret, err
}

// ListProposals returns the listing rows of every proposal ever created,
// including those whose entries have lapsed
func (s *State) ListProposals(
	ctx context.Context,
) ([]*models.GovernanceProposal, error) {
	var ret []*models.GovernanceProposal
	err := s.view(
		ctx,
		"list_proposals",
		func(_ context.Context, txn *database.Txn) error {
			var err error
			ret, err = s.db.ProposalIndex(txn)
			return err
		},
	)
	return ret, err
}
