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
	"github.com/blinklabs-io/govern/tally"
	"go.opentelemetry.io/otel/attribute"
)

// VoteParams describes a vote. Power is the vote power the voter asserts
// and Tokens the amount of governance token committed as weight.
type VoteParams struct {
	Voter      types.Address
	Tokens     types.Amount
	ProposalID uint32
	Power      uint32
	Choice     uint32
	// TokenContract may be left empty, otherwise it must name the
	// governance token
	TokenContract types.Address
}

// Vote records a weighted vote on an open proposal
func (s *State) Vote(ctx context.Context, params VoteParams) error {
	var castAt uint64
	err := s.update(
		ctx,
		"vote",
		func(ctx context.Context, txn *database.Txn) error {
			castAt = txn.Now()
			return s.vote(ctx, txn, params)
		},
		attribute.String("voter", string(params.Voter)),
		attribute.Int64("proposal_id", int64(params.ProposalID)),
	)
	if err != nil {
		return err
	}
	choice := tally.Choice(params.Choice)
	s.metrics.votes.WithLabelValues(choice.String()).Inc()
	s.logger.Info(
		"vote cast",
		"component", "governance",
		"proposal_id", params.ProposalID,
		"voter", params.Voter,
		"choice", choice.String(),
		"weight", params.Tokens.String(),
		"cast_at", castAt,
	)
	s.publish(
		event.VoteCastEventType,
		event.VoteCastEvent{
			Voter:      params.Voter,
			Weight:     params.Tokens,
			ProposalID: params.ProposalID,
			Choice:     params.Choice,
		},
	)
	return nil
}

func (s *State) vote(
	ctx context.Context,
	txn *database.Txn,
	params VoteParams,
) error {
	state, err := core.Get(txn)
	if err != nil {
		return err
	}
	if !state.IsMember(params.Voter) {
		return fmt.Errorf("%w: %s", ErrNotAMember, params.Voter)
	}
	voted, err := tally.HasVoted(txn, params.ProposalID, params.Voter)
	if err != nil {
		return err
	}
	if voted {
		return tally.ErrAlreadyVoted
	}
	if params.Power < state.MinVotePower {
		return fmt.Errorf(
			"%w: asserted %d, minimum %d",
			ErrInsufficientVotePower,
			params.Power,
			state.MinVotePower,
		)
	}
	prop, err := proposal.Get(txn, params.ProposalID)
	if err != nil {
		return err
	}
	if prop.Passed(txn.Now()) {
		return ErrVotingClosed
	}
	if params.TokenContract != "" && params.TokenContract != state.Token {
		return fmt.Errorf("%w: %s", ErrWrongTokenContract, params.TokenContract)
	}
	balance, err := s.host.QueryBalance(ctx, state.Token, params.Voter)
	if err != nil {
		return err
	}
	if balance.Cmp(params.Tokens) < 0 {
		return fmt.Errorf(
			"%w: committed %s, balance %s",
			ErrTokenAmountSurpassed,
			params.Tokens.String(),
			balance.String(),
		)
	}
	if err := tally.Record(
		txn,
		params.ProposalID,
		params.Voter,
		tally.Choice(params.Choice),
		params.Tokens,
	); err != nil {
		return err
	}
	// Activity keeps the proposal and the configuration it depends on alive
	if err := proposal.Extend(txn, params.ProposalID); err != nil {
		return err
	}
	if err := tally.Extend(txn, params.ProposalID); err != nil {
		return err
	}
	if err := core.Extend(txn); err != nil {
		return err
	}
	return s.db.RecordVote(
		&models.GovernanceVote{
			ProposalID: params.ProposalID,
			Voter:      string(params.Voter),
			Choice:     uint8(params.Choice), //nolint:gosec
			Power:      params.Power,
			Weight:     params.Tokens,
			CastAt:     txn.Now(),
		},
		txn,
	)
}

// GetVotes returns the running totals of a proposal
func (s *State) GetVotes(
	ctx context.Context,
	id uint32,
) (tally.VotesCount, error) {
	var ret tally.VotesCount
	err := s.view(
		ctx,
		"get_votes",
		func(_ context.Context, txn *database.Txn) error {
			if _, err := core.Get(txn); err != nil {
				return err
			}
			if _, err := proposal.Get(txn, id); err != nil {
				return err
			}
			var err error
			ret, err = tally.Get(txn, id)
			return err
		},
		attribute.Int64("proposal_id", int64(id)),
	)
	return ret, err
}

// HaveVoted reports whether voter has voted on a proposal
func (s *State) HaveVoted(
	ctx context.Context,
	id uint32,
	voter types.Address,
) (bool, error) {
	var ret bool
	err := s.view(
		ctx,
		"have_voted",
		func(_ context.Context, txn *database.Txn) error {
			if _, err := core.Get(txn); err != nil {
				return err
			}
			if _, err := proposal.Get(txn, id); err != nil {
				return err
			}
			var err error
			ret, err = tally.HasVoted(txn, id, voter)
			return err
		},
		attribute.Int64("proposal_id", int64(id)),
	)
	return ret, err
}

// VoteHistory returns the votes cast on a proposal in casting order
func (s *State) VoteHistory(
	ctx context.Context,
	id uint32,
) ([]*models.GovernanceVote, error) {
	var ret []*models.GovernanceVote
	err := s.view(
		ctx,
		"vote_history",
		func(_ context.Context, txn *database.Txn) error {
			var err error
			ret, err = s.db.VoteHistory(id, txn)
			return err
		},
		attribute.Int64("proposal_id", int64(id)),
	)
	return ret, err
}
