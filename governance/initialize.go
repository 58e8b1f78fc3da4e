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
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/blinklabs-io/govern/core"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/host"
)

const DefaultTokenDecimals = 18

// InitParams describes the governance token to deploy and the initial
// configuration
type InitParams struct {
	TokenCodeHash       string
	TokenSalt           []byte
	TokenName           string
	TokenSymbol         string
	Shareholders        map[types.Address]types.Amount
	Quorum              types.Amount
	MinProposalDuration uint64
	MinVotePower        uint32
	ProposalPower       uint32
}

// Initialize deploys the governance token, authorizes every shareholder on
// it and mints their initial balance, then stores the configuration. It
// returns the token address. It succeeds at most once.
func (s *State) Initialize(
	ctx context.Context,
	params InitParams,
) (types.Address, error) {
	var token types.Address
	err := s.update(ctx, "initialize", func(ctx context.Context, txn *database.Txn) error {
		// An archived configuration still counts as initialized
		if _, err := core.Get(txn); err == nil ||
			errors.Is(err, database.ErrEntryArchived) {
			return core.ErrAlreadyInitialized
		} else if !errors.Is(err, core.ErrNotInitialized) {
			return err
		}
		if len(params.Shareholders) == 0 {
			return core.ErrNoShareholders
		}
		holders := slices.Sorted(maps.Keys(params.Shareholders))
		for _, holder := range holders {
			if params.Shareholders[holder].Sign() < 0 {
				return fmt.Errorf("%w: %s", ErrInvalidInitialBalance, holder)
			}
		}
		codeHash := params.TokenCodeHash
		if codeHash == "" {
			codeHash = host.TokenCodeHash
		}
		var err error
		token, err = s.host.Deploy(ctx, codeHash, params.TokenSalt)
		if err != nil {
			return err
		}
		if _, err := s.host.Invoke(
			ctx,
			token,
			host.TokenFnInitialize,
			[]any{
				s.config.Address,
				uint32(DefaultTokenDecimals),
				params.TokenName,
				params.TokenSymbol,
			},
		); err != nil {
			return err
		}
		for _, holder := range holders {
			if _, err := s.host.Invoke(
				ctx,
				token,
				host.TokenFnSetAuth,
				[]any{holder, true},
			); err != nil {
				return err
			}
			if _, err := s.host.Invoke(
				ctx,
				token,
				host.TokenFnMint,
				[]any{holder, params.Shareholders[holder]},
			); err != nil {
				return err
			}
		}
		return core.Initialize(txn, core.CoreState{
			Token:               token,
			Shareholders:        holders,
			MinVotePower:        params.MinVotePower,
			ProposalPower:       params.ProposalPower,
			Quorum:              params.Quorum,
			MinProposalDuration: params.MinProposalDuration,
		})
	})
	if err != nil {
		return "", err
	}
	s.logger.Info(
		"governance initialized",
		"component", "governance",
		"token", token,
		"shareholders", len(params.Shareholders),
		"quorum", params.Quorum.String(),
	)
	return token, nil
}

// Core returns the governance configuration
func (s *State) Core(ctx context.Context) (*core.CoreState, error) {
	var ret *core.CoreState
	err := s.view(ctx, "core", func(_ context.Context, txn *database.Txn) error {
		var err error
		ret, err = core.Get(txn)
		return err
	})
	return ret, err
}

// SetMinVotePower updates the minimum vote power a voter must assert
func (s *State) SetMinVotePower(ctx context.Context, power uint32) error {
	err := s.update(ctx, "set_min_vote_power", func(_ context.Context, txn *database.Txn) error {
		return core.SetMinVotePower(txn, power)
	})
	if err != nil {
		return err
	}
	s.logger.Info(
		"minimum vote power updated",
		"component", "governance",
		"min_vote_power", power,
	)
	return nil
}
