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

// Package tally accumulates weighted vote totals per proposal and guards
// against a voter casting more than one vote.
package tally

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
)

var (
	ErrAlreadyVoted   = errors.New("already voted")
	ErrInvalidChoice  = errors.New("invalid vote choice")
	ErrNegativeWeight = errors.New("vote weight must not be negative")
	ErrOverflow       = errors.New("vote count overflow")
)

type Choice uint32

const (
	ChoiceAgainst Choice = 0
	ChoiceFor     Choice = 1
	ChoiceAbstain Choice = 2
)

func (c Choice) Valid() bool {
	return c <= ChoiceAbstain
}

func (c Choice) String() string {
	switch c {
	case ChoiceAgainst:
		return "against"
	case ChoiceFor:
		return "for"
	case ChoiceAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(c))
	}
}

// ParseChoice accepts either the numeric or the named form of a choice
func ParseChoice(s string) (Choice, error) {
	switch s {
	case "0", "against":
		return ChoiceAgainst, nil
	case "1", "for":
		return ChoiceFor, nil
	case "2", "abstain":
		return ChoiceAbstain, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// VotesCount holds the running totals of a proposal
type VotesCount struct {
	cbor.StructAsArray
	Against types.Amount
	For     types.Amount
	Abstain types.Amount
}

// Total is the weight of all votes cast, used for the quorum test
func (v VotesCount) Total() (types.Amount, error) {
	tmp, err := v.Against.Add(v.For)
	if err != nil {
		return types.Amount{}, fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	ret, err := tmp.Add(v.Abstain)
	if err != nil {
		return types.Amount{}, fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	return ret, nil
}

func (v *VotesCount) add(choice Choice, weight types.Amount) error {
	var bucket *types.Amount
	switch choice {
	case ChoiceAgainst:
		bucket = &v.Against
	case ChoiceFor:
		bucket = &v.For
	case ChoiceAbstain:
		bucket = &v.Abstain
	default:
		return fmt.Errorf("%w: %d", ErrInvalidChoice, uint32(choice))
	}
	tmp, err := bucket.Add(weight)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOverflow, err)
	}
	*bucket = tmp
	return nil
}

// Get returns the totals of a proposal. A proposal without votes has zero
// totals.
func Get(txn *database.Txn, proposalID uint32) (VotesCount, error) {
	var ret VotesCount
	if err := txn.GetEntry(types.VotesCountKey(proposalID), &ret); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return VotesCount{}, nil
		}
		return VotesCount{}, err
	}
	return ret, nil
}

// HasVoted reports whether voter has a vote recorded on the proposal
func HasVoted(
	txn *database.Txn,
	proposalID uint32,
	voter types.Address,
) (bool, error) {
	return txn.HasEntry(types.VotedKey(proposalID, voter))
}

// Record adds weight to the bucket matching choice and marks voter as having
// voted. Totals never decrease.
func Record(
	txn *database.Txn,
	proposalID uint32,
	voter types.Address,
	choice Choice,
	weight types.Amount,
) error {
	voted, err := HasVoted(txn, proposalID, voter)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}
	if !choice.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, uint32(choice))
	}
	if weight.Sign() < 0 {
		return ErrNegativeWeight
	}
	counts, err := Get(txn, proposalID)
	if err != nil {
		return err
	}
	if err := counts.add(choice, weight); err != nil {
		return err
	}
	if _, err := counts.Total(); err != nil {
		return err
	}
	if err := txn.PutEntry(types.VotesCountKey(proposalID), &counts); err != nil {
		return fmt.Errorf("store votes count: %w", err)
	}
	if err := txn.PutEntry(types.VotedKey(proposalID, voter), true); err != nil {
		return fmt.Errorf("store vote record: %w", err)
	}
	return nil
}

// Extend renews the lease of a proposal's totals
func Extend(txn *database.Txn, proposalID uint32) error {
	_, err := txn.ExtendEntry(types.VotesCountKey(proposalID))
	if errors.Is(err, database.ErrEntryNotFound) {
		return nil
	}
	return err
}
