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

// Package core holds the singleton governance configuration: the governance
// token, the fixed shareholder set and the voting thresholds.
package core

import (
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
)

var (
	ErrNotInitialized     = errors.New("governance not initialized")
	ErrAlreadyInitialized = errors.New("governance already initialized")
	ErrNoShareholders     = errors.New("at least one shareholder is required")
	ErrNegativeQuorum     = errors.New("quorum must not be negative")
)

// CoreState is the governance configuration. It is created once; only the
// minimum vote power may change afterwards.
type CoreState struct {
	cbor.StructAsArray
	Token               types.Address
	Shareholders        []types.Address
	MinVotePower        uint32
	ProposalPower       uint32
	Quorum              types.Amount
	MinProposalDuration uint64
}

// IsMember reports whether addr is a shareholder
func (s *CoreState) IsMember(addr types.Address) bool {
	_, found := slices.BinarySearch(s.Shareholders, addr)
	return found
}

func (s *CoreState) normalize() error {
	if len(s.Shareholders) == 0 {
		return ErrNoShareholders
	}
	if s.Quorum.Sign() < 0 {
		return ErrNegativeQuorum
	}
	tmp := slices.Clone(s.Shareholders)
	slices.Sort(tmp)
	s.Shareholders = slices.Compact(tmp)
	return nil
}

// Initialize persists the configuration. It fails with ErrAlreadyInitialized
// if a configuration already exists, whatever its content.
func Initialize(txn *database.Txn, state CoreState) error {
	exists, err := txn.HasEntry(types.CoreStateKey())
	if err != nil {
		if errors.Is(err, database.ErrEntryArchived) {
			return ErrAlreadyInitialized
		}
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}
	if err := state.normalize(); err != nil {
		return err
	}
	if err := txn.PutEntry(types.CoreStateKey(), &state); err != nil {
		return fmt.Errorf("store core state: %w", err)
	}
	return nil
}

// Get returns the configuration or ErrNotInitialized
func Get(txn *database.Txn) (*CoreState, error) {
	var ret CoreState
	if err := txn.GetEntry(types.CoreStateKey(), &ret); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	return &ret, nil
}

// IsMember reports whether addr is a shareholder
func IsMember(txn *database.Txn, addr types.Address) (bool, error) {
	state, err := Get(txn)
	if err != nil {
		return false, err
	}
	return state.IsMember(addr), nil
}

// MinVotePower returns the minimum vote power a voter must assert
func MinVotePower(txn *database.Txn) (uint32, error) {
	state, err := Get(txn)
	if err != nil {
		return 0, err
	}
	return state.MinVotePower, nil
}

// SetMinVotePower updates the minimum vote power
func SetMinVotePower(txn *database.Txn, power uint32) error {
	state, err := Get(txn)
	if err != nil {
		return err
	}
	state.MinVotePower = power
	return txn.PutEntry(types.CoreStateKey(), state)
}

// Extend renews the configuration's lease
func Extend(txn *database.Txn) error {
	_, err := txn.ExtendEntry(types.CoreStateKey())
	return err
}
