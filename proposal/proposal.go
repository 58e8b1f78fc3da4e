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

// Package proposal allocates proposal identifiers and stores the immutable
// description of each proposal.
package proposal

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
)

var (
	ErrNotFound           = errors.New("proposal not found")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrIdsExhausted       = errors.New("proposal ids exhausted")
)

// Instruction is a single call dispatched when a proposal executes
type Instruction struct {
	cbor.StructAsArray
	Contract types.Address
	Function string
	Args     []any
}

// Proposal is immutable once created
type Proposal struct {
	cbor.StructAsArray
	ID           uint32
	Author       types.Address
	Instructions []Instruction
	Deadline     uint64
}

// Passed reports whether the deadline has passed at the given ledger time
func (p *Proposal) Passed(now uint64) bool {
	return now > p.Deadline
}

// Validate checks the instruction batch
func Validate(instructions []Instruction) error {
	if len(instructions) == 0 {
		return fmt.Errorf("%w: no instructions", ErrInvalidInstruction)
	}
	for idx, instr := range instructions {
		if instr.Contract == "" {
			return fmt.Errorf(
				"%w: instruction %d: missing contract",
				ErrInvalidInstruction,
				idx,
			)
		}
		if instr.Function == "" {
			return fmt.Errorf(
				"%w: instruction %d: missing function",
				ErrInvalidInstruction,
				idx,
			)
		}
	}
	return nil
}

// Count returns the id the next proposal will be assigned, which is also the
// number of proposals created so far
func Count(txn *database.Txn) (uint32, error) {
	var next uint32
	if err := txn.GetEntry(types.ProposalCounterKey(), &next); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return next, nil
}

// Create stores a new proposal under the next id and returns that id. Ids
// start at 0 and are never reused. Nothing is allocated when validation
// fails.
func Create(
	txn *database.Txn,
	author types.Address,
	instructions []Instruction,
	deadline uint64,
) (uint32, error) {
	if err := Validate(instructions); err != nil {
		return 0, err
	}
	id, err := Count(txn)
	if err != nil {
		return 0, fmt.Errorf("read proposal counter: %w", err)
	}
	if id == math.MaxUint32 {
		return 0, ErrIdsExhausted
	}
	prop := &Proposal{
		ID:           id,
		Author:       author,
		Instructions: instructions,
		Deadline:     deadline,
	}
	if err := txn.PutEntry(types.ProposalKey(id), prop); err != nil {
		return 0, fmt.Errorf("store proposal %d: %w", id, err)
	}
	if err := txn.PutEntry(types.ProposalCounterKey(), id+1); err != nil {
		return 0, fmt.Errorf("store proposal counter: %w", err)
	}
	return id, nil
}

// Get returns the proposal with the given id
func Get(txn *database.Txn, id uint32) (*Proposal, error) {
	var ret Proposal
	if err := txn.GetEntry(types.ProposalKey(id), &ret); err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &ret, nil
}

// Extend renews the lease of a proposal's description
func Extend(txn *database.Txn, id uint32) error {
	_, err := txn.ExtendEntry(types.ProposalKey(id))
	return err
}
