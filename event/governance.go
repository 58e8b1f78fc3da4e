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

package event

import "github.com/blinklabs-io/govern/database/types"

const (
	ProposalCreatedEventType  = EventType("governance.proposal.created")
	VoteCastEventType         = EventType("governance.vote.cast")
	ProposalExecutedEventType = EventType("governance.proposal.executed")
	EntryArchivedEventType    = EventType("governance.entry.archived")
	EntryRestoredEventType    = EventType("governance.entry.restored")
)

// ProposalCreatedEvent is published after a proposal is committed
type ProposalCreatedEvent struct {
	Author           types.Address
	ProposalID       uint32
	Deadline         uint64
	InstructionCount int
}

// VoteCastEvent is published after a vote is committed
type VoteCastEvent struct {
	Voter      types.Address
	Weight     types.Amount
	ProposalID uint32
	Choice     uint32
}

// ProposalExecutedEvent is published after a proposal's batch has run and
// the execution was committed. Results holds the return value of each
// instruction in batch order.
type ProposalExecutedEvent struct {
	Results    []any
	ProposalID uint32
	ExecutedAt uint64
}

// EntryArchivedEvent is published for every entry the sweeper moves out of
// the live key space
type EntryArchivedEvent struct {
	Scope     string
	Key       []byte
	LiveUntil uint64
}

// EntryRestoredEvent is published after a scope is restored
type EntryRestoredEvent struct {
	Scope string
	Count int
}
