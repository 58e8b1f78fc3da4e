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
	"errors"

	"github.com/blinklabs-io/govern/core"
	"github.com/blinklabs-io/govern/database"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/blinklabs-io/govern/host"
	"github.com/blinklabs-io/govern/proposal"
	"github.com/blinklabs-io/govern/tally"
)

// Errors raised by the components the state machine drives, re-exported
// for callers of State
var (
	ErrNotInitialized     = core.ErrNotInitialized
	ErrAlreadyInitialized = core.ErrAlreadyInitialized
	ErrNoShareholders     = core.ErrNoShareholders
	ErrAlreadyVoted       = tally.ErrAlreadyVoted
	ErrEntryArchived      = database.ErrEntryArchived
)

var (
	ErrNotAMember            = errors.New("not a member")
	ErrInsufficientVotePower = errors.New("insufficient vote power")
	ErrVotingClosed          = errors.New("voting closed")
	ErrTokenAmountSurpassed  = errors.New("token amount surpasses balance")
	ErrWrongTokenContract    = errors.New("token contract does not match governance token")
	ErrTooEarlyToExecute     = errors.New("too early to execute")
	ErrQuorumNotMet          = errors.New("quorum not met")
	ErrProposalNotPassed     = errors.New("proposal not passed")
	ErrAlreadyExecuted       = errors.New("proposal already executed")
	ErrInvalidDeadline       = errors.New("deadline is earlier than the minimum proposal duration allows")
	ErrInvalidInitialBalance = errors.New("initial balance must not be negative")
)

// ErrorClass groups errors by how a caller should react to them
type ErrorClass int

const (
	ErrorClassUnknown ErrorClass = iota
	// Precondition errors are fatal to the call and never succeed on retry
	// without a change of state
	ErrorClassPrecondition
	// Eligibility errors reject the caller or its arguments
	ErrorClassEligibility
	// Timing errors depend on the ledger clock and may succeed later
	ErrorClassTiming
	// Collaborator errors come from a contract call
	ErrorClassCollaborator
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassPrecondition:
		return "precondition"
	case ErrorClassEligibility:
		return "eligibility"
	case ErrorClassTiming:
		return "timing"
	case ErrorClassCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

var (
	preconditionErrors = []error{
		core.ErrNotInitialized,
		core.ErrAlreadyInitialized,
		proposal.ErrNotFound,
		proposal.ErrIdsExhausted,
		tally.ErrAlreadyVoted,
		tally.ErrOverflow,
		ErrAlreadyExecuted,
		// Evaluated only after the deadline, when the tally is final
		ErrQuorumNotMet,
		ErrProposalNotPassed,
		database.ErrEntryArchived,
		types.ErrAmountOverflow,
	}
	eligibilityErrors = []error{
		ErrNotAMember,
		ErrInsufficientVotePower,
		ErrTokenAmountSurpassed,
		ErrWrongTokenContract,
		ErrInvalidDeadline,
		ErrInvalidInitialBalance,
		tally.ErrInvalidChoice,
		tally.ErrNegativeWeight,
		proposal.ErrInvalidInstruction,
		core.ErrNoShareholders,
		core.ErrNegativeQuorum,
	}
	timingErrors = []error{
		ErrTooEarlyToExecute,
		ErrVotingClosed,
	}
)

// Classify returns the class of an error returned by State
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClassUnknown
	}
	var callErr *host.CallError
	if errors.As(err, &callErr) {
		return ErrorClassCollaborator
	}
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return ErrorClassPrecondition
		}
	}
	for _, target := range eligibilityErrors {
		if errors.Is(err, target) {
			return ErrorClassEligibility
		}
	}
	for _, target := range timingErrors {
		if errors.Is(err, target) {
			return ErrorClassTiming
		}
	}
	return ErrorClassUnknown
}
