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

package api

import "github.com/blinklabs-io/govern/database/types"

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Class      string `json:"class,omitempty"`
	Message    string `json:"message"`
}

// DaoResponse is returned by GET /api/v0/dao
type DaoResponse struct {
	Token               string       `json:"token"`
	Shareholders        []string     `json:"shareholders"`
	MinVotePower        uint32       `json:"min_vote_power"`
	ProposalPower       uint32       `json:"proposal_power"`
	Quorum              types.Amount `json:"quorum"`
	MinProposalDuration uint64       `json:"min_proposal_duration"`
}

// InstructionJSON is a proposal instruction as sent and returned by the API
type InstructionJSON struct {
	Contract string `json:"contract"`
	Function string `json:"function"`
	Args     []any  `json:"args"`
}

// ProposalResponse is returned by GET /api/v0/proposals/{id}
type ProposalResponse struct {
	ID           uint32            `json:"id"`
	Author       string            `json:"author"`
	Deadline     uint64            `json:"deadline"`
	Status       string            `json:"status"`
	Instructions []InstructionJSON `json:"instructions"`
}

// ProposalListItem is an element of GET /api/v0/proposals
type ProposalListItem struct {
	ID               uint32  `json:"id"`
	Author           string  `json:"author"`
	Deadline         uint64  `json:"deadline"`
	InstructionCount int     `json:"instruction_count"`
	CreatedAt        uint64  `json:"created_at"`
	ExecutedAt       *uint64 `json:"executed_at"`
}

// CreateProposalRequest is the body of POST /api/v0/proposals
type CreateProposalRequest struct {
	Author       string            `json:"author"`
	Deadline     uint64            `json:"deadline"`
	Instructions []InstructionJSON `json:"instructions"`
}

// CreateProposalResponse is returned by POST /api/v0/proposals
type CreateProposalResponse struct {
	ID uint32 `json:"id"`
}

// VotesResponse is returned by GET /api/v0/proposals/{id}/votes
type VotesResponse struct {
	Against types.Amount `json:"against"`
	For     types.Amount `json:"for"`
	Abstain types.Amount `json:"abstain"`
}

// VoteRequest is the body of POST /api/v0/proposals/{id}/votes
type VoteRequest struct {
	Voter         string       `json:"voter"`
	Power         uint32       `json:"power"`
	Choice        uint32       `json:"choice"`
	Tokens        types.Amount `json:"tokens"`
	TokenContract string       `json:"token_contract,omitempty"`
}

// VoterResponse is returned by GET /api/v0/proposals/{id}/voters/{address}
type VoterResponse struct {
	ProposalID uint32 `json:"proposal_id"`
	Voter      string `json:"voter"`
	Voted      bool   `json:"voted"`
}

// VoteHistoryItem is an element of GET /api/v0/proposals/{id}/history
type VoteHistoryItem struct {
	Voter  string       `json:"voter"`
	Choice uint8        `json:"choice"`
	Power  uint32       `json:"power"`
	Weight types.Amount `json:"weight"`
	CastAt uint64       `json:"cast_at"`
}

// ExecuteResponse is returned by POST /api/v0/proposals/{id}/execute
type ExecuteResponse struct {
	Executed bool  `json:"executed"`
	Results  []any `json:"results"`
}

// RestoreResponse is returned by POST /api/v0/proposals/{id}/restore
type RestoreResponse struct {
	Restored int `json:"restored"`
}
