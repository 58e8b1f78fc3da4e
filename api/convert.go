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

import (
	"github.com/blinklabs-io/govern/core"
	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/governance"
	"github.com/blinklabs-io/govern/proposal"
	"github.com/blinklabs-io/govern/tally"
)

// NewDaoResponse renders the stored governance configuration
func NewDaoResponse(state *core.CoreState) DaoResponse {
	holders := make([]string, 0, len(state.Shareholders))
	for _, holder := range state.Shareholders {
		holders = append(holders, string(holder))
	}
	return DaoResponse{
		Token:               string(state.Token),
		Shareholders:        holders,
		MinVotePower:        state.MinVotePower,
		ProposalPower:       state.ProposalPower,
		Quorum:              state.Quorum,
		MinProposalDuration: state.MinProposalDuration,
	}
}

func NewProposalResponse(
	prop *proposal.Proposal,
	status governance.Status,
) ProposalResponse {
	ret := ProposalResponse{
		ID:           prop.ID,
		Author:       string(prop.Author),
		Deadline:     prop.Deadline,
		Status:       string(status),
		Instructions: make([]InstructionJSON, 0, len(prop.Instructions)),
	}
	for _, instr := range prop.Instructions {
		ret.Instructions = append(ret.Instructions, InstructionJSON{
			Contract: string(instr.Contract),
			Function: instr.Function,
			Args:     instr.Args,
		})
	}
	return ret
}

func NewProposalListItems(
	rows []*models.GovernanceProposal,
) []ProposalListItem {
	ret := make([]ProposalListItem, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, ProposalListItem{
			ID:               row.ProposalID,
			Author:           row.Author,
			Deadline:         row.Deadline,
			InstructionCount: row.InstructionCount,
			CreatedAt:        row.CreatedAt,
			ExecutedAt:       row.ExecutedAt,
		})
	}
	return ret
}

func NewVotesResponse(counts tally.VotesCount) VotesResponse {
	return VotesResponse{
		Against: counts.Against,
		For:     counts.For,
		Abstain: counts.Abstain,
	}
}

func NewVoteHistoryItems(votes []*models.GovernanceVote) []VoteHistoryItem {
	ret := make([]VoteHistoryItem, 0, len(votes))
	for _, vote := range votes {
		ret = append(ret, VoteHistoryItem{
			Voter:  vote.Voter,
			Choice: vote.Choice,
			Power:  vote.Power,
			Weight: vote.Weight,
			CastAt: vote.CastAt,
		})
	}
	return ret
}
