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

package models

import "github.com/blinklabs-io/govern/database/types"

// Vote constants represent the vote choice on a governance proposal.
const (
	VoteAgainst = 0
	VoteFor     = 1
	VoteAbstain = 2
)

// GovernanceVote records a vote cast by a shareholder on a proposal
type GovernanceVote struct {
	ID         uint         `gorm:"primarykey"`
	ProposalID uint32       `gorm:"index:idx_vote_proposal;uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter      string       `gorm:"uniqueIndex:idx_vote_unique,priority:2;size:128;not null"`
	Choice     uint8        `gorm:"not null"` // 0=Against, 1=For, 2=Abstain
	Power      uint32       `gorm:"not null"`
	Weight     types.Amount `gorm:"not null"`
	CastAt     uint64       `gorm:"index;not null"`
}

// TableName returns the table name
func (GovernanceVote) TableName() string {
	return "governance_vote"
}
