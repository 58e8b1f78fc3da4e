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

import "errors"

var ErrGovernanceProposalNotFound = errors.New("governance proposal not found")

// GovernanceProposal is the listing row for a proposal. The authoritative
// proposal lives in the blob store; this row is written in the same
// transaction and only serves queries.
type GovernanceProposal struct {
	ID               uint    `gorm:"primarykey"`
	ProposalID       uint32  `gorm:"uniqueIndex;not null"`
	Author           string  `gorm:"index;size:128;not null"`
	Deadline         uint64  `gorm:"index;not null"`
	InstructionCount int     `gorm:"not null"`
	CreatedAt        uint64  `gorm:"autoCreateTime:false;not null"`
	ExecutedAt       *uint64 `gorm:"index"`
}

// TableName returns the table name
func (GovernanceProposal) TableName() string {
	return "governance_proposal"
}
