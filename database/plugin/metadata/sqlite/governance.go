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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetGovernanceProposal retrieves the index row of a proposal. Returns nil
// if the proposal is not indexed.
func (d *MetadataStoreSqlite) GetGovernanceProposal(
	proposalID uint32,
	txn types.Txn,
) (*models.GovernanceProposal, error) {
	var proposal models.GovernanceProposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalID).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetGovernanceProposals retrieves the index rows of all proposals in id order
func (d *MetadataStoreSqlite) GetGovernanceProposals(
	txn types.Txn,
) ([]*models.GovernanceProposal, error) {
	var proposals []*models.GovernanceProposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("proposal_id").Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// SetGovernanceProposal creates or updates the index row of a proposal
func (d *MetadataStoreSqlite) SetGovernanceProposal(
	proposal *models.GovernanceProposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "proposal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"author",
			"deadline",
			"instruction_count",
			"executed_at",
		}),
	}
	return db.Clauses(onConflict).Create(proposal).Error
}

// SetGovernanceProposalExecuted marks a proposal as executed at the given
// ledger time
func (d *MetadataStoreSqlite) SetGovernanceProposalExecuted(
	proposalID uint32,
	executedAt uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.GovernanceProposal{}).
		Where("proposal_id = ?", proposalID).
		Update("executed_at", executedAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrGovernanceProposalNotFound
	}
	return nil
}

// GetGovernanceVotes retrieves all votes recorded for a proposal in the
// order they were cast
func (d *MetadataStoreSqlite) GetGovernanceVotes(
	proposalID uint32,
	txn types.Txn,
) ([]*models.GovernanceVote, error) {
	var votes []*models.GovernanceVote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ?",
		proposalID,
	).Order("id").Find(&votes); result.Error != nil {
		return nil, result.Error
	}
	return votes, nil
}

// SetGovernanceVote records a vote on a proposal. A voter has at most one
// row per proposal.
func (d *MetadataStoreSqlite) SetGovernanceVote(
	vote *models.GovernanceVote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "voter"},
		},
		DoNothing: true,
	}
	return db.Clauses(onConflict).Create(vote).Error
}
