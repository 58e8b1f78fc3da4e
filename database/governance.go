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

package database

import (
	"fmt"

	"github.com/blinklabs-io/govern/database/models"
)

// IndexProposal records the listing row of a newly created proposal
func (d *Database) IndexProposal(
	proposal *models.GovernanceProposal,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetGovernanceProposal(proposal, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"failed to index proposal %d: %w",
			proposal.ProposalID,
			err,
		)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// MarkProposalExecuted records the ledger time a proposal was executed at
func (d *Database) MarkProposalExecuted(
	proposalID uint32,
	executedAt uint64,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetGovernanceProposalExecuted(
		proposalID,
		executedAt,
		txn.Metadata(),
	); err != nil {
		return fmt.Errorf(
			"failed to mark proposal %d executed: %w",
			proposalID,
			err,
		)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// RecordVote appends a vote to the vote history
func (d *Database) RecordVote(
	vote *models.GovernanceVote,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetGovernanceVote(vote, txn.Metadata()); err != nil {
		return fmt.Errorf(
			"failed to record vote on proposal %d: %w",
			vote.ProposalID,
			err,
		)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// ProposalIndex returns the listing rows of all proposals
func (d *Database) ProposalIndex(txn *Txn) ([]*models.GovernanceProposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetGovernanceProposals(txn.Metadata())
}

// ProposalIndexEntry returns the listing row of a proposal, or nil if it
// is not indexed
func (d *Database) ProposalIndexEntry(
	proposalID uint32,
	txn *Txn,
) (*models.GovernanceProposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetGovernanceProposal(proposalID, txn.Metadata())
}

// VoteHistory returns the votes recorded for a proposal in casting order
func (d *Database) VoteHistory(
	proposalID uint32,
	txn *Txn,
) ([]*models.GovernanceVote, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetGovernanceVotes(proposalID, txn.Metadata())
}
