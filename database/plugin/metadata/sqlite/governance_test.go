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
	"testing"

	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *MetadataStoreSqlite {
	t.Helper()
	store, err := New()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close() //nolint:errcheck
	})
	return store
}

func TestGovernanceProposalIndex(t *testing.T) {
	store := setupTestStore(t)

	proposal, err := store.GetGovernanceProposal(0, nil)
	require.NoError(t, err)
	assert.Nil(t, proposal)

	for i := range uint32(3) {
		require.NoError(t, store.SetGovernanceProposal(&models.GovernanceProposal{
			ProposalID:       2 - i,
			Author:           "GAUTHOR",
			Deadline:         1000 + uint64(i),
			InstructionCount: 1,
			CreatedAt:        10,
		}, nil))
	}
	proposals, err := store.GetGovernanceProposals(nil)
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	for i, p := range proposals {
		assert.Equal(t, uint32(i), p.ProposalID)
		assert.Nil(t, p.ExecutedAt)
	}

	require.NoError(t, store.SetGovernanceProposalExecuted(1, 2000, nil))
	proposal, err = store.GetGovernanceProposal(1, nil)
	require.NoError(t, err)
	require.NotNil(t, proposal)
	require.NotNil(t, proposal.ExecutedAt)
	assert.Equal(t, uint64(2000), *proposal.ExecutedAt)

	err = store.SetGovernanceProposalExecuted(99, 2000, nil)
	require.ErrorIs(t, err, models.ErrGovernanceProposalNotFound)
}

func TestGovernanceVoteHistory(t *testing.T) {
	store := setupTestStore(t)
	votes := []*models.GovernanceVote{
		{ProposalID: 0, Voter: "GB", Choice: models.VoteFor, Power: 5, Weight: types.NewAmount(60), CastAt: 5},
		{ProposalID: 0, Voter: "GA", Choice: models.VoteAgainst, Power: 5, Weight: types.NewAmount(40), CastAt: 6},
		{ProposalID: 1, Voter: "GA", Choice: models.VoteAbstain, Power: 5, Weight: types.NewAmount(1), CastAt: 7},
	}
	for _, vote := range votes {
		require.NoError(t, store.SetGovernanceVote(vote, nil))
	}
	// Duplicate votes are ignored
	require.NoError(t, store.SetGovernanceVote(&models.GovernanceVote{
		ProposalID: 0, Voter: "GB", Choice: models.VoteAgainst, Weight: types.NewAmount(1),
	}, nil))

	got, err := store.GetGovernanceVotes(0, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GB", got[0].Voter)
	assert.Equal(t, uint8(models.VoteFor), got[0].Choice)
	assert.Equal(t, "60", got[0].Weight.String())
	assert.Equal(t, "GA", got[1].Voter)
}

func TestArchivedEntries(t *testing.T) {
	reg := prometheus.NewRegistry()
	store, err := New(WithPromRegistry(reg))
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	require.NoError(t, store.SetArchivedEntry(&models.ArchivedEntry{
		Key: []byte("k1"), Scope: "proposal/0", Value: []byte("v1"), LiveUntil: 10, ArchivedAt: 11,
	}, nil))
	require.NoError(t, store.SetArchivedEntry(&models.ArchivedEntry{
		Key: []byte("k2"), Scope: "proposal/0", Value: []byte("v2"), LiveUntil: 10, ArchivedAt: 11,
	}, nil))
	require.NoError(t, store.SetArchivedEntry(&models.ArchivedEntry{
		Key: []byte("k3"), Scope: "core", Value: []byte("v3"), LiveUntil: 10, ArchivedAt: 11,
	}, nil))
	// Re-archiving replaces the stored copy
	require.NoError(t, store.SetArchivedEntry(&models.ArchivedEntry{
		Key: []byte("k1"), Scope: "proposal/0", Value: []byte("v1b"), LiveUntil: 20, ArchivedAt: 21,
	}, nil))

	entry, err := store.GetArchivedEntry([]byte("k1"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1b"), entry.Value)
	assert.Equal(t, uint64(20), entry.LiveUntil)

	entries, err := store.GetArchivedEntries("proposal/0", nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	count, err := store.CountArchivedEntries(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, store.DeleteArchivedEntries("proposal/0", nil))
	_, err = store.GetArchivedEntry([]byte("k1"), nil)
	require.ErrorIs(t, err, models.ErrArchivedEntryNotFound)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "database_metadata_archived_entries", families[0].GetName())
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.SetGovernanceProposal(&models.GovernanceProposal{
		ProposalID: 7, Author: "GA", Deadline: 1, InstructionCount: 1,
	}, txn))
	require.NoError(t, txn.Rollback())
	// Finished transactions are rejected
	_, err := store.GetGovernanceProposal(7, txn)
	require.Error(t, err)

	proposal, err := store.GetGovernanceProposal(7, nil)
	require.NoError(t, err)
	assert.Nil(t, proposal)

	txn = store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(42, txn))
	require.NoError(t, txn.Commit())
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}

func TestSeparateInMemoryStores(t *testing.T) {
	first := setupTestStore(t)
	second := setupTestStore(t)
	require.NoError(t, first.SetCommitTimestamp(5, nil))
	ts, err := second.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
}
