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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitTimestampOverwrite(t *testing.T) {
	store := setupTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)

	require.NoError(t, store.SetCommitTimestamp(5, nil))
	txn := store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(9, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(9), ts)

	// Rolled back writes leave the marker alone
	txn = store.Transaction()
	require.NoError(t, store.SetCommitTimestamp(11, txn))
	require.NoError(t, txn.Rollback())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(9), ts)

	var count int64
	require.NoError(t, store.DB().Model(&commitMarker{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
