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

package badger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/govern/database/types"
)

// commitTimestampBlobKey sits outside every leased key prefix so the sweeper
// never sees it
const commitTimestampBlobKey = "_commit_timestamp"

// GetCommitTimestamp returns the commit timestamp recorded by the last
// committed transaction, or zero if none was recorded
func (b *BlobStoreBadger) GetCommitTimestamp() (int64, error) {
	txn := b.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck

	val, err := b.Get(txn, []byte(commitTimestampBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(val) != 8 {
		return 0, fmt.Errorf("malformed commit timestamp: %d bytes", len(val))
	}
	// #nosec G115
	return int64(binary.BigEndian.Uint64(val)), nil
}

// SetCommitTimestamp records timestamp in txn
func (b *BlobStoreBadger) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	// #nosec G115
	val := binary.BigEndian.AppendUint64(nil, uint64(timestamp))
	return b.Set(txn, []byte(commitTimestampBlobKey), val)
}
