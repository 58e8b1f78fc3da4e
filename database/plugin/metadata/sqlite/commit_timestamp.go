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
	"fmt"

	"github.com/blinklabs-io/govern/database/types"
)

// commitMarker is the single row holding the commit timestamp of the last
// governance transaction. The blob store keeps a matching value.
type commitMarker struct {
	ID        uint `gorm:"primarykey"`
	Timestamp int64
}

const commitMarkerID = 1

func (commitMarker) TableName() string {
	return "commit_timestamp"
}

// GetCommitTimestamp returns the recorded commit timestamp, or zero on a
// fresh store
func (d *MetadataStoreSqlite) GetCommitTimestamp() (int64, error) {
	var rows []commitMarker
	result := d.DB().Where("id = ?", commitMarkerID).Limit(1).Find(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("read commit timestamp: %w", result.Error)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Timestamp, nil
}

// SetCommitTimestamp records timestamp, inside txn when one is given
func (d *MetadataStoreSqlite) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	// Save upserts on the primary key
	marker := commitMarker{ID: commitMarkerID, Timestamp: timestamp}
	if err := db.Save(&marker).Error; err != nil {
		return fmt.Errorf("write commit timestamp: %w", err)
	}
	return nil
}
