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

// SetArchivedEntry stores a lapsed entry. Archiving the same key again
// replaces the previous copy.
func (d *MetadataStoreSqlite) SetArchivedEntry(
	entry *models.ArchivedEntry,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"scope",
			"value",
			"live_until",
			"archived_at",
		}),
	}
	return db.Clauses(onConflict).Create(entry).Error
}

// GetArchivedEntry returns the archived copy of a key, or
// models.ErrArchivedEntryNotFound
func (d *MetadataStoreSqlite) GetArchivedEntry(
	key []byte,
	txn types.Txn,
) (*models.ArchivedEntry, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.ArchivedEntry
	if result := db.Where("entry_key = ?", key).First(&ret); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrArchivedEntryNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetArchivedEntries returns all archived entries of a scope
func (d *MetadataStoreSqlite) GetArchivedEntries(
	scope string,
	txn types.Txn,
) ([]models.ArchivedEntry, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.ArchivedEntry
	if result := db.Where("scope = ?", scope).Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// DeleteArchivedEntries removes all archived entries of a scope
func (d *MetadataStoreSqlite) DeleteArchivedEntries(
	scope string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("scope = ?", scope).Delete(&models.ArchivedEntry{}).Error
}

// CountArchivedEntries returns the number of archived entries
func (d *MetadataStoreSqlite) CountArchivedEntries(txn types.Txn) (int64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.ArchivedEntry{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
