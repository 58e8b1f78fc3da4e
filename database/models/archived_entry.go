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

var ErrArchivedEntryNotFound = errors.New("archived entry not found")

// ArchivedEntry holds a persisted entry whose lease lapsed. The value is the
// raw envelope as it was held in the blob store.
type ArchivedEntry struct {
	ID         uint   `gorm:"primarykey"`
	Key        []byte `gorm:"column:entry_key;uniqueIndex;not null"`
	Scope      string `gorm:"index;size:128;not null"`
	Value      []byte `gorm:"not null"`
	LiveUntil  uint64 `gorm:"not null"`
	ArchivedAt uint64 `gorm:"index;not null"`
}

// TableName returns the table name
func (ArchivedEntry) TableName() string {
	return "archived_entry"
}
