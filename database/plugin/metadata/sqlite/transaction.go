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
	"sync"

	"github.com/blinklabs-io/govern/database/types"
	"gorm.io/gorm"
)

// sqliteTxn wraps a gorm transaction and implements types.Txn. The
// underlying transaction is started on first use, so read paths that never
// touch the metadata store do not hold the connection.
type sqliteTxn struct {
	store    *MetadataStoreSqlite
	tx       *gorm.DB
	beginErr error
	lock     sync.Mutex
	finished bool
}

// Transaction creates a new metadata transaction
func (d *MetadataStoreSqlite) Transaction() types.Txn {
	return &sqliteTxn{store: d}
}

func (t *sqliteTxn) db() (*gorm.DB, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil, errors.New("transaction already finished")
	}
	if t.beginErr != nil {
		return nil, t.beginErr
	}
	if t.tx == nil {
		tx := t.store.DB().Begin()
		if tx.Error != nil {
			t.beginErr = tx.Error
			return nil, tx.Error
		}
		t.tx = tx
	}
	return t.tx, nil
}

func (t *sqliteTxn) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	t.finished = true
	if t.tx == nil {
		return nil
	}
	return t.tx.Commit().Error
}

func (t *sqliteTxn) Rollback() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.finished {
		return nil
	}
	t.finished = true
	if t.tx == nil {
		return nil
	}
	return t.tx.Rollback().Error
}

// resolveDB returns the gorm handle to use for a query. A nil txn runs the
// query outside of any transaction.
func (d *MetadataStoreSqlite) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return d.DB(), nil
	}
	sTxn, ok := txn.(*sqliteTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if sTxn.store != d {
		return nil, errors.New("transaction from different store")
	}
	return sTxn.db()
}
