// Copyright 2026 Blink Labs Software
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
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/database/types"
)

var (
	ErrEntryNotFound          = errors.New("entry not found")
	ErrEntryArchived          = errors.New("entry archived")
	ErrReadOnlyTxn            = errors.New("write in read-only transaction")
	ErrInvalidLeaseWatermarks = errors.New(
		"lease high watermark must not be below low watermark",
	)
)

// ArchivedError is returned when an entry exists but its lease has lapsed.
// The entry must be restored before it can be used again.
type ArchivedError struct {
	Key       []byte
	Scope     string
	LiveUntil uint64
}

func (e ArchivedError) Error() string {
	return fmt.Sprintf(
		"entry archived: scope %s, lease ended at %d",
		e.Scope,
		e.LiveUntil,
	)
}

func (e ArchivedError) Unwrap() error {
	return ErrEntryArchived
}

// envelope wraps every persisted value with the ledger time it stays live
// until (inclusive)
type envelope struct {
	cbor.StructAsArray
	LiveUntil uint64
	Value     []byte
}

func decodeEnvelope(data []byte) (envelope, error) {
	var ret envelope
	if _, err := cbor.Decode(data, &ret); err != nil {
		return ret, fmt.Errorf("decode entry envelope: %w", err)
	}
	return ret, nil
}

func (t *Txn) lapsed(env envelope) bool {
	return t.now > env.LiveUntil
}

func (t *Txn) freshLease() uint64 {
	_, high := t.db.Leases()
	return t.now + high
}

// readEnvelope returns the live envelope stored under key
func (t *Txn) readEnvelope(key []byte) (envelope, error) {
	data, err := t.db.blob.Get(t.blobTxn, key)
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return envelope{}, err
		}
		// The sweeper may have moved the entry to the archive
		archived, err := t.db.metadata.GetArchivedEntry(key, t.metadataTxn)
		if err != nil {
			if errors.Is(err, models.ErrArchivedEntryNotFound) {
				return envelope{}, ErrEntryNotFound
			}
			return envelope{}, err
		}
		return envelope{}, ArchivedError{
			Key:       key,
			Scope:     archived.Scope,
			LiveUntil: archived.LiveUntil,
		}
	}
	env, err := decodeEnvelope(data)
	if err != nil {
		return envelope{}, err
	}
	if t.lapsed(env) {
		return envelope{}, ArchivedError{
			Key:       key,
			Scope:     types.KeyScope(key),
			LiveUntil: env.LiveUntil,
		}
	}
	return env, nil
}

func (t *Txn) writeEnvelope(key []byte, env envelope) error {
	if !t.readWrite {
		return ErrReadOnlyTxn
	}
	data, err := cbor.Encode(&env)
	if err != nil {
		return fmt.Errorf("encode entry envelope: %w", err)
	}
	return t.db.blob.Set(t.blobTxn, key, data)
}

// GetEntry decodes the live value stored under key into dest. It returns
// ErrEntryNotFound if the key was never written and an ArchivedError if the
// lease has lapsed.
func (t *Txn) GetEntry(key []byte, dest any) error {
	env, err := t.readEnvelope(key)
	if err != nil {
		return err
	}
	if _, err := cbor.Decode(env.Value, dest); err != nil {
		return fmt.Errorf("decode entry value: %w", err)
	}
	return nil
}

// HasEntry reports whether a live entry exists under key. A lapsed entry
// is reported as an ArchivedError.
func (t *Txn) HasEntry(key []byte) (bool, error) {
	if _, err := t.readEnvelope(key); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PutEntry stores value under key with a fresh lease
func (t *Txn) PutEntry(key []byte, value any) error {
	data, err := cbor.Encode(value)
	if err != nil {
		return fmt.Errorf("encode entry value: %w", err)
	}
	return t.writeEnvelope(
		key,
		envelope{LiveUntil: t.freshLease(), Value: data},
	)
}

// ExtendEntry bumps the lease of a live entry back to the high watermark
// once its remaining lifetime drops below the low watermark. It reports
// whether the lease was changed.
func (t *Txn) ExtendEntry(key []byte) (bool, error) {
	env, err := t.readEnvelope(key)
	if err != nil {
		return false, err
	}
	low, _ := t.db.Leases()
	if env.LiveUntil-t.now >= low {
		return false, nil
	}
	env.LiveUntil = t.freshLease()
	if err := t.writeEnvelope(key, env); err != nil {
		return false, err
	}
	return true, nil
}

// EntryLease returns the ledger time a live entry stays live until
func (t *Txn) EntryLease(key []byte) (uint64, error) {
	env, err := t.readEnvelope(key)
	if err != nil {
		return 0, err
	}
	return env.LiveUntil, nil
}
