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
	"slices"

	"github.com/blinklabs-io/govern/database/models"
	"github.com/blinklabs-io/govern/database/types"
)

// DefaultArchiveBatchSize bounds the number of entries moved by a single
// ArchiveExpired call
const DefaultArchiveBatchSize = 1000

// ArchivedEntry describes an entry moved out of the live key space
type ArchivedEntry struct {
	Key       []byte
	Scope     string
	LiveUntil uint64
}

// ArchiveExpired moves up to limit lapsed entries from the blob store into
// the metadata archive. A limit of zero uses DefaultArchiveBatchSize.
func (t *Txn) ArchiveExpired(limit int) ([]ArchivedEntry, error) {
	if !t.readWrite {
		return nil, ErrReadOnlyTxn
	}
	if limit <= 0 {
		limit = DefaultArchiveBatchSize
	}
	type lapsedEntry struct {
		key       []byte
		value     []byte
		liveUntil uint64
	}
	var found []lapsedEntry
	for _, prefix := range types.LeasedKeyPrefixes {
		if len(found) >= limit {
			break
		}
		err := t.db.blob.ScanPrefix(
			t.blobTxn,
			[]byte(prefix),
			func(key, val []byte) (bool, error) {
				if types.KeyScope(key) == "" {
					return true, nil
				}
				env, err := decodeEnvelope(val)
				if err != nil {
					return false, fmt.Errorf("key %x: %w", key, err)
				}
				if t.lapsed(env) {
					found = append(found, lapsedEntry{
						key:       key,
						value:     val,
						liveUntil: env.LiveUntil,
					})
				}
				return len(found) < limit, nil
			},
		)
		if err != nil {
			return nil, err
		}
	}
	ret := make([]ArchivedEntry, 0, len(found))
	for _, entry := range found {
		scope := types.KeyScope(entry.key)
		err := t.db.metadata.SetArchivedEntry(
			&models.ArchivedEntry{
				Key:        entry.key,
				Scope:      scope,
				Value:      entry.value,
				LiveUntil:  entry.liveUntil,
				ArchivedAt: t.now,
			},
			t.metadataTxn,
		)
		if err != nil {
			return nil, fmt.Errorf("archive entry: %w", err)
		}
		if err := t.db.blob.Delete(t.blobTxn, entry.key); err != nil {
			return nil, fmt.Errorf("delete archived entry: %w", err)
		}
		ret = append(ret, ArchivedEntry{
			Key:       entry.key,
			Scope:     scope,
			LiveUntil: entry.liveUntil,
		})
	}
	return ret, nil
}

// RestoreScope brings every lapsed entry of a scope back with a fresh
// lease, whether it is still in the blob store or was moved to the archive.
// It returns the number of entries restored.
func (t *Txn) RestoreScope(scope string) (int, error) {
	if !t.readWrite {
		return 0, ErrReadOnlyTxn
	}
	prefixes, err := types.ScopePrefixes(scope)
	if err != nil {
		return 0, err
	}
	restored := 0
	// Lapsed entries still held in place
	var inPlace []envelope
	var inPlaceKeys [][]byte
	for _, prefix := range prefixes {
		err := t.db.blob.ScanPrefix(
			t.blobTxn,
			prefix,
			func(key, val []byte) (bool, error) {
				if types.KeyScope(key) != scope {
					return true, nil
				}
				env, err := decodeEnvelope(val)
				if err != nil {
					return false, fmt.Errorf("key %x: %w", key, err)
				}
				if t.lapsed(env) {
					inPlace = append(inPlace, env)
					inPlaceKeys = append(inPlaceKeys, key)
				}
				return true, nil
			},
		)
		if err != nil {
			return 0, err
		}
	}
	for idx, env := range inPlace {
		env.LiveUntil = t.freshLease()
		if err := t.writeEnvelope(inPlaceKeys[idx], env); err != nil {
			return 0, err
		}
		restored++
	}
	// Entries moved to the archive by the sweeper
	archived, err := t.db.metadata.GetArchivedEntries(scope, t.metadataTxn)
	if err != nil {
		return 0, err
	}
	for _, entry := range archived {
		if slices.ContainsFunc(inPlaceKeys, func(k []byte) bool {
			return slices.Equal(k, entry.Key)
		}) {
			continue
		}
		// A live copy takes precedence over the archived one
		if _, err := t.db.blob.Get(t.blobTxn, entry.Key); err == nil {
			continue
		} else if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, err
		}
		env, err := decodeEnvelope(entry.Value)
		if err != nil {
			return 0, fmt.Errorf("key %x: %w", entry.Key, err)
		}
		env.LiveUntil = t.freshLease()
		if err := t.writeEnvelope(entry.Key, env); err != nil {
			return 0, err
		}
		restored++
	}
	if len(archived) > 0 {
		if err := t.db.metadata.DeleteArchivedEntries(scope, t.metadataTxn); err != nil {
			return 0, err
		}
	}
	return restored, nil
}
