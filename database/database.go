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
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/govern/database/plugin/blob/badger"
	"github.com/blinklabs-io/govern/database/plugin/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlobCacheSize = 256 << 20

	// Default lease watermarks, in seconds of ledger time
	DefaultLeaseLowWatermark  = 30 * 24 * 60 * 60
	DefaultLeaseHighWatermark = 31 * 24 * 60 * 60
)

// Clock returns the current ledger time in unix seconds. It must never go
// backwards.
type Clock func() uint64

// WallClock reads the ledger time from the system clock
func WallClock() uint64 {
	return uint64(time.Now().Unix()) //nolint:gosec
}

// Config holds the database configuration
type Config struct {
	PromRegistry       prometheus.Registerer
	Logger             *slog.Logger
	Clock              Clock
	DataDir            string
	BlobCacheSize      uint64
	LeaseLowWatermark  uint64
	LeaseHighWatermark uint64
}

type Database struct {
	logger   *slog.Logger
	blob     *badger.BlobStoreBadger
	metadata *sqlite.MetadataStoreSqlite
	config   Config
}

// Blob returns the underling blob store instance
func (d *Database) Blob() *badger.BlobStoreBadger {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.config.DataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() *sqlite.MetadataStoreSqlite {
	return d.metadata
}

// Now returns the current ledger time
func (d *Database) Now() uint64 {
	return d.config.Clock()
}

// Leases returns the lease watermarks applied to persisted entries
func (d *Database) Leases() (low uint64, high uint64) {
	return d.config.LeaseLowWatermark, d.config.LeaseHighWatermark
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	// Check commit timestamp
	if err := d.checkCommitTimestamp(); err != nil {
		return err
	}
	return nil
}

// New creates a new database instance with optional persistence using the provided data directory
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	cfg := *config
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = WallClock
	}
	if cfg.BlobCacheSize == 0 {
		cfg.BlobCacheSize = DefaultBlobCacheSize
	}
	if cfg.LeaseLowWatermark == 0 {
		cfg.LeaseLowWatermark = DefaultLeaseLowWatermark
	}
	if cfg.LeaseHighWatermark == 0 {
		cfg.LeaseHighWatermark = DefaultLeaseHighWatermark
	}
	if cfg.LeaseHighWatermark < cfg.LeaseLowWatermark {
		return nil, ErrInvalidLeaseWatermarks
	}
	metadataDb, err := sqlite.New(
		sqlite.WithDataDir(cfg.DataDir),
		sqlite.WithLogger(cfg.Logger),
		sqlite.WithPromRegistry(cfg.PromRegistry),
	)
	if err != nil {
		return nil, err
	}
	blobDb, err := badger.New(
		badger.WithDataDir(cfg.DataDir),
		badger.WithLogger(cfg.Logger),
		badger.WithPromRegistry(cfg.PromRegistry),
		badger.WithBlockCacheSize(cfg.BlobCacheSize),
	)
	if err != nil {
		_ = metadataDb.Close()
		return nil, err
	}
	db := &Database{
		logger:   cfg.Logger,
		blob:     blobDb,
		metadata: metadataDb,
		config:   cfg,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
