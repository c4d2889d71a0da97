// Locbeacon - Live Location Broadcasting Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locbeacon

package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/locbeacon/internal/models"
)

const (
	locationKeyPrefix = "location:"

	// maxConflictRetries bounds retries of transactions that lost a race
	// with a concurrent write.
	maxConflictRetries = 3

	// evictBatchSize keeps a single eviction transaction under Badger's
	// transaction size limit.
	evictBatchSize = 1000

	gcDiscardRatio = 0.5
)

// BadgerRegistry stores one JSON value per user under "location:<userId>".
// Entries are also written with a Badger TTL of twice the staleness
// threshold so that the store drains itself if the sweeper stops.
type BadgerRegistry struct {
	db     *badger.DB
	ownsDB bool

	ttl   time.Duration
	clock Clock

	// mu serializes Upsert against EvictStale. Badger detects the
	// read-write conflict too; the lock avoids retry storms under load.
	mu sync.Mutex
}

// OpenBadgerRegistry opens (or creates) a Badger database at path. An empty
// path opens an in-memory database.
func OpenBadgerRegistry(path string, opts Options) (*BadgerRegistry, error) {
	dbOpts := badger.DefaultOptions(path)
	if path == "" {
		dbOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	dbOpts.Logger = nil

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for registry: %w", err)
	}

	r := NewBadgerRegistryFromDB(db, opts)
	r.ownsDB = true
	return r, nil
}

// NewBadgerRegistryFromDB wraps an already open database. Close does not
// close a database the registry did not open.
func NewBadgerRegistryFromDB(db *badger.DB, opts Options) *BadgerRegistry {
	opts = opts.withDefaults()
	return &BadgerRegistry{
		db:    db,
		ttl:   opts.TTL,
		clock: opts.Clock,
	}
}

func locationKey(userID string) []byte {
	return []byte(locationKeyPrefix + userID)
}

// Upsert writes report with ReceivedAt stamped from the registry clock.
func (r *BadgerRegistry) Upsert(_ context.Context, report models.LocationReport) (models.LocationReport, error) {
	if err := validateReport(&report); err != nil {
		return models.LocationReport{}, err
	}
	if r.db.IsClosed() {
		return models.LocationReport{}, ErrClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := report.Clone()
	stored.ReceivedAt = r.clock()

	data, err := json.Marshal(&stored)
	if err != nil {
		return models.LocationReport{}, fmt.Errorf("marshal location: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(locationKey(stored.UserID), data).WithTTL(2 * r.ttl)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("set location: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.LocationReport{}, err
	}
	return stored, nil
}

// Get returns the fresh entry for userID.
func (r *BadgerRegistry) Get(_ context.Context, userID string) (models.LocationReport, error) {
	if r.db.IsClosed() {
		return models.LocationReport{}, ErrClosed
	}

	var report models.LocationReport
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(locationKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get location: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return models.LocationReport{}, err
	}

	if report.IsStale(r.clock(), r.ttl) {
		return models.LocationReport{}, ErrNotFound
	}
	return report, nil
}

// List returns every fresh entry. Values that fail to decode are skipped.
func (r *BadgerRegistry) List(_ context.Context) ([]models.LocationReport, error) {
	if r.db.IsClosed() {
		return nil, ErrClosed
	}

	now := r.clock()
	out := []models.LocationReport{}
	err := r.scan(func(report models.LocationReport) {
		if !report.IsStale(now, r.ttl) {
			out = append(out, report)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan locations: %w", err)
	}

	sortReports(out)
	return out, nil
}

// EvictStale deletes entries received before now-ttl. Each candidate is
// re-read inside the deleting transaction so that a report refreshed
// between the scan and the delete survives.
func (r *BadgerRegistry) EvictStale(_ context.Context, now time.Time, ttl time.Duration) ([]string, error) {
	if r.db.IsClosed() {
		return nil, ErrClosed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var candidates []string
	err := r.scan(func(report models.LocationReport) {
		if report.IsStale(now, ttl) {
			candidates = append(candidates, report.UserID)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scan locations: %w", err)
	}

	var evicted []string
	for start := 0; start < len(candidates); start += evictBatchSize {
		end := min(start+evictBatchSize, len(candidates))
		deleted, err := r.evictBatch(candidates[start:end], now, ttl)
		evicted = append(evicted, deleted...)
		if err != nil {
			sort.Strings(evicted)
			return evicted, err
		}
	}

	sort.Strings(evicted)
	return evicted, nil
}

func (r *BadgerRegistry) evictBatch(userIDs []string, now time.Time, ttl time.Duration) ([]string, error) {
	var deleted []string
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		deleted = deleted[:0]
		err = r.db.Update(func(txn *badger.Txn) error {
			for _, id := range userIDs {
				item, err := txn.Get(locationKey(id))
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				if err != nil {
					return fmt.Errorf("get location: %w", err)
				}

				var report models.LocationReport
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &report)
				}); err != nil {
					return fmt.Errorf("decode location %s: %w", id, err)
				}
				if !report.IsStale(now, ttl) {
					continue
				}

				if err := txn.Delete(locationKey(id)); err != nil {
					return fmt.Errorf("delete location: %w", err)
				}
				deleted = append(deleted, id)
			}
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Delete removes the entry for userID.
func (r *BadgerRegistry) Delete(_ context.Context, userID string) (bool, error) {
	if r.db.IsClosed() {
		return false, ErrClosed
	}

	existed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(locationKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get location: %w", err)
		}
		existed = true
		return txn.Delete(locationKey(userID))
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// Count returns the number of stored keys without decoding values.
func (r *BadgerRegistry) Count(_ context.Context) (int, error) {
	if r.db.IsClosed() {
		return 0, ErrClosed
	}

	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(locationKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return count, nil
}

// RunGC reclaims value log space freed by evictions. It returns nil when
// there is nothing to rewrite or the database is in-memory.
func (r *BadgerRegistry) RunGC() error {
	if r.db.IsClosed() {
		return ErrClosed
	}
	for {
		err := r.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// TTL returns the read staleness threshold.
func (r *BadgerRegistry) TTL() time.Duration { return r.ttl }

// Now returns the registry clock time.
func (r *BadgerRegistry) Now() time.Time { return r.clock() }

// Backend returns "badger".
func (r *BadgerRegistry) Backend() string { return "badger" }

// Close closes the database if the registry opened it.
func (r *BadgerRegistry) Close() error {
	if !r.ownsDB || r.db.IsClosed() {
		return nil
	}
	return r.db.Close()
}

func (r *BadgerRegistry) scan(fn func(models.LocationReport)) error {
	return r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(locationKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var report models.LocationReport
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &report)
			})
			if err != nil {
				continue
			}
			fn(report)
		}
		return nil
	})
}

var _ Registry = (*BadgerRegistry)(nil)
