// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package statestore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/models"
)

// Key prefixes for the record types.
const (
	prefixProfile = "profile:"
	prefixPattern = "pattern:"
)

var (
	// ErrVersionConflict is returned when a commit was based on a stale version.
	ErrVersionConflict = errors.New("state version conflict")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("state store closed")
)

// Snapshot is the reader state as read at a point in time.
type Snapshot struct {
	Profile models.Profile
	Pattern models.Pattern
}

// Store is a Badger-backed state store.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens (or creates) the state store described by cfg.
func Open(cfg *config.StateConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("state path is required when not in memory")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
		// State records are small
		opts.ValueLogFileSize = 64 << 20
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger state store: %w", err)
	}

	s := NewFromDB(db)
	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("State store opened")
	return s, nil
}

// NewFromDB wraps an existing BadgerDB handle.
func NewFromDB(db *badger.DB) *Store {
	return &Store{
		db:     db,
		logger: logging.WithComponent("statestore"),
		now:    time.Now,
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the store can serve reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

func profileKey(userID int64) []byte {
	return []byte(prefixProfile + strconv.FormatInt(userID, 10))
}

func patternKey(userID int64) []byte {
	return []byte(prefixPattern + strconv.FormatInt(userID, 10))
}

// Load reads both records for a reader. Missing records are returned as
// defaults at version 0.
func (s *Store) Load(ctx context.Context, userID int64) (Snapshot, error) {
	if err := s.check(ctx); err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Profile: models.DefaultProfile(userID),
		Pattern: models.DefaultPattern(userID),
	}
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getJSON(txn, profileKey(userID), &snap.Profile); err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		if _, err := getJSON(txn, patternKey(userID), &snap.Pattern); err != nil {
			return fmt.Errorf("read pattern: %w", err)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	normalizeSnapshot(&snap, userID)
	return snap, nil
}

// GetProfile returns the stored profile or the default profile.
func (s *Store) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	snap, err := s.Load(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return snap.Profile, nil
}

// GetPattern returns the stored pattern or the default pattern.
func (s *Store) GetPattern(ctx context.Context, userID int64) (models.Pattern, error) {
	snap, err := s.Load(ctx, userID)
	if err != nil {
		return models.Pattern{}, err
	}
	return snap.Pattern, nil
}

// Commit writes profile and pattern for userID in one transaction. Either may
// be nil to leave that record untouched. Each value's Version must equal the
// stored version (0 for a missing record). On success the returned snapshot
// holds the committed values with incremented versions; the unchanged record,
// if any, is returned as currently stored.
func (s *Store) Commit(ctx context.Context, userID int64, profile *models.Profile, pattern *models.Pattern) (Snapshot, error) {
	if err := s.check(ctx); err != nil {
		return Snapshot{}, err
	}
	if profile == nil && pattern == nil {
		return s.Load(ctx, userID)
	}

	out := Snapshot{
		Profile: models.DefaultProfile(userID),
		Pattern: models.DefaultPattern(userID),
	}
	now := s.now().UTC()

	err := s.db.Update(func(txn *badger.Txn) error {
		var currentProfile models.Profile
		profileFound, err := getJSON(txn, profileKey(userID), &currentProfile)
		if err != nil {
			return fmt.Errorf("read profile: %w", err)
		}
		var currentPattern models.Pattern
		patternFound, err := getJSON(txn, patternKey(userID), &currentPattern)
		if err != nil {
			return fmt.Errorf("read pattern: %w", err)
		}
		if profileFound {
			out.Profile = currentProfile
		}
		if patternFound {
			out.Pattern = currentPattern
		}

		if profile != nil {
			if profile.Version != out.Profile.Version {
				return fmt.Errorf("%w: profile %d at version %d, have %d",
					ErrVersionConflict, userID, out.Profile.Version, profile.Version)
			}
			next := profile.Clone()
			next.UserID = userID
			next.Version = out.Profile.Version + 1
			next.UpdatedAt = now
			if err := setJSON(txn, profileKey(userID), next); err != nil {
				return fmt.Errorf("write profile: %w", err)
			}
			out.Profile = next
		}

		if pattern != nil {
			if pattern.Version != out.Pattern.Version {
				return fmt.Errorf("%w: pattern %d at version %d, have %d",
					ErrVersionConflict, userID, out.Pattern.Version, pattern.Version)
			}
			next := pattern.Clone()
			next.UserID = userID
			next.Version = out.Pattern.Version + 1
			next.UpdatedAt = now
			if err := setJSON(txn, patternKey(userID), next); err != nil {
				return fmt.Errorf("write pattern: %w", err)
			}
			out.Pattern = next
		}
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		err = fmt.Errorf("%w: %v", ErrVersionConflict, err)
	}
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			s.logger.Debug().Int64("user_id", userID).Err(err).Msg("State commit conflict")
		}
		return Snapshot{}, err
	}
	normalizeSnapshot(&out, userID)
	return out, nil
}

// Delete removes both records for a reader.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(profileKey(userID)); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := txn.Delete(patternKey(userID)); err != nil {
			return fmt.Errorf("delete pattern: %w", err)
		}
		return nil
	})
}

// UserIDs returns the ids of every reader with a stored profile, in key order.
func (s *Store) UserIDs(ctx context.Context) ([]int64, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	var ids []int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixProfile)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			id, err := strconv.ParseInt(key[len(prefixProfile):], 10, 64)
			if err != nil {
				s.logger.Warn().Str("key", key).Msg("Skipping malformed profile key")
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db == nil || s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// getJSON decodes the value at key into v. It reports false without error
// when the key does not exist.
func getJSON(txn *badger.Txn, key []byte, v interface{}) (bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

// normalizeSnapshot restores non-nil slices after decoding records written
// with empty JSON arrays or nulls.
func normalizeSnapshot(snap *Snapshot, userID int64) {
	snap.Profile.UserID = userID
	snap.Pattern.UserID = userID
	if snap.Profile.Interests == nil {
		snap.Profile.Interests = []string{}
	}
	if snap.Pattern.PreferredTimes == nil {
		snap.Pattern.PreferredTimes = []models.HourCount{}
	}
	if snap.Pattern.RecentHours == nil {
		snap.Pattern.RecentHours = []int{}
	}
	if snap.Pattern.PreferredContentTypes == nil {
		snap.Pattern.PreferredContentTypes = []string{}
	}
}
