// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package statestore persists versioned reader state in BadgerDB.

Each reader has at most two records:

	profile:<user_id>  models.Profile
	pattern:<user_id>  models.Pattern

Both are stored as JSON. Readers without a record are served the defaults
from models.DefaultProfile and models.DefaultPattern at version 0.

# Optimistic Commits

Commit writes a profile, a pattern, or both in a single Badger transaction.
Every value carries the version it was read at; the commit fails with
ErrVersionConflict when the stored version has moved on. Badger's own
transaction conflict detection (badger.ErrConflict) is reported the same
way, so callers only need one retry path:

	for attempt := 0; attempt < retries; attempt++ {
		snap, err := store.Load(ctx, userID)
		...
		_, err = store.Commit(ctx, userID, &profile, &pattern)
		if !errors.Is(err, statestore.ErrVersionConflict) {
			return err
		}
	}
*/
package statestore
