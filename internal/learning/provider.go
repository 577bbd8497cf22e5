// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"fmt"

	"github.com/tomtom215/lectern/internal/recommend"
)

// Snapshot implements recommend.DataProvider. The pattern is nil for a
// reader that has never had one committed.
func (c *Coordinator) Snapshot(ctx context.Context, q recommend.SnapshotQuery) (*recommend.Snapshot, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	snap, err := c.repo.Snapshot(ctx, q)
	if err != nil {
		return nil, err
	}
	st, err := c.state.Load(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	snap.Profile = st.Profile
	if st.Pattern.Version > 0 {
		pattern := st.Pattern
		snap.Pattern = &pattern
	}
	return snap, nil
}
