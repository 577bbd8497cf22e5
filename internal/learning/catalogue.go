// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package learning

import (
	"context"
	"fmt"

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/statestore"
	"github.com/tomtom215/lectern/internal/validation"
)

// Profile returns the reader's stored profile, or the default profile.
func (c *Coordinator) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	st, err := c.state.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &st.Profile, nil
}

// UpsertProfile applies an explicit profile edit and returns the committed profile.
func (c *Coordinator) UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.Profile, error) {
	if verr := validation.ValidateStruct(update); verr != nil {
		return nil, verr
	}
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	committed, err := c.commit(ctx, userID, func(st statestore.Snapshot) (*models.Profile, *models.Pattern, error) {
		profile := update.Apply(st.Profile)
		return &profile, nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("upsert profile for user %d: %w", userID, err)
	}
	c.invalidate(userID)
	c.logger.Info().Int64("user_id", userID).Strs("interests", committed.Profile.Interests).Msg("Profile updated")
	return &committed.Profile, nil
}

// UpsertDocument validates and stores a catalogue entry.
func (c *Coordinator) UpsertDocument(ctx context.Context, doc *models.Document) error {
	doc.Normalize()
	if verr := validation.ValidateStruct(doc); verr != nil {
		return verr
	}
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	if err := c.repo.UpsertDocument(ctx, doc); err != nil {
		return err
	}
	c.invalidateAll()
	return nil
}

// AddBookmark saves a document for a reader.
func (c *Coordinator) AddBookmark(ctx context.Context, userID, documentID int64) error {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()
	return c.repo.AddBookmark(ctx, userID, documentID)
}

// RemoveBookmark deletes a bookmark and reports whether one existed.
func (c *Coordinator) RemoveBookmark(ctx context.Context, userID, documentID int64) (bool, error) {
	ctx, cancel := c.storeContext(ctx)
	defer cancel()
	return c.repo.RemoveBookmark(ctx, userID, documentID)
}

// UpsertSimilarity validates and stores a similarity pair.
func (c *Coordinator) UpsertSimilarity(ctx context.Context, sim models.DocumentSimilarity) (*models.DocumentSimilarity, error) {
	if verr := validation.ValidateStruct(sim); verr != nil {
		return nil, verr
	}
	ctx, cancel := c.storeContext(ctx)
	defer cancel()

	stored, err := c.repo.UpsertSimilarity(ctx, sim)
	if err != nil {
		return nil, err
	}
	c.invalidateAll()
	return &stored, nil
}
