// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package recommend ranks unread documents for a reader.
//
// # Scoring
//
// Each candidate (a completed document the reader has not opened) receives a
// composite score in [0, 1]:
//
//	0.40 * interest_alignment   Jaccard(interests, themes ∪ categories)
//	0.25 * pattern_match        category overlap with preferred content types, plus reading mode
//	0.20 * content_similarity   mean similarity to the reader's high-engagement documents
//	0.10 * trending             min(reads_30d/10, 1) * max(0.1, 1 - age_days/365)
//	0.05 * level_match          1.0 when the complexity fits the reading level, else 0.3
//
// Candidates scoring above Config.MinScore are ranked by score, then by
// newer creation time, then by lower id.
//
// # Modes
//
//   - Personalized: the top K ranked candidates
//   - Discovery: candidates carrying a theme the reader has met at most twice
//   - TimeBudgeted: ranked candidates whose estimated length fits the
//     available minutes at the reader's recent speed (±20%)
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	engine.SetDataProvider(provider)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    UserID: userID,
//	    Mode:   recommend.ModeTimeBudgeted,
//	    AvailableMinutes: 15,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Scoring is a pure function of the
// Snapshot returned by the DataProvider. Responses are cached per
// (user, mode, k, minutes) until their TTL expires or Invalidate is called
// for the user.
package recommend
