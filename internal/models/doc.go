// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package models defines the data structures shared across Lectern.

The package holds plain records only. Behavior lives in internal/behavior
(session tracking, pattern analysis, interest evolution, level adaptation)
and internal/recommend (document ranking). Storage packages persist these
records unchanged.

Model Categories:

1. Reader State:
  - Profile: interest tags, preferred reading mode, reading level (versioned)
  - Pattern: preferred hours, recent hours, streak, content types (versioned)

2. Telemetry:
  - Session: one upserted row per (user, document)
  - SessionUpdate: a validated progress report from a reader client
  - Analytics: cumulative per (user, document) engagement record

3. Catalogue:
  - Document and DocumentMetadata
  - DocumentSimilarity: symmetric pairwise similarity produced upstream

4. Reports:
  - AnalyticsSnapshot: result of recording session progress
  - PatternReport: the six-part behavioral analysis
  - BehavioralInsights: result of a full learning cycle
  - DashboardStats: per-user summary counters

5. API:
  - APIResponse, Metadata, APIError: the HTTP envelope

Profile and Pattern carry a Version that the state store increments on
every commit. Callers pass the version they read back to the store, which
rejects the write when another writer committed first.

Thread Safety:

Models are plain data holders without internal synchronization. Use Clone
before handing a record to another goroutine that may modify it.
*/
package models
