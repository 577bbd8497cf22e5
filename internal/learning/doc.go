// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package learning coordinates the behavioral core with the stores.

Coordinator is the single entry point used by the HTTP API, the event
processor, the batch learner and the operator CLI:

  - RecordSessionProgress ingests one progress report
  - RunLearningCycle recomputes a reader's pattern, interests and level
  - AnalyzePatterns, Insights and Dashboard are read-only reports
  - RunBatch runs the learning cycle for many readers
  - UpsertProfile, UpsertDocument, AddBookmark, RemoveBookmark and
    UpsertSimilarity maintain explicit state and the catalogue

# Stage Then Commit

Every operation that changes reader state reads a versioned snapshot from
the state store, computes the complete new state in memory, and commits
profile and pattern together. A version conflict restarts the computation
from a fresh read, up to Config.CommitRetries times. The context is checked
before each commit, so a canceled or expired caller never leaves a partially
written cycle.

# Recommendation Data

Coordinator also implements recommend.DataProvider by combining the
relational snapshot from the repository with the reader's profile and
pattern from the state store.
*/
package learning
