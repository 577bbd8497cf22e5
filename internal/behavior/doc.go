// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package behavior implements the behavioral analytics core.

Every function in this package is pure: it takes records fetched by the
caller and returns new records. Nothing here performs I/O, reads the wall
clock, or mutates its arguments. The caller supplies "now" and persists
the results.

Components:

  - Tracker: merges one session update into the per-(user, document)
    Session and Analytics records and computes the engagement score
  - PatternAnalyzer: frequency, content preference, reading time,
    engagement by content, completion trend and speed profile
  - InterestEngine: weighted interest evolution, real-time learning from a
    single session, and reading streak maintenance
  - LevelAdapter: promotes or demotes the reading level tier
  - Summarize, Insights, Dashboard: pattern summary and reports

Engagement Score:

	0.4 * min(progress/100, 1)
	+ 0.3 * min(time_spent/300, 1)
	+ (0.2 if 150 <= wpm <= 300 else 0.1)
	+ (0.1 if progress > 90)

clamped to [0, 1].

Calendar Dates:

Streaks, daily frequency and consistency bucket timestamps by calendar
date in Config.Location. Hours of day are taken in the same location.

Degenerate Input:

Empty windows return neutral reports ("no_data", "insufficient_data",
zero scores) and never an error.
*/
package behavior
