// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package cache provides a bounded, TTL-aware LRU cache and a key set
// built on it.
//
// The recommendation engine keeps responses in an LRUCache keyed by
// reader and request. The event router uses an LRU key set to remember the
// ids of progress events it has already applied, so a redelivered message
// is acknowledged without being applied twice.
package cache
