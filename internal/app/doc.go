// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package app wires configuration, storage and the engine together. Both
// the server and the lecternctl CLI build their dependencies through it.
package app
