// Lectern - Adaptive Reading Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"sync"
)

type progressKey struct {
	userID     int64
	documentID int64
}

// acquireProgressLock acquires the mutex for one (user, document) pair
func (db *DB) acquireProgressLock(userID, documentID int64) *sync.Mutex {
	key := progressKey{userID: userID, documentID: documentID}
	muInterface, _ := db.progressLocks.LoadOrStore(key, &sync.Mutex{})
	mu, ok := muInterface.(*sync.Mutex)
	if !ok {
		mu = &sync.Mutex{}
		db.progressLocks.Store(key, mu)
	}
	mu.Lock()
	return mu
}

// releaseProgressLock releases a mutex from acquireProgressLock
func (db *DB) releaseProgressLock(mu *sync.Mutex) {
	mu.Unlock()
}
