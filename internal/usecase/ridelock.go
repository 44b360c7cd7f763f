package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// rideLocker serializes seat accounting per ride. Every read-check-write
// against one ride's seat counter must run under that ride's lock, otherwise
// two concurrent booking requests can both pass the availability check and
// oversell the ride. Entries are refcounted so the map stays bounded by the
// number of rides with in-flight operations.
type rideLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*rideLockEntry
}

type rideLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newRideLocker() *rideLocker {
	return &rideLocker{
		locks: make(map[uuid.UUID]*rideLockEntry),
	}
}

func (l *rideLocker) Lock(rideID uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[rideID]
	if !ok {
		entry = &rideLockEntry{}
		l.locks[rideID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *rideLocker) Unlock(rideID uuid.UUID) {
	l.mu.Lock()
	entry := l.locks[rideID]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, rideID)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
