package services

import "sync"

// UserLocks serializes mutations per user. A user's pets and inventory are
// covered by the owner's lock. Entries are dropped once no goroutine holds or
// waits on them, so the map only grows with concurrent players.
//
// The zero value is ready to use.
type UserLocks struct {
	mu sync.Mutex
	m  map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until the caller owns userID's lock and returns the release
// function. Acquire it before opening a transaction.
func (l *UserLocks) Lock(userID int64) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[int64]*userLock)
	}
	ul, ok := l.m[userID]
	if !ok {
		ul = &userLock{}
		l.m[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.m, userID)
		}
		l.mu.Unlock()
	}
}

// size reports live entries.
func (l *UserLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

var defaultLocks UserLocks

func locksOr(l *UserLocks) *UserLocks {
	if l != nil {
		return l
	}
	return &defaultLocks
}
