package booking

import "sync"

// slotLocks serializes commits per therapist-and-date window. The Mongo
// transaction in the repository is the hard guarantee; this keeps racing
// in-process commits from burning transaction retries against each other.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the therapist-date key and returns the unlock func.
func (l *slotLocks) acquire(therapistID, date string) func() {
	key := therapistID + "|" + date

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
