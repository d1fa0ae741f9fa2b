package reconcile

import "sync"

// keyLock serializes work per string key. Entries are reference counted and
// removed once the last holder unlocks, so the map only holds active keys.
type keyLock struct {
	mu   sync.Mutex
	keys map[string]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{keys: make(map[string]*keyEntry)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (l *keyLock) Lock(key string) func() {
	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &keyEntry{}
		l.keys[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.keys, key)
		}
		l.mu.Unlock()
	}
}

// active returns the number of keys currently held or waited on.
func (l *keyLock) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
