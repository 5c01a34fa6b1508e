package saga

import (
	"maps"
	"sync"
)

// Store holds one record per order id for the lifetime of the process.
// Read-modify-write sequences on a key run inside WithKey; different keys
// only share the brief map locks.
type Store[R any] struct {
	mu      sync.RWMutex
	records map[string]R

	locksMu sync.Mutex
	locks   map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewStore creates an empty store.
func NewStore[R any]() *Store[R] {
	return &Store[R]{
		records: make(map[string]R),
		locks:   make(map[string]*keyLock),
	}
}

// KeyTx gives access to a single key while its lock is held. It must not be
// retained after the WithKey callback returns.
type KeyTx[R any] struct {
	store *Store[R]
	key   string
}

// Get returns the record for the locked key.
func (tx *KeyTx[R]) Get() (R, bool) {
	return tx.store.Get(tx.key)
}

// Put stores rec under the locked key.
func (tx *KeyTx[R]) Put(rec R) {
	tx.store.mu.Lock()
	tx.store.records[tx.key] = rec
	tx.store.mu.Unlock()
}

// Delete removes the record for the locked key.
func (tx *KeyTx[R]) Delete() {
	tx.store.mu.Lock()
	delete(tx.store.records, tx.key)
	tx.store.mu.Unlock()
}

// WithKey runs fn while holding the lock for key.
func (s *Store[R]) WithKey(key string, fn func(tx *KeyTx[R]) error) error {
	l := s.acquire(key)
	defer s.release(key, l)
	return fn(&KeyTx[R]{store: s, key: key})
}

func (s *Store[R]) acquire(key string) *keyLock {
	s.locksMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return l
}

func (s *Store[R]) release(key string, l *keyLock) {
	l.mu.Unlock()

	s.locksMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
	s.locksMu.Unlock()
}

// Get returns the record for key without taking the key lock.
func (s *Store[R]) Get(key string) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Len returns the number of records.
func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of all records.
func (s *Store[R]) Snapshot() map[string]R {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.records)
}

// lockCount reports live key locks. Used by tests to check locks are released.
func (s *Store[R]) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}
