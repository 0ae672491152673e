// Package cache holds the in-process pending order store.
//
// The store must live in process memory: the callback handler mutates the
// cached *order.Order in place, and that shared ownership between the store
// and the gateway facade is what makes the commit check-and-set work on a
// single object. An external cache would break that contract.
package cache

import (
	"sync"
	"time"

	"paybridge/internal/domain/order"
)

// DefaultPendingOrderTTL bounds how long an order may wait for its callback.
const DefaultPendingOrderTTL = 10 * time.Minute

const janitorInterval = time.Minute

type pendingEntry struct {
	order     *order.Order
	expiresAt time.Time
}

// PendingOrderStore maps merchant trade numbers to pending orders with a
// fixed TTL from insertion. An expired entry is indistinguishable from one
// that never existed.
type PendingOrderStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]pendingEntry

	stopOnce sync.Once
	stop     chan struct{}
}

// NewPendingOrderStore creates a store whose entries expire ttl after
// insertion. A non-positive ttl falls back to DefaultPendingOrderTTL.
// A background janitor purges expired entries so abandoned orders do not
// accumulate; Close stops it.
func NewPendingOrderStore(ttl time.Duration) *PendingOrderStore {
	if ttl <= 0 {
		ttl = DefaultPendingOrderTTL
	}

	s := &PendingOrderStore{
		ttl:     ttl,
		entries: make(map[string]pendingEntry),
		stop:    make(chan struct{}),
	}

	go s.janitor()

	return s
}

// Set stores an order under its merchant trade number, restarting the TTL.
func (s *PendingOrderStore) Set(id string, o *order.Order) {
	s.mu.Lock()
	s.entries[id] = pendingEntry{
		order:     o,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
}

// Get returns the pending order for id. Expired and unknown ids both miss.
func (s *PendingOrderStore) Get(id string) (*order.Order, bool) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; the entry may have been replaced.
		if current, stillThere := s.entries[id]; stillThere && time.Now().After(current.expiresAt) {
			delete(s.entries, id)
		}
		s.mu.Unlock()
		return nil, false
	}

	return entry.order, true
}

// Len reports the number of live entries, for diagnostics.
func (s *PendingOrderStore) Len() int {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entry := range s.entries {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}

// Close stops the background janitor. Safe to call more than once.
func (s *PendingOrderStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *PendingOrderStore) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, entry := range s.entries {
				if now.After(entry.expiresAt) {
					delete(s.entries, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
