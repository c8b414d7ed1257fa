package quote

import (
	"context"
	"sync"
	"time"
)

// ConsumeState reports the outcome of an atomic consume attempt.
type ConsumeState int

const (
	// ConsumeNotFound means no quote exists under the key.
	ConsumeNotFound ConsumeState = iota
	// ConsumeExpired means the quote exists but its window has passed.
	// The quote is returned for inspection and LEFT in the store.
	ConsumeExpired
	// Consumed means the quote was valid and has been removed from the
	// store; the caller is now its sole owner.
	Consumed
)

// MemStore is an in-memory keyed quote store. All operations are single
// critical sections over one mutex, which gives finalization its
// check-expiry-then-delete atomicity: two concurrent Consume calls on the
// same valid key cannot both succeed.
//
// There is no automatic eviction by default; expired quotes accumulate until
// deleted or until a sweeper started with StartSweeper removes them.
type MemStore struct {
	mu     sync.Mutex
	quotes map[string]*Quote
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{quotes: make(map[string]*Quote)}
}

// Put stores the quote under its ID, overwriting any previous entry. IDs are
// freshly generated per quote, so overwrites do not happen in normal flow.
func (s *MemStore) Put(q *Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = q
}

// Get returns the quote stored under id, expired or not.
func (s *MemStore) Get(id string) (*Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	return q, ok
}

// Delete removes the quote stored under id, if any.
func (s *MemStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quotes, id)
}

// Clear removes every stored quote. Intended for tests and administrative
// resets, never for request handling.
func (s *MemStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = make(map[string]*Quote)
}

// Len returns the number of stored quotes, including expired ones.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

// Consume atomically resolves the quote under id against now: a valid quote
// is removed and handed to the caller, an expired one is returned but kept
// stored, and a missing key reports ConsumeNotFound. Callers must not hold
// any store lock; the method is its own critical section.
func (s *MemStore) Consume(id string, now time.Time) (*Quote, ConsumeState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return nil, ConsumeNotFound
	}
	if q.Expired(now) {
		return q, ConsumeExpired
	}

	delete(s.quotes, id)
	return q, Consumed
}

// sweep removes every quote expired at now and reports how many went.
func (s *MemStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, q := range s.quotes {
		if q.Expired(now) {
			delete(s.quotes, id)
			removed++
		}
	}
	return removed
}

// StartSweeper launches a background goroutine that periodically evicts
// expired quotes. It stops when ctx is cancelled. Without it, orphaned
// quotes are retained indefinitely.
func (s *MemStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.sweep(now)
			}
		}
	}()
}
