package store

import (
	"context"
	"sync"
	"time"

	"itinerary-service/models"
)

type entry struct {
	form     models.ItineraryForm
	storedAt time.Time
}

// IntakeStore holds pending checkout form data keyed by Stripe checkout
// session ID until payment is confirmed or the entry ages out.
type IntakeStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewIntakeStore returns a store whose entries are evicted by the janitor
// once they are older than ttl. A zero ttl disables eviction.
func NewIntakeStore(ttl time.Duration) *IntakeStore {
	return &IntakeStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores form data for a checkout session, silently overwriting any
// existing entry for the same session ID.
func (s *IntakeStore) Put(sessionID string, form models.ItineraryForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = entry{form: form, storedAt: s.now()}
}

// Take atomically returns and removes the entry for a session ID. Under
// concurrent calls for the same ID exactly one caller receives the entry;
// the rest see ok == false.
func (s *IntakeStore) Take(sessionID string) (models.ItineraryForm, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return models.ItineraryForm{}, false
	}
	delete(s.entries, sessionID)
	return e.form, true
}

// Len reports the number of pending entries.
func (s *IntakeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Run evicts abandoned entries every interval until ctx is cancelled.
// Checkouts whose payment never arrives would otherwise accumulate for the
// lifetime of the process.
func (s *IntakeStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired(s.now())
		}
	}
}

func (s *IntakeStore) evictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.entries {
		if now.Sub(e.storedAt) > s.ttl {
			delete(s.entries, id)
			evicted++
		}
	}
	return evicted
}
