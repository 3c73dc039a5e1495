package store

import (
	"sync"
	"testing"
	"time"

	"itinerary-service/models"

	"github.com/stretchr/testify/assert"
)

func parisForm() models.ItineraryForm {
	return models.ItineraryForm{
		City:      "Paris",
		Date:      "2025-06-01",
		Start:     "09:00",
		End:       "11:00",
		Interests: []string{"Food"},
		Email:     "a@b.com",
	}
}

func TestPutTake(t *testing.T) {
	s := NewIntakeStore(0)
	s.Put("cs_1", parisForm())

	form, ok := s.Take("cs_1")
	assert.True(t, ok)
	assert.Equal(t, "Paris", form.City)
	assert.Equal(t, "a@b.com", form.Email)

	_, ok = s.Take("cs_1")
	assert.False(t, ok, "second take for the same session must not succeed")
}

func TestTakeUnknownSession(t *testing.T) {
	s := NewIntakeStore(0)
	_, ok := s.Take("cs_missing")
	assert.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	s := NewIntakeStore(0)
	s.Put("cs_1", parisForm())

	updated := parisForm()
	updated.City = "Lyon"
	s.Put("cs_1", updated)

	form, ok := s.Take("cs_1")
	assert.True(t, ok)
	assert.Equal(t, "Lyon", form.City)
	assert.Equal(t, 0, s.Len())
}

// A checkout whose payment never arrives stays pending; nothing consumes it.
func TestEntryStaysUntilTaken(t *testing.T) {
	s := NewIntakeStore(0)
	s.Put("cs_1", parisForm())
	assert.Equal(t, 1, s.Len())
}

func TestConcurrentTakeExactlyOnce(t *testing.T) {
	s := NewIntakeStore(0)
	s.Put("cs_race", parisForm())

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Take("cs_race"); ok {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one concurrent take may succeed")
}

func TestEvictExpired(t *testing.T) {
	s := NewIntakeStore(time.Minute)
	s.Put("cs_old", parisForm())
	s.Put("cs_new", parisForm())

	// Age only cs_old past the TTL.
	s.mu.Lock()
	e := s.entries["cs_old"]
	e.storedAt = e.storedAt.Add(-2 * time.Minute)
	s.entries["cs_old"] = e
	s.mu.Unlock()

	evicted := s.evictExpired(time.Now())
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Take("cs_new")
	assert.True(t, ok)
}

func TestJanitorDisabledWithoutTTL(t *testing.T) {
	s := NewIntakeStore(0)
	done := make(chan struct{})
	go func() {
		s.Run(t.Context(), time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor should return immediately when TTL is disabled")
	}
}
