package schedule

import (
	"sync"

	"github.com/lockin-app/lockin-api/internal/models"
)

// Store owns the two named schedule instances of one logical session: the
// working schedule still collecting answers and the confirmed final one.
// Callers never receive the store's own copies; Load hands out deep clones
// and Save clones on the way in.
type Store struct {
	mu      sync.RWMutex
	working *models.Schedule
	final   *models.Schedule
}

// NewStore returns a store with both instances empty.
func NewStore() *Store {
	return &Store{
		working: models.EmptySchedule(),
		final:   models.EmptySchedule(),
	}
}

// Save overwrites the selected instance wholesale.
func (st *Store) Save(s *models.Schedule, final bool) {
	clone := s.Clone()
	st.mu.Lock()
	defer st.mu.Unlock()
	if final {
		st.final = clone
	} else {
		st.working = clone
	}
}

// Load returns a deep copy of the selected instance. A never-saved instance
// loads as a well-formed empty schedule, never nil.
func (st *Store) Load(final bool) *models.Schedule {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if final {
		return st.final.Clone()
	}
	return st.working.Clone()
}

// Reset clears both instances back to the empty schedule.
func (st *Store) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.working = models.EmptySchedule()
	st.final = models.EmptySchedule()
}
