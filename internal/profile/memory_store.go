package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory profile store for testing. Rows can be seeded
// with a visibility lag to model the provisioning gap a freshly-verified
// identity observes against the real backend.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
	// lag counts reads that must fail before a row becomes visible.
	lag map[string]int
}

// NewMemoryStore builds an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		lag:      make(map[string]int),
	}
}

// SeedLagged inserts a profile that stays invisible for the next `reads`
// lookups of it, by ID or phone.
func (s *MemoryStore) SeedLagged(p Profile, reads int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
	if reads > 0 {
		s.lag[p.ID] = reads
	}
}

// Insert adds a profile, immediately visible.
func (s *MemoryStore) Insert(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[p.ID]; exists {
		return ErrAlreadyExists
	}
	s.profiles[p.ID] = p
	return nil
}

// Get fetches a profile by ID, honoring any seeded visibility lag.
func (s *MemoryStore) Get(_ context.Context, id string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok || s.consumeLag(id) {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// ExistsByPhone checks for a profile by phone, honoring any visibility lag.
func (s *MemoryStore) ExistsByPhone(_ context.Context, phone string) (bool, *Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.profiles {
		if p.Phone == phone {
			if s.consumeLag(id) {
				return false, nil, nil
			}
			copied := p
			return true, &copied, nil
		}
	}
	return false, nil, nil
}

// Update applies partial fields.
func (s *MemoryStore) Update(_ context.Context, id string, updates Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	updates.Apply(&p, time.Now().UTC())
	s.profiles[id] = p
	return nil
}

// AddRating folds a rating into the running aggregate.
func (s *MemoryStore) AddRating(_ context.Context, id string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.Rating = (p.Rating*float64(p.TotalRatings) + float64(rating)) / float64(p.TotalRatings+1)
	p.TotalRatings++
	s.profiles[id] = p
	return nil
}

// MarkJobCompleted increments the completed-jobs counter.
func (s *MemoryStore) MarkJobCompleted(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.CompletedJobs++
	s.profiles[id] = p
	return nil
}

// consumeLag reports whether the row is still hidden, decrementing the
// remaining lag. Caller must hold the mutex.
func (s *MemoryStore) consumeLag(id string) bool {
	remaining, lagged := s.lag[id]
	if !lagged {
		return false
	}
	if remaining <= 1 {
		delete(s.lag, id)
	} else {
		s.lag[id] = remaining - 1
	}
	return true
}
