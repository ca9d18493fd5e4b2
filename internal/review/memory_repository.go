package review

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory Repository for tests and dev mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	reviews []*Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(_ context.Context, r *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reviews = append(m.reviews, &cp)
	return nil
}

func (m *MemoryRepository) ListForUser(_ context.Context, revieweeID string) ([]*Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Review
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].RevieweeID == revieweeID {
			cp := *m.reviews[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepository) FindByReviewerAndJob(_ context.Context, reviewerID, jobID string) (*Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reviews {
		if r.ReviewerID == reviewerID && r.JobID == jobID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
