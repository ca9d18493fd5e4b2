package job

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryRepository builds an in-memory job store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{jobs: make(map[string]Job)}
}

func (r *memoryRepository) Create(_ context.Context, j Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return j, nil
}

func (r *memoryRepository) ListByFarmer(_ context.Context, farmerID string, status Status) ([]Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Job
	for _, j := range r.jobs {
		if j.FarmerID != farmerID {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, j)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) ListOpen(_ context.Context) ([]Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Job
	for _, j := range r.jobs {
		if j.Open() {
			out = append(out, j)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, j Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[j.ID]; !ok {
		return ErrNotFound
	}
	r.jobs[j.ID] = j
	return nil
}

func (r *memoryRepository) IncrementApplications(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.ApplicationsCount++
	r.jobs[id] = j
	return nil
}

func (r *memoryRepository) IncrementHired(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.HiredCount++
	r.jobs[id] = j
	return nil
}

func sortNewestFirst(jobs []Job) {
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
}
