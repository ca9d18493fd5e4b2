package application

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	apps    map[string]Application
	history map[string]History
}

// NewMemoryRepository builds an in-memory application store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		apps:    make(map[string]Application),
		history: make(map[string]History),
	}
}

func (r *memoryRepository) Create(_ context.Context, a Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID] = a
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) FindByJobAndLaborer(_ context.Context, jobID, laborerID string) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.apps {
		if a.JobID == jobID && a.LaborerID == laborerID {
			return a, nil
		}
	}
	return Application{}, ErrNotFound
}

func (r *memoryRepository) ListByJob(_ context.Context, jobID string) ([]Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	sortApplications(out)
	return out, nil
}

func (r *memoryRepository) ListByLaborer(_ context.Context, laborerID string) ([]Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for _, a := range r.apps {
		if a.LaborerID == laborerID {
			out = append(out, a)
		}
	}
	sortApplications(out)
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, a Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[a.ID]; !ok {
		return ErrNotFound
	}
	r.apps[a.ID] = a
	return nil
}

func (r *memoryRepository) CreateHistory(_ context.Context, h History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[h.ID] = h
	return nil
}

func (r *memoryRepository) UpdateHistory(_ context.Context, h History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.history[h.ID]; !ok {
		return ErrNotFound
	}
	r.history[h.ID] = h
	return nil
}

func (r *memoryRepository) FindHistoryByJobAndWorker(_ context.Context, jobID, workerID string) (History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.history {
		if h.JobID == jobID && h.WorkerID == workerID {
			return h, nil
		}
	}
	return History{}, ErrNotFound
}

func (r *memoryRepository) ListHistoryByWorker(_ context.Context, workerID string) ([]History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []History
	for _, h := range r.history {
		if h.WorkerID == workerID {
			out = append(out, h)
		}
	}
	sortHistory(out)
	return out, nil
}

func (r *memoryRepository) ListHistoryByFarmer(_ context.Context, farmerID string) ([]History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []History
	for _, h := range r.history {
		if h.FarmerID == farmerID {
			out = append(out, h)
		}
	}
	sortHistory(out)
	return out, nil
}

func sortHistory(entries []History) {
	sort.Slice(entries, func(i, k int) bool { return entries[i].CreatedAt.After(entries[k].CreatedAt) })
}

func sortApplications(apps []Application) {
	sort.Slice(apps, func(i, k int) bool { return apps[i].CreatedAt.After(apps[k].CreatedAt) })
}
