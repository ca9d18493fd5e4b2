package earnings

import (
	"context"
	"sync"
)

type inMemoryLedger struct {
	mu      sync.Mutex
	entries map[string][]Entry
	totals  map[string]int64
}

// NewInMemory builds an in-memory earnings ledger for testing and dev mode.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		entries: make(map[string][]Entry),
		totals:  make(map[string]int64),
	}
}

func (l *inMemoryLedger) Record(_ context.Context, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[entry.WorkerID] = append(l.entries[entry.WorkerID], entry)
	l.totals[entry.WorkerID] += entry.Amount
	return nil
}

func (l *inMemoryLedger) Total(_ context.Context, workerID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[workerID], nil
}

func (l *inMemoryLedger) Entries(_ context.Context, workerID string) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries[workerID]))
	copy(out, l.entries[workerID])
	return out, nil
}
