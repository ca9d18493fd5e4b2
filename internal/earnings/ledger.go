package earnings

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no ledger entry exists for the key.
var ErrNotFound = errors.New("earnings entry not found")

// Entry records wages earned by a worker for a completed job. Amounts are in
// the smallest currency unit.
type Entry struct {
	ID       string    `json:"id"`
	WorkerID string    `json:"worker_id"`
	JobID    string    `json:"job_id"`
	Amount   int64     `json:"amount"`
	EarnedAt time.Time `json:"earned_at"`
}

// Ledger tracks worker earnings.
type Ledger interface {
	Record(ctx context.Context, entry Entry) error
	Total(ctx context.Context, workerID string) (int64, error)
	Entries(ctx context.Context, workerID string) ([]Entry, error)
}
