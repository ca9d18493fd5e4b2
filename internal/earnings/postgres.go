package earnings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger implements Ledger using PostgreSQL.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger builds a Postgres-backed earnings ledger.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Record inserts an earnings entry.
func (l *PostgresLedger) Record(ctx context.Context, entry Entry) error {
	id, err := uuid.Parse(entry.ID)
	if err != nil {
		return err
	}
	workerID, err := uuid.Parse(entry.WorkerID)
	if err != nil {
		return err
	}
	jobID, err := uuid.Parse(entry.JobID)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(ctx, `INSERT INTO earnings (id, worker_id, job_id, amount, earned_at)
        VALUES ($1, $2, $3, $4, $5)`, id, workerID, jobID, entry.Amount, entry.EarnedAt.UTC())
	return err
}

// Total sums the worker's recorded earnings.
func (l *PostgresLedger) Total(ctx context.Context, workerID string) (int64, error) {
	wid, err := uuid.Parse(workerID)
	if err != nil {
		return 0, ErrNotFound
	}
	var total int64
	row := l.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM earnings WHERE worker_id = $1`, wid)
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Entries lists the worker's earnings, newest first.
func (l *PostgresLedger) Entries(ctx context.Context, workerID string) ([]Entry, error) {
	wid, err := uuid.Parse(workerID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := l.db.Query(ctx, `SELECT id, worker_id, job_id, amount, earned_at
        FROM earnings WHERE worker_id = $1 ORDER BY earned_at DESC`, wid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			id       uuid.UUID
			worker   uuid.UUID
			jobID    uuid.UUID
			earnedAt time.Time
			entry    Entry
		)
		if err := rows.Scan(&id, &worker, &jobID, &entry.Amount, &earnedAt); err != nil {
			return nil, err
		}
		entry.ID = id.String()
		entry.WorkerID = worker.String()
		entry.JobID = jobID.String()
		entry.EarnedAt = earnedAt.UTC()
		out = append(out, entry)
	}
	return out, rows.Err()
}
