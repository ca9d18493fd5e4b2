package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists applications and worker history.
type Repository interface {
	Create(ctx context.Context, a Application) error
	Get(ctx context.Context, id string) (Application, error)
	FindByJobAndLaborer(ctx context.Context, jobID, laborerID string) (Application, error)
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	ListByLaborer(ctx context.Context, laborerID string) ([]Application, error)
	Update(ctx context.Context, a Application) error

	CreateHistory(ctx context.Context, h History) error
	UpdateHistory(ctx context.Context, h History) error
	FindHistoryByJobAndWorker(ctx context.Context, jobID, workerID string) (History, error)
	ListHistoryByWorker(ctx context.Context, workerID string) ([]History, error)
	ListHistoryByFarmer(ctx context.Context, farmerID string) ([]History, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed application repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const applicationColumns = `id, job_id, laborer_id, status, cover_note, negotiated_wage,
    rejection_reason, completed_at, created_at, updated_at`

// Create inserts an application row.
func (r *PostgresRepository) Create(ctx context.Context, a Application) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	jobID, err := uuid.Parse(a.JobID)
	if err != nil {
		return err
	}
	laborerID, err := uuid.Parse(a.LaborerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO job_applications (`+applicationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, jobID, laborerID, string(a.Status), a.CoverNote, a.NegotiatedWage,
		a.RejectionReason, a.CompletedAt, a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	return err
}

// Get fetches an application by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Application, error) {
	appID, err := uuid.Parse(id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE id = $1`, appID)
	return scanApplication(row)
}

// FindByJobAndLaborer fetches the laborer's application to a job.
func (r *PostgresRepository) FindByJobAndLaborer(ctx context.Context, jobID, laborerID string) (Application, error) {
	jid, err := uuid.Parse(jobID)
	if err != nil {
		return Application{}, ErrNotFound
	}
	lid, err := uuid.Parse(laborerID)
	if err != nil {
		return Application{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications
        WHERE job_id = $1 AND laborer_id = $2`, jid, lid)
	return scanApplication(row)
}

// ListByJob returns applications for a job, newest first.
func (r *PostgresRepository) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	jid, err := uuid.Parse(jobID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT `+applicationColumns+` FROM job_applications
        WHERE job_id = $1 ORDER BY created_at DESC`, jid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// ListByLaborer returns the laborer's applications, newest first.
func (r *PostgresRepository) ListByLaborer(ctx context.Context, laborerID string) ([]Application, error) {
	lid, err := uuid.Parse(laborerID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT `+applicationColumns+` FROM job_applications
        WHERE laborer_id = $1 ORDER BY created_at DESC`, lid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectApplications(rows)
}

// Update rewrites the mutable columns of an application row.
func (r *PostgresRepository) Update(ctx context.Context, a Application) error {
	appID, err := uuid.Parse(a.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE job_applications SET status = $1, negotiated_wage = $2,
        rejection_reason = $3, completed_at = $4, updated_at = $5 WHERE id = $6`,
		string(a.Status), a.NegotiatedWage, a.RejectionReason, a.CompletedAt, a.UpdatedAt.UTC(), appID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const historyColumns = `id, worker_id, farmer_id, job_id, start_date, end_date, wage_per_day,
    total_days, total_earnings, status, created_at, updated_at`

// CreateHistory inserts a worker-history row.
func (r *PostgresRepository) CreateHistory(ctx context.Context, h History) error {
	id, err := uuid.Parse(h.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO worker_history (`+historyColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, h.WorkerID, h.FarmerID, h.JobID, h.StartDate.UTC(), h.EndDate, h.WagePerDay,
		h.TotalDays, h.TotalEarnings, string(h.Status), h.CreatedAt.UTC(), h.UpdatedAt.UTC())
	return err
}

// UpdateHistory rewrites the mutable columns of a history row.
func (r *PostgresRepository) UpdateHistory(ctx context.Context, h History) error {
	id, err := uuid.Parse(h.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE worker_history SET end_date = $1, total_days = $2,
        total_earnings = $3, status = $4, updated_at = $5 WHERE id = $6`,
		h.EndDate, h.TotalDays, h.TotalEarnings, string(h.Status), h.UpdatedAt.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindHistoryByJobAndWorker fetches the engagement row for a job and worker.
func (r *PostgresRepository) FindHistoryByJobAndWorker(ctx context.Context, jobID, workerID string) (History, error) {
	row := r.db.QueryRow(ctx, `SELECT `+historyColumns+` FROM worker_history
        WHERE job_id = $1 AND worker_id = $2`, jobID, workerID)
	return scanHistory(row)
}

// ListHistoryByWorker returns the worker's engagements, newest first.
func (r *PostgresRepository) ListHistoryByWorker(ctx context.Context, workerID string) ([]History, error) {
	rows, err := r.db.Query(ctx, `SELECT `+historyColumns+` FROM worker_history
        WHERE worker_id = $1 ORDER BY created_at DESC`, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHistory(rows)
}

// ListHistoryByFarmer returns every engagement the farmer has opened, newest
// first.
func (r *PostgresRepository) ListHistoryByFarmer(ctx context.Context, farmerID string) ([]History, error) {
	rows, err := r.db.Query(ctx, `SELECT `+historyColumns+` FROM worker_history
        WHERE farmer_id = $1 ORDER BY created_at DESC`, farmerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHistory(rows)
}

func scanApplication(row pgx.Row) (Application, error) {
	var (
		id        uuid.UUID
		jobID     uuid.UUID
		laborerID uuid.UUID
		status    string
		a         Application
	)
	err := row.Scan(&id, &jobID, &laborerID, &status, &a.CoverNote, &a.NegotiatedWage,
		&a.RejectionReason, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	a.ID = id.String()
	a.JobID = jobID.String()
	a.LaborerID = laborerID.String()
	a.Status = Status(status)
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

func scanHistory(row pgx.Row) (History, error) {
	var (
		id     uuid.UUID
		status string
		h      History
	)
	err := row.Scan(&id, &h.WorkerID, &h.FarmerID, &h.JobID, &h.StartDate, &h.EndDate,
		&h.WagePerDay, &h.TotalDays, &h.TotalEarnings, &status, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return History{}, ErrNotFound
		}
		return History{}, err
	}
	h.ID = id.String()
	h.Status = Status(status)
	h.StartDate = h.StartDate.UTC()
	h.CreatedAt = h.CreatedAt.UTC()
	h.UpdatedAt = h.UpdatedAt.UTC()
	return h, nil
}

func collectHistory(rows pgx.Rows) ([]History, error) {
	var out []History
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func collectApplications(rows pgx.Rows) ([]Application, error) {
	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
