package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists jobs.
type Repository interface {
	Create(ctx context.Context, j Job) error
	Get(ctx context.Context, id string) (Job, error)
	ListByFarmer(ctx context.Context, farmerID string, status Status) ([]Job, error)
	// ListOpen returns active jobs still accepting applications.
	ListOpen(ctx context.Context) ([]Job, error)
	Update(ctx context.Context, j Job) error
	IncrementApplications(ctx context.Context, id string) error
	IncrementHired(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed job repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const jobColumns = `id, farmer_id, title, description, category, location, wage_per_day,
    workers_needed, start_date, end_date, skills_required, status,
    applications_count, hired_count, created_at, updated_at`

// Create inserts a job row.
func (r *PostgresRepository) Create(ctx context.Context, j Job) error {
	id, err := uuid.Parse(j.ID)
	if err != nil {
		return err
	}
	farmerID, err := uuid.Parse(j.FarmerID)
	if err != nil {
		return err
	}
	location, err := json.Marshal(j.Location)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO jobs (`+jobColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		id, farmerID, j.Title, j.Description, j.Category, location, j.WagePerDay,
		j.WorkersNeeded, j.StartDate.UTC(), j.EndDate.UTC(), j.SkillsRequired, string(j.Status),
		j.ApplicationsCount, j.HiredCount, j.CreatedAt.UTC(), j.UpdatedAt.UTC())
	return err
}

// Get fetches a job by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return Job{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, jobID)
	return scanJob(row)
}

// ListByFarmer returns the farmer's jobs, optionally filtered by status.
func (r *PostgresRepository) ListByFarmer(ctx context.Context, farmerID string, status Status) ([]Job, error) {
	fid, err := uuid.Parse(farmerID)
	if err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE farmer_id = $1`
	args := []any{fid}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

// ListOpen returns active jobs with hiring capacity, newest first.
func (r *PostgresRepository) ListOpen(ctx context.Context) ([]Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs
        WHERE status = $1 AND hired_count < workers_needed ORDER BY created_at DESC`, string(StatusActive))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

// Update rewrites the mutable columns of a job row.
func (r *PostgresRepository) Update(ctx context.Context, j Job) error {
	jobID, err := uuid.Parse(j.ID)
	if err != nil {
		return ErrNotFound
	}
	location, err := json.Marshal(j.Location)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE jobs SET title = $1, description = $2, category = $3,
        location = $4, wage_per_day = $5, workers_needed = $6, start_date = $7, end_date = $8,
        skills_required = $9, status = $10, updated_at = $11 WHERE id = $12`,
		j.Title, j.Description, j.Category, location, j.WagePerDay, j.WorkersNeeded,
		j.StartDate.UTC(), j.EndDate.UTC(), j.SkillsRequired, string(j.Status), j.UpdatedAt.UTC(), jobID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementApplications bumps the applications counter.
func (r *PostgresRepository) IncrementApplications(ctx context.Context, id string) error {
	return r.increment(ctx, id, `applications_count`)
}

// IncrementHired bumps the hired counter.
func (r *PostgresRepository) IncrementHired(ctx context.Context, id string) error {
	return r.increment(ctx, id, `hired_count`)
}

func (r *PostgresRepository) increment(ctx context.Context, id, column string) error {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE jobs SET `+column+` = `+column+` + 1, updated_at = NOW() WHERE id = $1`, jobID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (Job, error) {
	var (
		id       uuid.UUID
		farmerID uuid.UUID
		status   string
		location []byte
		j        Job
	)
	err := row.Scan(&id, &farmerID, &j.Title, &j.Description, &j.Category, &location, &j.WagePerDay,
		&j.WorkersNeeded, &j.StartDate, &j.EndDate, &j.SkillsRequired, &status,
		&j.ApplicationsCount, &j.HiredCount, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	j.ID = id.String()
	j.FarmerID = farmerID.String()
	j.Status = Status(status)
	if len(location) > 0 {
		if err := json.Unmarshal(location, &j.Location); err != nil {
			return Job{}, err
		}
	}
	for _, ts := range []*time.Time{&j.StartDate, &j.EndDate, &j.CreatedAt, &j.UpdatedAt} {
		*ts = ts.UTC()
	}
	return j, nil
}

func collectJobs(rows pgx.Rows) ([]Job, error) {
	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
