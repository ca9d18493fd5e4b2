package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	ListForUser(ctx context.Context, revieweeID string) ([]*Review, error)
	FindByReviewerAndJob(ctx context.Context, reviewerID, jobID string) (*Review, error)
}

const reviewColumns = "id, reviewer_id, reviewee_id, job_id, rating, comment, created_at"

// PostgresRepository stores reviews in the reviews table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, rev *Review) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO reviews (id, reviewer_id, reviewee_id, job_id, rating, comment, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, rev.ID, rev.ReviewerID, rev.RevieweeID, rev.JobID, rev.Rating, rev.Comment, rev.CreatedAt)
	return err
}

func (r *PostgresRepository) ListForUser(ctx context.Context, revieweeID string) ([]*Review, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+reviewColumns+`
        FROM reviews
        WHERE reviewee_id = $1
        ORDER BY created_at DESC
    `, revieweeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (r *PostgresRepository) FindByReviewerAndJob(ctx context.Context, reviewerID, jobID string) (*Review, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+reviewColumns+`
        FROM reviews
        WHERE reviewer_id = $1 AND job_id = $2
    `, reviewerID, jobID)
	rev, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rev, nil
}

func scanReview(row pgx.Row) (*Review, error) {
	var rev Review
	if err := row.Scan(&rev.ID, &rev.ReviewerID, &rev.RevieweeID, &rev.JobID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
		return nil, err
	}
	return &rev, nil
}
