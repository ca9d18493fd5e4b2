package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists profiles.
type Store interface {
	Insert(ctx context.Context, p Profile) error
	Get(ctx context.Context, id string) (Profile, error)
	// ExistsByPhone reports whether a profile row is visible for the phone
	// and returns its data when it is.
	ExistsByPhone(ctx context.Context, phone string) (bool, *Profile, error)
	Update(ctx context.Context, id string, updates Update) error
	// AddRating folds a new 1-5 rating into the running aggregate.
	AddRating(ctx context.Context, id string, rating int) error
	// MarkJobCompleted increments the completed-jobs counter.
	MarkJobCompleted(ctx context.Context, id string) error
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed profile store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `id, name, phone, user_type, is_phone_verified, avatar_url, bio,
    location, skills, availability, rating, total_ratings, completed_jobs, status,
    last_active, created_at, updated_at`

// Insert adds a new profile row.
func (s *PostgresStore) Insert(ctx context.Context, p Profile) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return err
	}
	location, err := marshalNullable(p.Location)
	if err != nil {
		return err
	}
	availability, err := marshalNullable(p.Availability)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO profiles (`+profileColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		id, p.Name, p.Phone, string(p.UserType), p.IsPhoneVerified, p.AvatarURL, p.Bio,
		location, p.Skills, availability, p.Rating, p.TotalRatings, p.CompletedJobs,
		string(p.Status), p.LastActive.UTC(), p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// Get fetches a profile by identity ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (Profile, error) {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return Profile{}, ErrNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, profileID)
	return scanProfile(row)
}

// ExistsByPhone checks for a profile row keyed by phone number.
func (s *PostgresStore) ExistsByPhone(ctx context.Context, phone string) (bool, *Profile, error) {
	row := s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE phone = $1`, phone)
	p, err := scanProfile(row)
	if errors.Is(err, ErrNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, &p, nil
}

// Update applies partial fields by read-modify-write inside a transaction.
func (s *PostgresStore) Update(ctx context.Context, id string, updates Update) error {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, profileID)
	p, err := scanProfile(row)
	if err != nil {
		return err
	}

	updates.Apply(&p, time.Now().UTC())

	location, err := marshalNullable(p.Location)
	if err != nil {
		return err
	}
	availability, err := marshalNullable(p.Availability)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE profiles SET name = $1, user_type = $2, avatar_url = $3, bio = $4,
        location = $5, skills = $6, availability = $7, status = $8, updated_at = $9 WHERE id = $10`,
		p.Name, string(p.UserType), p.AvatarURL, p.Bio, location, p.Skills, availability,
		string(p.Status), p.UpdatedAt, profileID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AddRating updates the running rating average in a single statement.
func (s *PostgresStore) AddRating(ctx context.Context, id string, rating int) error {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE profiles
        SET rating = (rating * total_ratings + $1) / (total_ratings + 1),
            total_ratings = total_ratings + 1,
            updated_at = NOW()
        WHERE id = $2`, rating, profileID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkJobCompleted increments the completed-jobs counter.
func (s *PostgresStore) MarkJobCompleted(ctx context.Context, id string) error {
	profileID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := s.db.Exec(ctx, `UPDATE profiles SET completed_jobs = completed_jobs + 1, updated_at = NOW() WHERE id = $1`, profileID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		id           uuid.UUID
		userType     string
		status       string
		location     []byte
		availability []byte
		p            Profile
	)
	err := row.Scan(&id, &p.Name, &p.Phone, &userType, &p.IsPhoneVerified, &p.AvatarURL, &p.Bio,
		&location, &p.Skills, &availability, &p.Rating, &p.TotalRatings, &p.CompletedJobs,
		&status, &p.LastActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	p.ID = id.String()
	p.UserType = UserType(userType)
	p.Status = WorkerStatus(status)
	if len(location) > 0 {
		p.Location = new(Location)
		if err := json.Unmarshal(location, p.Location); err != nil {
			return Profile{}, err
		}
	}
	if len(availability) > 0 {
		p.Availability = new(Availability)
		if err := json.Unmarshal(availability, p.Availability); err != nil {
			return Profile{}, err
		}
	}
	p.LastActive = p.LastActive.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch val := v.(type) {
	case *Location:
		if val == nil {
			return nil, nil
		}
	case *Availability:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
