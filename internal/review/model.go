package review

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no review exists for the key.
	ErrNotFound = errors.New("review not found")
	// ErrAlreadyReviewed indicates the reviewer already reviewed this job.
	ErrAlreadyReviewed = errors.New("job already reviewed")
	// ErrInvalidRating indicates a rating outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

// Review is feedback left after a completed job, in either direction.
type Review struct {
	ID         string
	ReviewerID string
	RevieweeID string
	JobID      string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}
