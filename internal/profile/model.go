package profile

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no profile row is visible for the key. During
	// post-verification provisioning this is a transient state, not a
	// permanent failure.
	ErrNotFound = errors.New("profile not found")
	// ErrAlreadyExists indicates a profile already exists for the identity.
	ErrAlreadyExists = errors.New("profile already exists")
)

// UserType discriminates the two marketplace roles.
type UserType string

const (
	UserTypeFarmer  UserType = "farmer"
	UserTypeLaborer UserType = "laborer"
)

// DefaultUserType seeds profiles created before the user picks a role.
const DefaultUserType = UserTypeFarmer

// Valid reports whether t names a known role.
func (t UserType) Valid() bool {
	return t == UserTypeFarmer || t == UserTypeLaborer
}

// WorkerStatus tracks a laborer's availability.
type WorkerStatus string

const (
	WorkerAvailable   WorkerStatus = "available"
	WorkerWorking     WorkerStatus = "working"
	WorkerUnavailable WorkerStatus = "unavailable"
)

// Location is a coarse district/state pair.
type Location struct {
	District string `json:"district"`
	State    string `json:"state"`
}

// Availability is a laborer's preferred working window.
type Availability struct {
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	PreferredDuration int       `json:"preferred_duration"`
}

// Profile is the application-level record keyed by identity ID.
type Profile struct {
	ID              string
	Name            string
	Phone           string
	UserType        UserType
	IsPhoneVerified bool
	AvatarURL       string
	Bio             string
	Location        *Location
	Skills          []string
	Availability    *Availability
	Rating          float64
	TotalRatings    int
	CompletedJobs   int
	Status          WorkerStatus
	LastActive      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Update carries partial profile fields; nil members are left untouched.
type Update struct {
	Name         *string
	UserType     *UserType
	AvatarURL    *string
	Bio          *string
	Location     *Location
	Skills       []string
	Availability *Availability
	Status       *WorkerStatus
}

// Apply merges the update into p and stamps UpdatedAt.
func (u Update) Apply(p *Profile, now time.Time) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.UserType != nil {
		p.UserType = *u.UserType
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Location != nil {
		loc := *u.Location
		p.Location = &loc
	}
	if u.Skills != nil {
		p.Skills = append([]string(nil), u.Skills...)
	}
	if u.Availability != nil {
		av := *u.Availability
		p.Availability = &av
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	p.UpdatedAt = now
}
