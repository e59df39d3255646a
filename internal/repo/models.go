package repo

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

// ParseStatus reports whether s names one of the four known statuses.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCanceled, StatusCompleted:
		return st, true
	default:
		return "", false
	}
}

// IsTerminal is true for Completed and Canceled.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Role is the directory role of a user.
type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleClient, RoleProfessional, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// Appointment is a booking between a client and a professional.
type Appointment struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	Notes          string    `json:"notes"`
	Status         Status    `json:"status"`
	ClientID       uuid.UUID `json:"client_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Filled from the user directory on reads; not stored.
	ClientName       string `json:"client_name,omitempty"`
	ProfessionalName string `json:"professional_name,omitempty"`
}

// User is a directory entry.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotBucket truncates t to the storage uniqueness granularity.
func SlotBucket(t time.Time, size time.Duration) time.Time {
	if size <= 0 {
		size = time.Minute
	}
	return t.UTC().Truncate(size)
}
