package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter narrows FindAppointments. Nil fields are ignored.
type AppointmentFilter struct {
	ClientID       *uuid.UUID
	ProfessionalID *uuid.UUID
	Status         *Status
	Limit          int
	Offset         int
}

// ConflictQuery selects active appointments of one professional whose
// scheduled time lies in the closed range [From, To].
type ConflictQuery struct {
	ProfessionalID uuid.UUID
	From           time.Time
	To             time.Time
	ExcludeID      *uuid.UUID
}

type AppointmentStore interface {
	FindAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindAppointments(ctx context.Context, f AppointmentFilter) ([]*Appointment, error)
	// FindConflicting returns the first match, or nil when the range is free.
	FindConflicting(ctx context.Context, q ConflictQuery) (*Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) error
	// SaveAppointment persists title, schedule, notes and professional of an
	// appointment that is still pending or confirmed.
	SaveAppointment(ctx context.Context, a *Appointment) error
	// TransitionStatus moves the appointment from one status to another and
	// fails with ErrStaleState when the stored status is no longer from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (time.Time, error)
	// WithProfessionalLock runs fn in one transaction that holds an exclusive
	// lock per professional id until commit.
	WithProfessionalLock(ctx context.Context, professionalIDs []uuid.UUID, fn func(ctx context.Context, store AppointmentStore) error) error
}

type UserDirectory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*User, error)
	FindUsersByRole(ctx context.Context, role Role) ([]*User, error)
}

type UserStore interface {
	UserDirectory
	CreateUser(ctx context.Context, u *User) error
}
