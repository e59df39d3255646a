package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/config"
	"github.com/ridhamz/AppointmentEase/internal/repo"
)

// Window is the tolerance band around a candidate instant. An existing
// appointment at s conflicts with candidate t when t-Before <= s <= t+After.
type Window struct {
	Before time.Duration
	After  time.Duration
}

func DefaultWindow() Window {
	return Window{Before: time.Minute, After: 2 * time.Minute}
}

func WindowFromConfig(c config.BookingConfig) Window {
	return Window{Before: c.WindowBefore, After: c.WindowAfter}
}

// Bounds derives the window start and end from the candidate without touching it.
func (w Window) Bounds(candidate time.Time) (start, end time.Time) {
	return candidate.Add(-w.Before), candidate.Add(w.After)
}

// Contains reports whether scheduledAt lies inside the window around candidate.
func (w Window) Contains(candidate, scheduledAt time.Time) bool {
	start, end := w.Bounds(candidate)
	return !scheduledAt.Before(start) && !scheduledAt.After(end)
}

// Detector decides whether a candidate booking collides with an existing one.
type Detector struct {
	window Window
}

func NewDetector(w Window) *Detector {
	return &Detector{window: w}
}

func (d *Detector) Window() Window { return d.window }

// Find returns the first active appointment of the professional inside the
// window around candidate, or nil. exclude, when set, is ignored.
func (d *Detector) Find(ctx context.Context, store repo.AppointmentStore, professionalID uuid.UUID, candidate time.Time, exclude *uuid.UUID) (*repo.Appointment, error) {
	start, end := d.window.Bounds(candidate)

	hit, err := store.FindConflicting(ctx, repo.ConflictQuery{
		ProfessionalID: professionalID,
		From:           start,
		To:             end,
		ExcludeID:      exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("conflict lookup: %w", err)
	}
	return hit, nil
}

// HasConflict is Find reduced to a yes/no answer.
func (d *Detector) HasConflict(ctx context.Context, store repo.AppointmentStore, professionalID uuid.UUID, candidate time.Time, exclude *uuid.UUID) (bool, error) {
	hit, err := d.Find(ctx, store, professionalID, candidate, exclude)
	if err != nil {
		return false, err
	}
	return hit != nil, nil
}
