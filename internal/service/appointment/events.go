package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/pkg/constants"
)

// Event names the lifecycle change an appointment went through.
type Event string

const (
	EventCreated   Event = "created"
	EventUpdated   Event = "updated"
	EventConfirmed Event = "confirmed"
	EventCompleted Event = "completed"
	EventCanceled  Event = "canceled"
)

// eventForStatus maps the status an appointment just entered to its event.
func eventForStatus(s repo.Status) Event {
	switch s {
	case repo.StatusConfirmed:
		return EventConfirmed
	case repo.StatusCompleted:
		return EventCompleted
	case repo.StatusCanceled:
		return EventCanceled
	default:
		return EventUpdated
	}
}

// Subject builds the NATS subject for an appointment event.
func Subject(ev Event, a *repo.Appointment) string {
	return fmt.Sprintf("%s.%s.%s", constants.EventSubjectPrefix, ev, a.ID)
}

// Publisher delivers appointment events. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event, a *repo.Appointment) error
}

type natsPublisher struct {
	nc *nats.Conn
}

// NewNatsPublisher publishes on nc. A nil connection yields a publisher that
// drops every event.
func NewNatsPublisher(nc *nats.Conn) Publisher {
	return &natsPublisher{nc: nc}
}

func (p *natsPublisher) Publish(ctx context.Context, ev Event, a *repo.Appointment) error {
	if p.nc == nil {
		return nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal appointment event: %w", err)
	}
	if err := p.nc.Publish(Subject(ev, a), payload); err != nil {
		return fmt.Errorf("publish %s: %w", ev, err)
	}
	slog.DebugContext(ctx, "appointment event published", "event", ev, "appointment_id", a.ID)
	return nil
}
