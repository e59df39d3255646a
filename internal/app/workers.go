package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/internal/service/appointment"
	"github.com/ridhamz/AppointmentEase/pkg/constants"
	"github.com/ridhamz/AppointmentEase/pkg/observability"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc   fx.Lifecycle
	NC   *nats.Conn
	OTel *observability.Provider `optional:"true"`
}

func RegisterWorkers(p WorkerParams) {
	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = startAuditWorker(p.NC)
			return err
		},
		OnStop: func(ctx context.Context) error {
			// Drain of the connection is handled by ProvideNatsClient
			if sub != nil {
				return sub.Unsubscribe()
			}
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

// eventMessage is one received appointment event.
type eventMessage struct {
	Event         appointment.Event
	AppointmentID uuid.UUID
	Appointment   repo.Appointment
}

// parseEventMessage splits <prefix>.<event>.<id> and decodes the payload.
func parseEventMessage(subject string, data []byte) (eventMessage, bool) {
	rest, found := strings.CutPrefix(subject, constants.EventSubjectPrefix+".")
	if !found {
		return eventMessage{}, false
	}
	ev, rawID, found := strings.Cut(rest, ".")
	if !found {
		return eventMessage{}, false
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return eventMessage{}, false
	}

	msg := eventMessage{Event: appointment.Event(ev), AppointmentID: id}
	if err := json.Unmarshal(data, &msg.Appointment); err != nil {
		return eventMessage{}, false
	}
	return msg, true
}

// startAuditWorker records every appointment event in the log and counts it.
func startAuditWorker(nc *nats.Conn) (*nats.Subscription, error) {
	received, _ := otel.Meter("github.com/ridhamz/AppointmentEase/internal/app").Int64Counter(
		"appointment_events_received",
		metric.WithDescription("Appointment events seen by the audit worker"),
	)

	sub, err := nc.Subscribe(constants.EventSubjectPrefix+".>", func(m *nats.Msg) {
		msg, ok := parseEventMessage(m.Subject, m.Data)
		if !ok {
			slog.Warn("audit_worker: malformed event", "subject", m.Subject)
			return
		}

		received.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("event", string(msg.Event)),
		))
		slog.Info("audit_worker: appointment event",
			"event", msg.Event,
			"appointment_id", msg.AppointmentID,
			"status", msg.Appointment.Status,
			"professional_id", msg.Appointment.ProfessionalID,
			"scheduled_at", msg.Appointment.ScheduledAt,
		)
	})
	if err != nil {
		slog.Error("audit_worker: subscribe failed", "err", err)
		return nil, err
	}

	slog.Info("audit_worker: started")
	return sub, nil
}
