package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/pkg/reqctx"
)

const instrumentationName = "github.com/ridhamz/AppointmentEase/internal/service/appointment"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Title          string
	ScheduledAt    time.Time
	Notes          string
	ProfessionalID uuid.UUID
}

// EditRequest carries the fields a client may change. Nil fields are kept.
type EditRequest struct {
	Title          *string
	ScheduledAt    *time.Time
	Notes          *string
	ProfessionalID *uuid.UUID
}

type ListRequest struct {
	Status  *string
	Page    int
	PerPage int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, actor Actor, req CreateRequest) (*repo.Appointment, error)
	List(ctx context.Context, actor Actor, req ListRequest) ([]*repo.Appointment, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*repo.Appointment, error)
	Edit(ctx context.Context, actor Actor, id uuid.UUID, req EditRequest) (*repo.Appointment, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*repo.Appointment, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*repo.Appointment, error)
	HasConflict(ctx context.Context, professionalID uuid.UUID, at time.Time, exclude *uuid.UUID) (bool, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	store    repo.AppointmentStore
	users    repo.UserDirectory
	detector *Detector
	events   Publisher

	tracer      trace.Tracer
	created     metric.Int64Counter
	conflicts   metric.Int64Counter
	transitions metric.Int64Counter
}

func New(store repo.AppointmentStore, users repo.UserDirectory, detector *Detector, events Publisher) Service {
	if detector == nil {
		detector = NewDetector(DefaultWindow())
	}
	if events == nil {
		events = NewNatsPublisher(nil)
	}

	meter := otel.Meter(instrumentationName)
	created, _ := meter.Int64Counter("appointments.created",
		metric.WithDescription("Appointments booked"))
	conflicts, _ := meter.Int64Counter("appointments.conflicts",
		metric.WithDescription("Bookings or edits rejected because the slot was taken"))
	transitions, _ := meter.Int64Counter("appointments.transitions",
		metric.WithDescription("Status transitions by target status"))

	return &appointmentService{
		store:       store,
		users:       users,
		detector:    detector,
		events:      events,
		tracer:      otel.Tracer(instrumentationName),
		created:     created,
		conflicts:   conflicts,
		transitions: transitions,
	}
}

func (s *appointmentService) Create(ctx context.Context, actor Actor, req CreateRequest) (_ *repo.Appointment, err error) {
	ctx, span := s.start(ctx, "appointment.Create", actor)
	defer func() { endSpan(span, err) }()

	if _, err := permitRole(actor, OpCreate); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case req.ScheduledAt.IsZero():
		return nil, fmt.Errorf("%w: scheduled_at is required", ErrInvalidInput)
	case req.ProfessionalID == uuid.Nil:
		return nil, fmt.Errorf("%w: professional_id is required", ErrInvalidInput)
	}

	if err := s.checkProfessional(ctx, req.ProfessionalID); err != nil {
		return nil, err
	}

	appt := &repo.Appointment{
		Title:          title,
		ScheduledAt:    req.ScheduledAt.UTC(),
		Notes:          req.Notes,
		Status:         repo.StatusPending,
		ClientID:       actor.ID,
		ProfessionalID: req.ProfessionalID,
	}

	err = s.store.WithProfessionalLock(ctx, []uuid.UUID{appt.ProfessionalID}, func(ctx context.Context, tx repo.AppointmentStore) error {
		if err := s.ensureFree(ctx, tx, appt.ProfessionalID, appt.ScheduledAt, nil); err != nil {
			return err
		}
		return tx.CreateAppointment(ctx, appt)
	})
	if err != nil {
		return nil, s.writeError(ctx, "create appointment", err)
	}

	s.created.Add(ctx, 1)
	log(ctx).Info("appointment created",
		"appointment_id", appt.ID,
		"client_id", appt.ClientID,
		"professional_id", appt.ProfessionalID,
		"scheduled_at", appt.ScheduledAt,
	)
	s.publish(ctx, EventCreated, appt)
	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, actor Actor, req ListRequest) (_ []*repo.Appointment, err error) {
	ctx, span := s.start(ctx, "appointment.List", actor)
	defer func() { endSpan(span, err) }()

	scope, err := permitRole(actor, OpList)
	if err != nil {
		return nil, err
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}

	filter := repo.AppointmentFilter{
		Limit:  req.PerPage,
		Offset: (req.Page - 1) * req.PerPage,
	}
	switch scope {
	case ScopeOwner:
		filter.ClientID = &actor.ID
	case ScopeAssigned:
		filter.ProfessionalID = &actor.ID
	}
	if req.Status != nil {
		st, ok := repo.ParseStatus(*req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		filter.Status = &st
	}

	appts, err := s.store.FindAppointments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	s.populateNames(ctx, appts...)
	return appts, nil
}

func (s *appointmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (_ *repo.Appointment, err error) {
	ctx, span := s.start(ctx, "appointment.Get", actor)
	defer func() { endSpan(span, err) }()

	appt, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := permit(actor, OpRead, appt); err != nil {
		return nil, err
	}
	s.populateNames(ctx, appt)
	return appt, nil
}

func (s *appointmentService) Edit(ctx context.Context, actor Actor, id uuid.UUID, req EditRequest) (_ *repo.Appointment, err error) {
	ctx, span := s.start(ctx, "appointment.Edit", actor)
	defer func() { endSpan(span, err) }()

	appt, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(appt); err != nil {
		return nil, err
	}
	if err := permit(actor, OpEdit, appt); err != nil {
		return nil, err
	}

	next := *appt
	if req.Title != nil {
		next.Title = strings.TrimSpace(*req.Title)
		if next.Title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}
	if req.ScheduledAt != nil {
		if req.ScheduledAt.IsZero() {
			return nil, fmt.Errorf("%w: scheduled_at must not be empty", ErrInvalidInput)
		}
		next.ScheduledAt = req.ScheduledAt.UTC()
	}
	if req.ProfessionalID != nil {
		if *req.ProfessionalID == uuid.Nil {
			return nil, fmt.Errorf("%w: professional_id must not be empty", ErrInvalidInput)
		}
		next.ProfessionalID = *req.ProfessionalID
	}

	professionalChanged := next.ProfessionalID != appt.ProfessionalID
	scheduleChanged := !next.ScheduledAt.Equal(appt.ScheduledAt)

	if professionalChanged {
		if err := s.checkProfessional(ctx, next.ProfessionalID); err != nil {
			return nil, err
		}
	}

	if !professionalChanged && !scheduleChanged {
		if err := s.store.SaveAppointment(ctx, &next); err != nil {
			return nil, s.writeError(ctx, "save appointment", err)
		}
	} else {
		err = s.store.WithProfessionalLock(ctx, []uuid.UUID{next.ProfessionalID}, func(ctx context.Context, tx repo.AppointmentStore) error {
			current, err := s.load(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := checkMutable(current); err != nil {
				return err
			}
			if err := s.ensureFree(ctx, tx, next.ProfessionalID, next.ScheduledAt, &next.ID); err != nil {
				return err
			}
			return tx.SaveAppointment(ctx, &next)
		})
		if err != nil {
			return nil, s.writeError(ctx, "save appointment", err)
		}
	}

	log(ctx).Info("appointment updated",
		"appointment_id", next.ID,
		"rescheduled", scheduleChanged,
		"reassigned", professionalChanged,
	)
	s.publish(ctx, EventUpdated, &next)
	return &next, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (_ *repo.Appointment, err error) {
	ctx, span := s.start(ctx, "appointment.UpdateStatus", actor)
	defer func() { endSpan(span, err) }()

	appt, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(appt); err != nil {
		return nil, err
	}
	if err := permit(actor, OpUpdateStatus, appt); err != nil {
		return nil, err
	}
	to, err := checkTransition(appt.Status, status)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, appt, to)
}

func (s *appointmentService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (_ *repo.Appointment, err error) {
	ctx, span := s.start(ctx, "appointment.Cancel", actor)
	defer func() { endSpan(span, err) }()

	appt, err := s.load(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := checkMutable(appt); err != nil {
		return nil, err
	}
	if err := permit(actor, OpCancel, appt); err != nil {
		return nil, err
	}

	return s.transition(ctx, appt, repo.StatusCanceled)
}

func (s *appointmentService) HasConflict(ctx context.Context, professionalID uuid.UUID, at time.Time, exclude *uuid.UUID) (bool, error) {
	return s.detector.HasConflict(ctx, s.store, professionalID, at, exclude)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *appointmentService) load(ctx context.Context, store repo.AppointmentStore, id uuid.UUID) (*repo.Appointment, error) {
	appt, err := store.FindAppointment(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// populateNames fills in client and professional names for display. A failed
// lookup leaves the name empty; the appointment itself is still returned.
func (s *appointmentService) populateNames(ctx context.Context, appts ...*repo.Appointment) {
	names := make(map[uuid.UUID]string)
	lookup := func(id uuid.UUID) string {
		if name, ok := names[id]; ok {
			return name
		}
		u, err := s.users.FindUser(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "appointment party lookup failed", "user_id", id, "error", err)
			names[id] = ""
			return ""
		}
		names[id] = u.Name
		return u.Name
	}
	for _, a := range appts {
		a.ClientName = lookup(a.ClientID)
		a.ProfessionalName = lookup(a.ProfessionalID)
	}
}

func (s *appointmentService) checkProfessional(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("look up professional: %w", err)
	}
	if u.Role != repo.RoleProfessional {
		return fmt.Errorf("%w: user %s has role %s", ErrNotProfessional, id, u.Role)
	}
	return nil
}

func (s *appointmentService) ensureFree(ctx context.Context, store repo.AppointmentStore, professionalID uuid.UUID, at time.Time, exclude *uuid.UUID) error {
	hit, err := s.detector.Find(ctx, store, professionalID, at, exclude)
	if err != nil {
		return err
	}
	if hit != nil {
		log(ctx).Debug("slot taken",
			"professional_id", professionalID,
			"candidate", at,
			"existing_id", hit.ID,
			"existing_at", hit.ScheduledAt,
		)
		return ErrConflict
	}
	return nil
}

func (s *appointmentService) transition(ctx context.Context, appt *repo.Appointment, to repo.Status) (*repo.Appointment, error) {
	updatedAt, err := s.store.TransitionStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if !errors.Is(err, repo.ErrStaleState) {
			return nil, fmt.Errorf("update appointment status: %w", err)
		}
		// Someone else moved it first; report against the fresh state.
		current, lerr := s.load(ctx, s.store, appt.ID)
		if lerr != nil {
			return nil, lerr
		}
		if current.Status.IsTerminal() {
			return nil, fmt.Errorf("%w: status is %s", ErrImmutable, current.Status)
		}
		return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}

	from := appt.Status
	out := *appt
	out.Status = to
	out.UpdatedAt = updatedAt

	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(to))))
	log(ctx).Info("appointment status changed",
		"appointment_id", out.ID,
		"from", from,
		"to", to,
	)
	s.publish(ctx, eventForStatus(to), &out)
	return &out, nil
}

// writeError maps store failures of a write path onto the error taxonomy.
func (s *appointmentService) writeError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, repo.ErrUniqueViolation):
		s.conflicts.Add(ctx, 1)
		return ErrConflict
	case errors.Is(err, ErrImmutable), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, repo.ErrStaleState):
		return fmt.Errorf("%w: changed concurrently", ErrImmutable)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *appointmentService) publish(ctx context.Context, ev Event, appt *repo.Appointment) {
	if err := s.events.Publish(ctx, ev, appt); err != nil {
		log(ctx).Warn("appointment event not published", "event", ev, "appointment_id", appt.ID, "error", err)
	}
}

func (s *appointmentService) start(ctx context.Context, name string, actor Actor) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("actor.id", actor.ID.String()),
		attribute.String("actor.role", string(actor.Role)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
	}
	span.End()
}

func log(ctx context.Context) *slog.Logger {
	if id := reqctx.RequestIDFromContext(ctx); id != "" {
		return slog.Default().With("request_id", id)
	}
	return slog.Default()
}
