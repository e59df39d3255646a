package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var appointmentColumns = []string{
	"id", "title", "scheduled_at", "notes", "status",
	"client_id", "professional_id", "created_at", "updated_at",
}

func (c *Client) selectAppointments() *entsql.Selector {
	return c.builder().Select(appointmentColumns...).From(entsql.Table(appointmentsTable))
}

func (c *Client) FindAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	sel := c.selectAppointments().Where(entsql.EQ("id", id)).Limit(1)

	out, err := c.queryAppointments(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

func (c *Client) FindAppointments(ctx context.Context, f AppointmentFilter) ([]*Appointment, error) {
	sel := c.selectAppointments()

	if f.ClientID != nil {
		sel.Where(entsql.EQ("client_id", *f.ClientID))
	}
	if f.ProfessionalID != nil {
		sel.Where(entsql.EQ("professional_id", *f.ProfessionalID))
	}
	if f.Status != nil {
		sel.Where(entsql.EQ("status", string(*f.Status)))
	}

	sel.OrderBy("scheduled_at", "id")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sel.Offset(f.Offset)
	}

	out, err := c.queryAppointments(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (c *Client) FindConflicting(ctx context.Context, q ConflictQuery) (*Appointment, error) {
	sel := c.selectAppointments().
		Where(conflictPredicate(q)).
		OrderBy("scheduled_at").
		Limit(1)

	out, err := c.queryAppointments(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("find conflicting appointment: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func conflictPredicate(q ConflictQuery) *entsql.Predicate {
	preds := []*entsql.Predicate{
		entsql.EQ("professional_id", q.ProfessionalID),
		entsql.NEQ("status", string(StatusCanceled)),
		entsql.GTE("scheduled_at", q.From),
		entsql.LTE("scheduled_at", q.To),
	}
	if q.ExcludeID != nil {
		preds = append(preds, entsql.NEQ("id", *q.ExcludeID))
	}
	return entsql.And(preds...)
}

func (c *Client) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate appointment id: %w", err)
		}
		a.ID = id
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	now := c.now()
	a.CreatedAt, a.UpdatedAt = now, now

	query, args := c.builder().Insert(appointmentsTable).
		Columns(append(appointmentColumns, "slot_bucket")...).
		Values(
			a.ID, a.Title, a.ScheduledAt, a.Notes, string(a.Status),
			a.ClientID, a.ProfessionalID, a.CreatedAt, a.UpdatedAt,
			SlotBucket(a.ScheduledAt, c.bucket),
		).
		Query()

	if err := c.conn.Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (c *Client) SaveAppointment(ctx context.Context, a *Appointment) error {
	now := c.now()

	query, args := c.builder().Update(appointmentsTable).
		Set("title", a.Title).
		Set("scheduled_at", a.ScheduledAt).
		Set("slot_bucket", SlotBucket(a.ScheduledAt, c.bucket)).
		Set("notes", a.Notes).
		Set("professional_id", a.ProfessionalID).
		Set("updated_at", now).
		Where(entsql.And(
			entsql.EQ("id", a.ID),
			entsql.In("status", string(StatusPending), string(StatusConfirmed)),
		)).
		Query()

	if err := c.execAffectingOne(ctx, query, args); err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	a.UpdatedAt = now
	return nil
}

func (c *Client) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (time.Time, error) {
	now := c.now()

	query, args := c.builder().Update(appointmentsTable).
		Set("status", string(to)).
		Set("updated_at", now).
		Where(entsql.And(
			entsql.EQ("id", id),
			entsql.EQ("status", string(from)),
		)).
		Query()

	if err := c.execAffectingOne(ctx, query, args); err != nil {
		return time.Time{}, fmt.Errorf("transition appointment %s -> %s: %w", from, to, err)
	}
	return now, nil
}

func (c *Client) execAffectingOne(ctx context.Context, query string, args []any) error {
	var res sql.Result
	if err := c.conn.Exec(ctx, query, args, &res); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}

func (c *Client) queryAppointments(ctx context.Context, sel *entsql.Selector) ([]*Appointment, error) {
	query, args := sel.Query()

	var rows entsql.Rows
	if err := c.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	if err := entsql.ScanSlice(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}
