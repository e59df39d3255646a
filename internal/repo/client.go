package repo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/repo/migrate"
)

var (
	appointmentsTable = migrate.AppointmentsTable.Name
	usersTable        = migrate.UsersTable.Name
)

// Client is the PostgreSQL-backed store. It builds queries with the ent SQL
// builder and runs them on an ent driver or on a transaction opened from it.
type Client struct {
	drv    *entsql.Driver
	conn   dialect.ExecQuerier
	bucket time.Duration
	now    func() time.Time
}

var (
	_ AppointmentStore = (*Client)(nil)
	_ UserStore        = (*Client)(nil)
)

func NewClient(drv *entsql.Driver, bucket time.Duration) *Client {
	return &Client{
		drv:    drv,
		conn:   drv,
		bucket: bucket,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Close() error {
	if c.drv == nil {
		return nil
	}
	return c.drv.Close()
}

func (c *Client) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

func (c *Client) WithProfessionalLock(ctx context.Context, professionalIDs []uuid.UUID, fn func(ctx context.Context, store AppointmentStore) error) error {
	// Already inside a transaction.
	if c.drv == nil {
		return fn(ctx, c)
	}

	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txc := &Client{conn: tx, bucket: c.bucket, now: c.now}

	// Sorted so two transactions locking the same pair cannot deadlock.
	ids := slices.Clone(professionalIDs)
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)

	for _, id := range ids {
		if err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", []any{id.String()}, nil); err != nil {
			return rollback(tx, fmt.Errorf("lock professional %s: %w", id, err))
		}
	}

	if err := fn(ctx, txc); err != nil {
		return rollback(tx, err)
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
		}
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func rollback(tx dialect.Tx, err error) error {
	if rerr := tx.Rollback(); rerr != nil {
		return fmt.Errorf("%w: rollback failed: %v", err, rerr)
	}
	return err
}
