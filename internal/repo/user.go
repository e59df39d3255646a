package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var userColumns = []string{"id", "name", "email", "role", "created_at"}

func (c *Client) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	sel := c.builder().Select(userColumns...).
		From(entsql.Table(usersTable)).
		Where(entsql.EQ("id", id)).
		Limit(1)

	out, err := c.queryUsers(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0], nil
}

func (c *Client) FindUsersByRole(ctx context.Context, role Role) ([]*User, error) {
	sel := c.builder().Select(userColumns...).
		From(entsql.Table(usersTable)).
		Where(entsql.EQ("role", string(role))).
		OrderBy("name", "id")

	out, err := c.queryUsers(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate user id: %w", err)
		}
		u.ID = id
	}
	u.CreatedAt = c.now()

	query, args := c.builder().Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, string(u.Role), u.CreatedAt).
		Query()

	if err := c.conn.Exec(ctx, query, args, nil); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (c *Client) queryUsers(ctx context.Context, sel *entsql.Selector) ([]*User, error) {
	query, args := sel.Query()

	var rows entsql.Rows
	if err := c.conn.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	if err := entsql.ScanSlice(rows, &out); err != nil {
		return nil, err
	}
	return out, nil
}
