package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const userCachePrefix = "user:"

// CachedUsers is a read-through Redis cache in front of a UserStore.
// Only single-user lookups are cached; role listings always hit the store.
type CachedUsers struct {
	next UserStore
	rdb  goredis.Cmdable
	ttl  time.Duration
}

var _ UserStore = (*CachedUsers)(nil)

func NewCachedUsers(next UserStore, rdb goredis.Cmdable, ttl time.Duration) *CachedUsers {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedUsers{next: next, rdb: rdb, ttl: ttl}
}

func (c *CachedUsers) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	key := userCachePrefix + id.String()

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var u User
		if err := json.Unmarshal(raw, &u); err == nil {
			return &u, nil
		}
		slog.WarnContext(ctx, "discarding malformed cached user", "user_id", id)
	} else if !errors.Is(err, goredis.Nil) {
		slog.WarnContext(ctx, "user cache read failed", "user_id", id, "error", err)
	}

	u, err := c.next.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(u); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			slog.WarnContext(ctx, "user cache write failed", "user_id", id, "error", err)
		}
	}
	return u, nil
}

func (c *CachedUsers) FindUsersByRole(ctx context.Context, role Role) ([]*User, error) {
	return c.next.FindUsersByRole(ctx, role)
}

func (c *CachedUsers) CreateUser(ctx context.Context, u *User) error {
	if err := c.next.CreateUser(ctx, u); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, userCachePrefix+u.ID.String()).Err(); err != nil {
		return fmt.Errorf("invalidate user cache: %w", err)
	}
	return nil
}
