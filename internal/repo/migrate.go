package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ridhamz/AppointmentEase/internal/repo/migrate"
)

// Migrate creates or extends the tables described by the ent schema. It never
// drops columns or indexes.
func (c *Client) Migrate(ctx context.Context) error {
	if c.drv == nil {
		return fmt.Errorf("migrate: client is bound to a transaction")
	}
	if err := migrate.Create(ctx, c.drv, migrate.WithForeignKeys(true)); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	slog.InfoContext(ctx, "schema migrated", "tables", len(migrate.Tables))
	return nil
}
