package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/internal/service/appointment"
	"github.com/ridhamz/AppointmentEase/pkg/reqctx"
)

// actorFrom builds the acting identity from the claims the auth middleware
// put on the request context.
func actorFrom(c fiber.Ctx) (appointment.Actor, bool) {
	ctx := c.Context()
	if !reqctx.IsAuthenticated(ctx) {
		return appointment.Actor{}, false
	}
	id, _ := reqctx.UserIDFromContext(ctx)
	role, known := repo.ParseRole(reqctx.RoleFromContext(ctx))
	if !known {
		return appointment.Actor{}, false
	}
	return appointment.Actor{ID: id, Role: role}, true
}
