package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ridhamz/AppointmentEase/internal/api/http/handler"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
)

// Single-appointment routes have no role gate here. The service checks
// existence and terminal state before the actor's permission.
func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts := api.Group("/appointments", authRequired)

	appts.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)
	appts.Post("/", requirePerm(authorize.ResourceAppointment, authorize.ActionCreate), ah.Create)

	a := appts.Group("/:id")
	a.Get("/", ah.Get)
	a.Put("/", ah.Edit)
	a.Delete("/", ah.Cancel)
	a.Put("/status", ah.UpdateStatus)
}
