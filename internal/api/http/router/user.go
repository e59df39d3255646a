package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ridhamz/AppointmentEase/internal/api/http/handler"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
)

func (r *Router) registerUserRoutes(
	api fiber.Router,
	h *handler.UserHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	users := api.Group("/users", authRequired)
	users.Get("/profile", requirePerm(authorize.ResourceUser, authorize.ActionRead), h.Profile)
	users.Get("/professionals", requirePerm(authorize.ResourceProfessional, authorize.ActionList), h.Professionals)
}
