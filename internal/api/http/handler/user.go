package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/ridhamz/AppointmentEase/internal/service/user"
	"github.com/ridhamz/AppointmentEase/pkg/reqctx"
)

type UserHandler struct {
	svc user.Service
}

func NewUserHandler(svc user.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// GET /users/profile
func (h *UserHandler) Profile(c fiber.Ctx) error {
	if !reqctx.IsAuthenticated(c.Context()) {
		return unauthorized(c)
	}
	userID, _ := reqctx.UserIDFromContext(c.Context())

	u, err := h.svc.Profile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return notFound(c, err.Error())
		}
		return internalError(c)
	}

	return ok(c, u)
}

// GET /users/professionals
func (h *UserHandler) Professionals(c fiber.Ctx) error {
	pros, err := h.svc.ListProfessionals(c.Context())
	if err != nil {
		return internalError(c)
	}
	return ok(c, pros)
}
