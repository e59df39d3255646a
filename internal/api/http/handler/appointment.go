package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/service/appointment"
	"github.com/ridhamz/AppointmentEase/pkg/reqctx"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch appointment.KindOf(err) {
	case appointment.KindAuthorization:
		return forbidden(c)
	case appointment.KindNotFound:
		return notFound(c, err.Error())
	case appointment.KindValidation:
		return badRequest(c, err.Error())
	case appointment.KindConflict:
		return conflict(c, err.Error())
	case appointment.KindImmutable:
		return unprocessable(c, err.Error())
	default:
		slog.ErrorContext(c.Context(), "appointment request failed",
			"error", err,
			"request_id", reqctx.RequestIDFromContext(c.Context()),
		)
		return internalError(c)
	}
}

func appointmentID(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// POST /appointments
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		Title          string    `json:"title"`
		ScheduledAt    time.Time `json:"scheduled_at"`
		Notes          string    `json:"notes"`
		ProfessionalID string    `json:"professional_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	proID, err := uuid.Parse(body.ProfessionalID)
	if err != nil {
		return badRequest(c, "invalid professional_id")
	}

	appt, err := h.svc.Create(c.Context(), actor, appointment.CreateRequest{
		Title:          body.Title,
		ScheduledAt:    body.ScheduledAt,
		Notes:          body.Notes,
		ProfessionalID: proID,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return created(c, appt)
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		Status  string `query:"status"`
		Page    int    `query:"page"`
		PerPage int    `query:"per_page"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	req := appointment.ListRequest{Page: q.Page, PerPage: q.PerPage}
	if q.Status != "" {
		req.Status = &q.Status
	}

	appts, err := h.svc.List(c.Context(), actor, req)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appts)
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := appointmentID(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Get(c.Context(), actor, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}

// PUT /appointments/:id
func (h *AppointmentHandler) Edit(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := appointmentID(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Title          *string    `json:"title"`
		ScheduledAt    *time.Time `json:"scheduled_at"`
		Notes          *string    `json:"notes"`
		ProfessionalID *string    `json:"professional_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := appointment.EditRequest{
		Title:       body.Title,
		ScheduledAt: body.ScheduledAt,
		Notes:       body.Notes,
	}
	if body.ProfessionalID != nil {
		proID, err := uuid.Parse(*body.ProfessionalID)
		if err != nil {
			return badRequest(c, "invalid professional_id")
		}
		req.ProfessionalID = &proID
	}

	appt, err := h.svc.Edit(c.Context(), actor, id, req)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}

// PUT /appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := appointmentID(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.UpdateStatus(c.Context(), actor, id, body.Status)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}

// DELETE /appointments/:id
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := appointmentID(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Cancel(c.Context(), actor, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}

	return ok(c, appt)
}
