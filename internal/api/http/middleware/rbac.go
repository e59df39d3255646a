package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/ridhamz/AppointmentEase/pkg/authorize"
)

// RequirePermission checks that the role of the authenticated user may
// perform action on resource in the sys domain. Ownership of individual
// records is checked by the services.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		subject, err := authorize.SubjectFromContext(c.Context())
		if err != nil {
			return fiber.ErrUnauthorized
		}

		if err := auth.MustEnforce(c.Context(), subject, authorize.DomainSys, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
