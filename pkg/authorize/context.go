package authorize

import (
	"context"
	"errors"

	"github.com/ridhamz/AppointmentEase/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext returns the policy subject for the authenticated
// request: the role carried by its claims.
func SubjectFromContext(ctx context.Context) (Subject, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil {
		return "", ErrNoSubjectInContext
	}
	role, ok := RoleFor(claims.GetRole())
	if !ok {
		return "", ErrNoSubjectInContext
	}
	return RoleSubject(role), nil
}
