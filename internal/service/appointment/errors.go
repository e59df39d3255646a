package appointment

import "errors"

var (
	ErrForbidden            = errors.New("not allowed to perform this operation on the appointment")
	ErrNotFound             = errors.New("appointment not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrInvalidInput         = errors.New("invalid appointment input")
	ErrInvalidStatus        = errors.New("invalid appointment status")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrNotProfessional      = errors.New("referenced user is not a professional")
	ErrConflict             = errors.New("the professional already has an appointment in this time slot")
	ErrImmutable            = errors.New("appointment is completed or canceled and can no longer be changed")
)

// Kind is the failure category reported to callers.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindImmutable     Kind = "immutable"
	KindPersistence   Kind = "persistence"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrForbidden, KindAuthorization},
	{ErrNotFound, KindNotFound},
	{ErrProfessionalNotFound, KindNotFound},
	{ErrInvalidInput, KindValidation},
	{ErrInvalidStatus, KindValidation},
	{ErrInvalidTransition, KindValidation},
	{ErrNotProfessional, KindValidation},
	{ErrConflict, KindConflict},
	{ErrImmutable, KindImmutable},
}

// KindOf classifies err. Anything that is not one of the package sentinels
// is a persistence failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindPersistence
}
