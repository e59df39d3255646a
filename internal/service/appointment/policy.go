package appointment

import (
	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
)

// Operation names match the casbin actions the router enforces.
type Operation string

const (
	OpCreate       Operation = Operation(authorize.ActionCreate)
	OpRead         Operation = Operation(authorize.ActionRead)
	OpList         Operation = Operation(authorize.ActionList)
	OpEdit         Operation = Operation(authorize.ActionUpdate)
	OpCancel       Operation = Operation(authorize.ActionCancel)
	OpUpdateStatus Operation = Operation(authorize.ActionUpdateStatus)
)

var Operations = []Operation{OpCreate, OpRead, OpList, OpEdit, OpCancel, OpUpdateStatus}

// Scope is how far a role's permission on an operation reaches.
type Scope int

const (
	ScopeDenied   Scope = iota
	ScopeAny            // every appointment
	ScopeOwner          // appointments the actor booked as client
	ScopeAssigned       // appointments assigned to the actor as professional
)

func (s Scope) String() string {
	switch s {
	case ScopeAny:
		return "any"
	case ScopeOwner:
		return "owner"
	case ScopeAssigned:
		return "assigned"
	default:
		return "denied"
	}
}

// accessTable is role x operation -> scope. Missing entries are denied.
var accessTable = map[repo.Role]map[Operation]Scope{
	repo.RoleClient: {
		OpCreate: ScopeAny,
		OpRead:   ScopeOwner,
		OpList:   ScopeOwner,
		OpEdit:   ScopeOwner,
		OpCancel: ScopeOwner,
	},
	repo.RoleProfessional: {
		OpRead:         ScopeAssigned,
		OpList:         ScopeAssigned,
		OpUpdateStatus: ScopeAssigned,
	},
	repo.RoleAdmin: {
		OpRead:         ScopeAny,
		OpList:         ScopeAny,
		OpCancel:       ScopeAny,
		OpUpdateStatus: ScopeAny,
	},
}

// ScopeFor looks up the table.
func ScopeFor(role repo.Role, op Operation) Scope {
	return accessTable[role][op]
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role repo.Role
}

// Covers reports whether the scope includes appointment a for the actor.
func (s Scope) Covers(actor Actor, a *repo.Appointment) bool {
	switch s {
	case ScopeAny:
		return true
	case ScopeOwner:
		return a.ClientID == actor.ID
	case ScopeAssigned:
		return a.ProfessionalID == actor.ID
	default:
		return false
	}
}

// permit checks op on an existing appointment.
func permit(actor Actor, op Operation, a *repo.Appointment) error {
	if !ScopeFor(actor.Role, op).Covers(actor, a) {
		return ErrForbidden
	}
	return nil
}

// permitRole checks op where no appointment exists yet (create, list).
func permitRole(actor Actor, op Operation) (Scope, error) {
	scope := ScopeFor(actor.Role, op)
	if scope == ScopeDenied {
		return scope, ErrForbidden
	}
	return scope, nil
}

// Policies exports the table as casbin permission rows: one allow row per
// (role, operation) pair whose scope is not denied. Ownership is re-checked
// by the service.
func Policies() []authorize.PermissionPolicy {
	var out []authorize.PermissionPolicy
	for _, role := range []repo.Role{repo.RoleClient, repo.RoleProfessional, repo.RoleAdmin} {
		subject, _ := authorize.RoleFor(string(role))
		for _, op := range Operations {
			if ScopeFor(role, op) == ScopeDenied {
				continue
			}
			out = append(out, authorize.PermissionPolicy{
				Subject: subject,
				Domain:  authorize.DomainSys,
				Object:  authorize.ResourceAppointment,
				Action:  authorize.Action(op),
				Effect:  authorize.EffectAllow,
			})
		}
	}
	return out
}
