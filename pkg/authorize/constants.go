package authorize

import (
	"strings"

	"github.com/google/uuid"
)

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionList   Action = "list"

	// Appointment lifecycle
	ActionCancel       Action = "cancel"
	ActionUpdateStatus Action = "update_status"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionList: {},
	ActionCancel: {}, ActionUpdateStatus: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceUser         Resource = "user"
	ResourceProfessional Resource = "professional"
	ResourceAppointment  Resource = "appointment"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourceProfessional: {}, ResourceAppointment: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Policy subjects. A user is bound to exactly one of them, either through
// the role claim of the access token or a grouping row in domain sys.

const (
	WildcardRole Role = "*"

	RoleClient       Role = "role:client"
	RoleProfessional Role = "role:professional"
	RoleAdmin        Role = "role:admin"
)

var KnownRoles = map[Role]struct{}{
	RoleClient:       {},
	RoleProfessional: {},
	RoleAdmin:        {},
}

const rolePrefix = "role:"

// RoleFor maps a directory role name ("client", "admin") to its policy subject.
func RoleFor(name string) (Role, bool) {
	r := Role(rolePrefix + strings.ToLower(strings.TrimSpace(name)))
	if _, ok := KnownRoles[r]; !ok {
		return "", false
	}
	return r, true
}

// Name strips the policy prefix: RoleAdmin.Name() == "admin".
func (r Role) Name() string {
	return strings.TrimPrefix(string(r), rolePrefix)
}

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys Domain = "sys"
)

const (
	WildcardDomain Domain = "*"
)

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	return d == DomainSys || d == WildcardDomain
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Subject is r.sub in a request: a role or a concrete user id.
type Subject string

func UserSubject(id uuid.UUID) Subject { return Subject(id.String()) }

func RoleSubject(r Role) Subject { return Subject(r) }

// Grouping rows: g, user_id, role, domain
type GroupingPolicy struct {
	Subject Subject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
