package authorize

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// SeedPolicies installs every permission row of the given sets. Rows that
// already exist are skipped by casbin, so seeding is repeatable.
func SeedPolicies(ctx context.Context, auth IAuthorization, sets ...[]PermissionPolicy) error {
	logger := slog.Default()

	var count int
	for _, set := range sets {
		for _, p := range set {
			added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
			if err != nil {
				logger.Error("failed to add policy", "policy", p, "error", err)
				return err
			}
			if added {
				logger.Debug("added policy", "role", p.Subject, "domain", p.Domain, "resource", p.Object, "action", p.Action)
			}
			count++
		}
	}

	logger.Info("seeded RBAC policies", "count", count)
	return nil
}

// AssignRole binds a user to its directory role in the sys domain. A user
// holds exactly one role there, so any other grouping is removed first.
func AssignRole(ctx context.Context, auth IAuthorization, userID uuid.UUID, role Role) error {
	if _, ok := KnownRoles[role]; !ok {
		return ErrInvalidArgs
	}
	subject := UserSubject(userID)

	current, err := auth.GetRolesForUserInDomain(ctx, subject, DomainSys)
	if err != nil {
		return err
	}
	for _, r := range current {
		if r == role {
			continue
		}
		if _, err := auth.RemoveRoleForUserInDomain(ctx, subject, r, DomainSys); err != nil {
			return err
		}
	}

	_, err = auth.AddRoleForUserInDomain(ctx, subject, role, DomainSys)
	return err
}
