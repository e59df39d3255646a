package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
)

type CreateRequest struct {
	Name  string
	Email string
	Role  string
}

type Service interface {
	Profile(ctx context.Context, id uuid.UUID) (*repo.User, error)
	ListProfessionals(ctx context.Context) ([]*repo.User, error)
	Create(ctx context.Context, req CreateRequest) (*repo.User, error)
}

type UserService struct {
	users     repo.UserStore
	authorize authorize.IAuthorization
}

// New builds the directory service. authz may be nil, in which case new
// users get no grouping row and are authorized by their token role only.
func New(users repo.UserStore, authz authorize.IAuthorization) *UserService {
	return &UserService{users: users, authorize: authz}
}

// Profile returns the directory entry of the acting user.
func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (s *UserService) ListProfessionals(ctx context.Context) ([]*repo.User, error) {
	out, err := s.users.FindUsersByRole(ctx, repo.RoleProfessional)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	return out, nil
}

func (s *UserService) Create(ctx context.Context, req CreateRequest) (*repo.User, error) {
	name := strings.TrimSpace(req.Name)
	if n := utf8.RuneCountInString(name); n == 0 || n > 100 {
		return nil, ErrInvalidName
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, ErrInvalidEmail
	}
	role, ok := repo.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !ok {
		return nil, ErrInvalidRole
	}

	u := &repo.User{Name: name, Email: strings.ToLower(addr.Address), Role: role}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrUniqueViolation) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.authorize != nil {
		policyRole, _ := authorize.RoleFor(string(role))
		if err := authorize.AssignRole(ctx, s.authorize, u.ID, policyRole); err != nil {
			return nil, fmt.Errorf("failed to assign role: %w", err)
		}
	}

	slog.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Policies grants every role read access to its own profile and to the
// professional directory.
func Policies() []authorize.PermissionPolicy {
	var out []authorize.PermissionPolicy
	for _, r := range []authorize.Role{authorize.RoleClient, authorize.RoleProfessional, authorize.RoleAdmin} {
		out = append(out,
			authorize.PermissionPolicy{Subject: r, Domain: authorize.DomainSys, Object: authorize.ResourceUser, Action: authorize.ActionRead, Effect: authorize.EffectAllow},
			authorize.PermissionPolicy{Subject: r, Domain: authorize.DomainSys, Object: authorize.ResourceProfessional, Action: authorize.ActionList, Effect: authorize.EffectAllow},
		)
	}
	return out
}
