package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/repo"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
)

type memUsers struct {
	byID map[uuid.UUID]*repo.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uuid.UUID]*repo.User{}} }

func (m *memUsers) FindUser(_ context.Context, id uuid.UUID) (*repo.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindUsersByRole(_ context.Context, role repo.Role) ([]*repo.User, error) {
	var out []*repo.User
	for _, u := range m.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memUsers) CreateUser(_ context.Context, u *repo.User) error {
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return repo.ErrUniqueViolation
		}
	}
	u.ID = uuid.New()
	m.byID[u.ID] = u
	return nil
}

func TestCreate(t *testing.T) {
	svc := New(newMemUsers(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"valid client", CreateRequest{Name: "Ada", Email: "ada@example.com", Role: "client"}, nil},
		{"valid professional", CreateRequest{Name: "Dr. Grey", Email: "Grey@Example.com", Role: "Professional"}, nil},
		{"duplicate email", CreateRequest{Name: "Ada 2", Email: "ADA@example.com", Role: "client"}, ErrEmailAlreadyExists},
		{"empty name", CreateRequest{Name: "  ", Email: "x@example.com", Role: "client"}, ErrInvalidName},
		{"bad email", CreateRequest{Name: "X", Email: "not-an-email", Role: "client"}, ErrInvalidEmail},
		{"unknown role", CreateRequest{Name: "X", Email: "y@example.com", Role: "root"}, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Create(ctx, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
			if u.Email != strings.ToLower(tt.req.Email) {
				t.Errorf("email not normalized: %q", u.Email)
			}
		})
	}
}

func TestProfileAndProfessionals(t *testing.T) {
	users := newMemUsers()
	svc := New(users, nil)
	ctx := context.Background()

	pro, err := svc.Create(ctx, CreateRequest{Name: "Dr. Who", Email: "who@example.com", Role: "professional"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateRequest{Name: "Client", Email: "c@example.com", Role: "client"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Profile(ctx, pro.ID)
	if err != nil || got.ID != pro.ID {
		t.Errorf("Profile() = %v, %v", got, err)
	}
	if _, err := svc.Profile(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Profile() of unknown user error = %v, want ErrUserNotFound", err)
	}

	pros, err := svc.ListProfessionals(ctx)
	if err != nil {
		t.Fatalf("ListProfessionals: %v", err)
	}
	if len(pros) != 1 || pros[0].ID != pro.ID {
		t.Errorf("ListProfessionals() = %v", pros)
	}
}

func TestPolicies(t *testing.T) {
	policies := Policies()
	if len(policies) != 6 {
		t.Fatalf("expected 6 policies, got %d", len(policies))
	}
	for _, p := range policies {
		if _, ok := authorize.KnownRoles[p.Subject]; !ok {
			t.Errorf("policy subject %q is not a known role", p.Subject)
		}
		if p.Domain != authorize.DomainSys || p.Effect != authorize.EffectAllow {
			t.Errorf("unexpected policy %+v", p)
		}
	}
}
