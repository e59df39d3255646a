package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ridhamz/AppointmentEase/internal/service/appointment"
	"github.com/ridhamz/AppointmentEase/pkg/authorize"
	pasetotoken "github.com/ridhamz/AppointmentEase/pkg/paseto"
	"github.com/ridhamz/AppointmentEase/pkg/reqctx"
)

func newTestAuthorization(t *testing.T) authorize.IAuthorization {
	t.Helper()

	policyPath := filepath.Join(t.TempDir(), "policy.csv")
	if err := os.WriteFile(policyPath, nil, 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}
	m, err := authorize.LoadModel("")
	if err != nil {
		t.Fatalf("failed to load model: %v", err)
	}
	e, err := casbin.NewDistributedEnforcer(m, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	e.EnableAutoSave(false)

	auth, err := authorize.NewAuthorization(e)
	if err != nil {
		t.Fatalf("NewAuthorization: %v", err)
	}
	if err := authorize.SeedPolicies(context.Background(), auth, appointment.Policies()); err != nil {
		t.Fatalf("SeedPolicies: %v", err)
	}
	return auth
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(reqctx.RequestIDFromContext(c.Context()))
	})

	t.Run("generates an id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		rid := resp.Header.Get(HeaderRequestID)
		if rid == "" || string(body) != rid {
			t.Errorf("header %q, context %q", rid, body)
		}
	})

	t.Run("preserves incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if got := resp.Header.Get(HeaderRequestID); got != "abc-123" {
			t.Errorf("request id = %q, want abc-123", got)
		}
	})
}

func TestAuthRequired(t *testing.T) {
	keys, err := pasetotoken.GenerateKeys(pasetotoken.ModeLocal)
	if err != nil {
		t.Fatalf("GenerateKeys: %v", err)
	}
	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode:     pasetotoken.ModeLocal,
		Issuer:   "test",
		Audience: "test",
	}, keys)
	if err != nil {
		t.Fatalf("paseto.New: %v", err)
	}

	userID := uuid.New()
	token, err := mgr.IssueAccess(userID, "client", nil)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	app := fiber.New()
	app.Get("/", AuthRequired(mgr, nil), func(c fiber.Ctx) error {
		id, _ := reqctx.UserIDFromContext(c.Context())
		return c.SendString(id.String() + "/" + reqctx.RoleFromContext(c.Context()))
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer v4.local.nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != userID.String()+"/client" {
					t.Errorf("body = %q", body)
				}
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	auth := newTestAuthorization(t)

	withRole := func(role string) fiber.Handler {
		return func(c fiber.Ctx) error {
			if role != "" {
				c.SetContext(reqctx.WithClaims(c.Context(), &pasetotoken.Claims{UserID: uuid.New(), Role: role}))
			}
			return c.Next()
		}
	}

	tests := []struct {
		name   string
		role   string
		action authorize.Action
		want   int
	}{
		{"client creates", "client", authorize.ActionCreate, http.StatusOK},
		{"professional cannot create", "professional", authorize.ActionCreate, http.StatusForbidden},
		{"client cannot update status", "client", authorize.ActionUpdateStatus, http.StatusForbidden},
		{"professional updates status", "professional", authorize.ActionUpdateStatus, http.StatusOK},
		{"admin cancels", "admin", authorize.ActionCancel, http.StatusOK},
		{"admin cannot edit", "admin", authorize.ActionUpdate, http.StatusForbidden},
		{"no claims", "", authorize.ActionRead, http.StatusUnauthorized},
		{"unknown role", "guest", authorize.ActionRead, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", withRole(tt.role), RequirePermission(auth, authorize.ResourceAppointment, tt.action), func(c fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
