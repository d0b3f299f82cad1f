package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/auth"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

type stubVerifier struct {
	principal auth.Principal
	err       error
}

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Principal, error) {
	if s.err != nil {
		return auth.Principal{}, s.err
	}
	if token != "good" {
		return auth.Principal{}, auth.ErrInvalidToken
	}
	return s.principal, nil
}

type stubProvisioner struct {
	seen []users.Identity
	err  error
}

func (s *stubProvisioner) Ensure(_ context.Context, id users.Identity) (*models.User, error) {
	s.seen = append(s.seen, id)
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: uuid.New(), ClerkUserID: id.ClerkUserID, Email: id.Email}, nil
}

func tenantEcho(captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = TenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	var got *models.User
	handler := Auth(stubVerifier{}, &stubProvisioner{}, nil)(tenantEcho(&got))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if got != nil {
		t.Fatalf("handler should not run")
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	var got *models.User
	provisioner := &stubProvisioner{}
	handler := Auth(stubVerifier{}, provisioner, nil)(tenantEcho(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if len(provisioner.seen) != 0 {
		t.Fatalf("provisioner should not be called for an invalid token")
	}
}

func TestAuthProvisionsTenant(t *testing.T) {
	var got *models.User
	provisioner := &stubProvisioner{}
	verifier := stubVerifier{principal: auth.Principal{Subject: "user_1", Email: " ivan@acme.test ", FirstName: "Ivan"}}
	handler := Auth(verifier, provisioner, nil)(tenantEcho(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got == nil || got.ClerkUserID != "user_1" {
		t.Fatalf("expected tenant user_1 in context, got %+v", got)
	}
	if len(provisioner.seen) != 1 || provisioner.seen[0].Email != "ivan@acme.test" {
		t.Fatalf("expected trimmed identity, got %+v", provisioner.seen)
	}
}

func TestAuthSurfacesProvisioningFailure(t *testing.T) {
	var got *models.User
	provisioner := &stubProvisioner{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "provision user")}
	handler := Auth(stubVerifier{principal: auth.Principal{Subject: "user_1"}}, provisioner, nil)(tenantEcho(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	verifier := stubVerifier{principal: auth.Principal{Subject: "user_1"}}

	cases := []struct {
		name   string
		header string
		tenant bool
	}{
		{"anonymous", "", false},
		{"invalid token", "Bearer forged", false},
		{"valid token", "Bearer good", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got *models.User
			handler := OptionalAuth(verifier, &stubProvisioner{}, nil)(tenantEcho(&got))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", resp.Code)
			}
			if (got != nil) != tc.tenant {
				t.Fatalf("expected tenant=%v got %+v", tc.tenant, got)
			}
		})
	}
}
