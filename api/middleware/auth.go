package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/pressreach-backend/api/responses"
	"github.com/angelmondragon/pressreach-backend/api/validators"
	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/auth"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

// TokenVerifier checks a Clerk session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (auth.Principal, error)
}

// TenantProvisioner maps a verified caller onto a tenant row.
type TenantProvisioner interface {
	Ensure(ctx context.Context, id users.Identity) (*models.User, error)
}

// Auth validates the bearer token, provisions the tenant and seeds the request
// context with it.
func Auth(verifier TokenVerifier, tenants TenantProvisioner, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, verifier, tenants, logg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the tenant when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier, tenants TenantProvisioner, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx, err := authenticate(r, verifier, tenants, logg)
			if err != nil {
				if logg != nil {
					logg.Debug(r.Context(), "auth.optional.anonymous")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, verifier TokenVerifier, tenants TenantProvisioner, logg *logger.Logger) (context.Context, error) {
	token, err := validators.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if verifier == nil || tenants == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "auth not configured")
	}

	principal, err := verifier.Verify(r.Context(), token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}

	identity := users.IdentityFromPrincipal(principal)
	tenant, err := tenants.Ensure(r.Context(), identity)
	if err != nil {
		return nil, err
	}

	ctx := WithIdentity(WithTenant(r.Context(), tenant), identity)
	if logg != nil {
		ctx = logg.WithUserID(ctx, tenant.ID.String())
		ctx = logg.WithClerkUserID(ctx, tenant.ClerkUserID)
	}
	return ctx, nil
}

// RequireTenant returns the tenant or writes 401. Handlers behind Auth always
// have one.
func RequireTenant(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*models.User, bool) {
	tenant := TenantFromContext(r.Context())
	if tenant == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	return tenant, true
}
