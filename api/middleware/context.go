package middleware

import (
	"context"

	"github.com/angelmondragon/pressreach-backend/internal/users"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
)

type contextKey string

const (
	ctxTenant   contextKey = "tenant"
	ctxIdentity contextKey = "identity"
)

// TenantFromContext returns the authenticated tenant, or nil on anonymous requests.
func TenantFromContext(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxTenant).(*models.User); ok {
		return v
	}
	return nil
}

// WithTenant injects the tenant into the context for downstream handlers.
func WithTenant(ctx context.Context, user *models.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, user)
}

// IdentityFromContext returns the verified token claims of the caller.
func IdentityFromContext(ctx context.Context) (users.Identity, bool) {
	if ctx == nil {
		return users.Identity{}, false
	}
	v, ok := ctx.Value(ctxIdentity).(users.Identity)
	return v, ok
}

// WithIdentity injects the verified caller identity.
func WithIdentity(ctx context.Context, id users.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentity, id)
}
