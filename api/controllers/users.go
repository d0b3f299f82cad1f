package controllers

import (
	"net/http"

	"github.com/angelmondragon/pressreach-backend/api/middleware"
	"github.com/angelmondragon/pressreach-backend/api/responses"
	"github.com/angelmondragon/pressreach-backend/internal/users"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

// UserSync refreshes the tenant from the token claims and stamps last_login.
func UserSync(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		result, err := svc.Sync(r.Context(), identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func UserStats(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		stats, err := svc.Stats(r.Context(), tenant.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
