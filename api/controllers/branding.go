package controllers

import (
	"net/http"

	"github.com/angelmondragon/pressreach-backend/api/middleware"
	"github.com/angelmondragon/pressreach-backend/api/responses"
	"github.com/angelmondragon/pressreach-backend/api/validators"
	"github.com/angelmondragon/pressreach-backend/internal/branding"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

const maxPreviewTitleLen = 500

type brandingPreviewRequest struct {
	Title   string `json:"press_release_title" validate:"required"`
	Content string `json:"press_release_content" validate:"required"`
}

// BrandingGet returns the tenant profile, creating the default one on first read.
func BrandingGet(svc branding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		profile, err := svc.Get(r.Context(), tenant)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func BrandingUpdate(svc branding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		var input branding.UpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.Update(r.Context(), tenant, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// BrandingPreviewEmail renders an ad-hoc release with the tenant branding.
func BrandingPreviewEmail(svc branding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		var body brandingPreviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		preview, err := svc.PreviewEmail(r.Context(), tenant, validators.SanitizeString(body.Title, maxPreviewTitleLen), body.Content)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}
