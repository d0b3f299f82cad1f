package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/pressreach-backend/api/middleware"
	"github.com/angelmondragon/pressreach-backend/api/responses"
	"github.com/angelmondragon/pressreach-backend/api/validators"
	"github.com/angelmondragon/pressreach-backend/internal/outlets"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
)

type priceRequest struct {
	MediaIDs []uuid.UUID `json:"media_ids" validate:"required,min=1"`
}

func CategoryList(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// MediaList serves the public catalog. Contact fields are only included for
// authenticated callers.
func MediaList(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			f   outlets.Filter
			err error
		)
		if f.CategoryID, err = validators.ParseQueryUUID(r, "category_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if f.IsPremium, err = validators.ParseQueryBool(r, "is_premium"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if f.IsActive, err = validators.ParseQueryBool(r, "is_active"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withContacts := middleware.TenantFromContext(r.Context()) != nil
		items, err := svc.List(r.Context(), f, withContacts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func MediaCreate(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		var input outlets.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), tenant, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func MediaUpdate(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireTenant(w, r, logg); !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input outlets.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func MediaDelete(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireTenant(w, r, logg); !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "mediaId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "СМИ успешно удалено"})
	}
}

// CalculatePrice quotes the listed outlets. Unknown ids are ignored.
func CalculatePrice(svc outlets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body priceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.Quote(r.Context(), body.MediaIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
