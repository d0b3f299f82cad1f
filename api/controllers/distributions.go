package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/pressreach-backend/api/middleware"
	"github.com/angelmondragon/pressreach-backend/api/responses"
	"github.com/angelmondragon/pressreach-backend/api/validators"
	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/internal/distributions"
	"github.com/angelmondragon/pressreach-backend/internal/pipeline"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/pagination"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope.
const multipartOverhead = 1 << 20

func DistributionCreate(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		var input pipeline.CreateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), tenant, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DistributionList returns the caller's distributions newest first.
func DistributionList(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := distributions.ListFilter{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseDistributionStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]string{"field": "status"}))
				return
			}
			filter.Status = &status
		}

		page, err := svc.List(r.Context(), tenant, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func DistributionGet(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), tenant, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func DistributionPreview(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		preview, err := svc.Preview(r.Context(), tenant, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// DistributionSend runs the delivery pipeline synchronously and reports the
// per-outlet outcome.
func DistributionSend(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Send(r.Context(), tenant, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DistributionUploadFile stores one multipart file under the "file" field.
func DistributionUploadFile(svc pipeline.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if maxBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
		}

		part, err := validators.MultipartFilePart(r, "file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, uploadError(err, maxBytes))
			return
		}
		file, err := svc.Attach(r.Context(), tenant, id, attachments.Upload{
			FileName:    part.FileName,
			ContentType: part.ContentType,
			Body:        part.Body,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, uploadError(err, maxBytes))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, file)
	}
}

func DistributionFiles(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		files, err := svc.Files(r.Context(), tenant, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, files)
	}
}

// DistributionFileDownload streams the stored bytes with the original name.
func DistributionFileDownload(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fileID, err := validators.ParseUUIDParam(r, "fileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		download, err := svc.Download(r.Context(), tenant, id, fileID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer download.Body.Close()

		w.Header().Set("Content-Type", download.File.MimeType)
		w.Header().Set("Content-Disposition", attachments.ContentDisposition(download.File.FileName))
		w.Header().Set("Content-Length", strconv.FormatInt(download.File.FileSize, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, download.Body); err != nil && logg != nil {
			logg.Error(logg.WithField(r.Context(), "file_id", fileID.String()), "attachment.download_interrupted", err)
		}
	}
}

func DistributionFileDelete(svc pipeline.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := middleware.RequireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "distributionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fileID, err := validators.ParseUUIDParam(r, "fileId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteFile(r.Context(), tenant, id, fileID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Файл удален"})
	}
}

func uploadError(err error, maxBytes int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.New(pkgerrors.CodeAttachmentTooLarge, "file exceeds the upload limit").
			WithDetails(map[string]int64{"max_bytes": maxBytes})
	}
	return err
}
