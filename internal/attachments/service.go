// Package attachments stores distribution attachments on local disk.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type filesRepository interface {
	Create(ctx context.Context, file *models.DistributionFile) error
	ListByDistribution(ctx context.Context, distributionID uuid.UUID) ([]models.DistributionFile, error)
	Find(ctx context.Context, distributionID, fileID uuid.UUID) (*models.DistributionFile, error)
	Delete(ctx context.Context, fileID uuid.UUID) error
}

type blobStore interface {
	Write(distributionID uuid.UUID, ext string, r io.Reader) (string, int64, error)
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
}

// Upload is one incoming file.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// FileDTO is the API shape of an attachment. The disk path is never exposed.
type FileDTO struct {
	ID             uuid.UUID `json:"id"`
	DistributionID uuid.UUID `json:"distribution_id"`
	FileName       string    `json:"file_name"`
	FileSize       int64     `json:"file_size"`
	MimeType       string    `json:"mime_type"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// Download is an open attachment stream.
type Download struct {
	File *FileDTO
	Body io.ReadCloser
}

// Service operates on the attachments of one distribution. Callers must have
// checked that the tenant owns distributionID.
type Service interface {
	Attach(ctx context.Context, distributionID uuid.UUID, upload Upload) (*FileDTO, error)
	List(ctx context.Context, distributionID uuid.UUID) ([]FileDTO, error)
	Fetch(ctx context.Context, distributionID, fileID uuid.UUID) (*Download, error)
	Delete(ctx context.Context, distributionID, fileID uuid.UUID) error
	// Materialise loads every attachment for sending. Files missing on disk
	// are skipped and logged.
	Materialise(ctx context.Context, distributionID uuid.UUID) ([]mailer.Attachment, error)
}

type service struct {
	repo  filesRepository
	store blobStore
	logg  *logger.Logger
}

// NewService wires the attachment service.
func NewService(repo filesRepository, store blobStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("files repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, store: store, logg: logg}, nil
}

// FromModel converts a stored row.
func FromModel(f models.DistributionFile) FileDTO {
	return FileDTO{
		ID:             f.ID,
		DistributionID: f.DistributionID,
		FileName:       f.FileName,
		FileSize:       f.FileSize,
		MimeType:       f.MimeType,
		UploadedAt:     f.UploadedAt,
	}
}

func (s *service) Attach(ctx context.Context, distributionID uuid.UUID, upload Upload) (*FileDTO, error) {
	name := cleanFileName(upload.FileName)
	if name == "" || name == "." || name == "/" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if upload.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	ext, err := Extension(name)
	if err != nil {
		return nil, err
	}

	path, size, err := s.store.Write(distributionID, ext, upload.Body)
	if err != nil {
		return nil, err
	}

	row := &models.DistributionFile{
		DistributionID: distributionID,
		FileName:       name,
		FilePath:       path,
		FileSize:       size,
		MimeType:       mimeTypeFor(upload.ContentType, ext),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil && !IsMissing(rmErr) {
			s.logg.Error(s.logg.WithField(ctx, "file_path", path), "attachment.cleanup_failed", rmErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record attachment")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"distribution_id": distributionID.String(),
		"file_id":         row.ID.String(),
		"file_size":       size,
	})
	s.logg.Info(ctx, "attachment.stored")

	dto := FromModel(*row)
	return &dto, nil
}

func (s *service) List(ctx context.Context, distributionID uuid.UUID) ([]FileDTO, error) {
	rows, err := s.repo.ListByDistribution(ctx, distributionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attachments")
	}
	out := make([]FileDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out, nil
}

func (s *service) Fetch(ctx context.Context, distributionID, fileID uuid.UUID) (*Download, error) {
	row, err := s.find(ctx, distributionID, fileID)
	if err != nil {
		return nil, err
	}
	body, err := s.store.Open(row.FilePath)
	if err != nil {
		if IsMissing(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open attachment")
	}
	dto := FromModel(*row)
	return &Download{File: &dto, Body: body}, nil
}

func (s *service) Delete(ctx context.Context, distributionID, fileID uuid.UUID) error {
	row, err := s.find(ctx, distributionID, fileID)
	if err != nil {
		return err
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"distribution_id": distributionID.String(),
		"file_id":         fileID.String(),
	})
	if err := s.store.Remove(row.FilePath); err != nil {
		if IsMissing(err) {
			s.logg.Warn(ctx, "attachment.delete.file_missing")
		} else {
			s.logg.Error(ctx, "attachment.delete.file_failed", err)
		}
	}

	if err := s.repo.Delete(ctx, row.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete attachment")
	}
	s.logg.Info(ctx, "attachment.deleted")
	return nil
}

func (s *service) Materialise(ctx context.Context, distributionID uuid.UUID) ([]mailer.Attachment, error) {
	rows, err := s.repo.ListByDistribution(ctx, distributionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attachments")
	}

	out := make([]mailer.Attachment, 0, len(rows))
	for _, row := range rows {
		data, err := s.store.ReadFile(row.FilePath)
		if err != nil {
			fileCtx := s.logg.WithField(ctx, "file_id", row.ID.String())
			s.logg.Error(fileCtx, "attachment.read_failed", err)
			continue
		}
		out = append(out, mailer.Attachment{FileName: row.FileName, Data: data, MimeType: row.MimeType})
	}
	return out, nil
}

func (s *service) find(ctx context.Context, distributionID, fileID uuid.UUID) (*models.DistributionFile, error) {
	row, err := s.repo.Find(ctx, distributionID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attachment")
	}
	return row, nil
}

// ContentDisposition formats the download header for the original name.
func ContentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
