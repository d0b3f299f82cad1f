package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DistributionFile is an attachment stored on local disk. FileName is the
// original upload name used in MIME headers; FilePath is never exposed.
type DistributionFile struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	DistributionID uuid.UUID `gorm:"column:distribution_id;type:uuid;not null;index"`
	FileName       string    `gorm:"column:file_name;not null"`
	FilePath       string    `gorm:"column:file_path;not null"`
	FileSize       int64     `gorm:"column:file_size;not null"`
	MimeType       string    `gorm:"column:mime_type;not null"`
	UploadedAt     time.Time `gorm:"column:uploaded_at;autoCreateTime"`
}

func (f *DistributionFile) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
