package attachments

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/google/uuid"
)

// DiskStore keeps attachment bytes under <root>/<distribution_id>/<random>.<ext>.
type DiskStore struct {
	root     string
	maxBytes int64
}

// NewDiskStore resolves root to an absolute path and creates it.
func NewDiskStore(root string, maxBytes int64) (*DiskStore, error) {
	if root == "" {
		return nil, fmt.Errorf("upload root required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &DiskStore{root: abs, maxBytes: maxBytes}, nil
}

// Root is the absolute upload root.
func (s *DiskStore) Root() string { return s.root }

// MaxBytes is the per-file size limit.
func (s *DiskStore) MaxBytes() int64 { return s.maxBytes }

// Write streams r to a fresh file for the distribution. The partial file is
// removed on any failure, including exceeding the size limit.
func (s *DiskStore) Write(distributionID uuid.UUID, ext string, r io.Reader) (string, int64, error) {
	dir := filepath.Join(s.root, distributionID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attachment directory")
	}

	dst := filepath.Join(dir, uuid.NewString()+"."+ext)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attachment file")
	}
	discard := func(err error) (string, int64, error) {
		_ = os.Remove(dst)
		return "", 0, err
	}

	size, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if copyErr != nil {
		return discard(pkgerrors.Wrap(pkgerrors.CodeValidation, copyErr, "read upload"))
	}
	if closeErr != nil {
		return discard(pkgerrors.Wrap(pkgerrors.CodeDependency, closeErr, "write attachment file"))
	}
	if size > s.maxBytes {
		return discard(pkgerrors.New(pkgerrors.CodeAttachmentTooLarge, "file exceeds the upload limit").
			WithDetails(map[string]int64{"max_bytes": s.maxBytes}))
	}
	return dst, size, nil
}

// Open returns a reader over a stored file.
func (s *DiskStore) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ReadFile loads a stored file into memory.
func (s *DiskStore) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes a stored file. A missing file is reported as os.ErrNotExist.
func (s *DiskStore) Remove(path string) error {
	return os.Remove(path)
}

// Dir is one per-distribution directory under the upload root.
type Dir struct {
	DistributionID uuid.UUID
	ModTime        time.Time
}

// Dirs lists the distribution directories under the root. Entries whose name
// is not a distribution id are ignored.
func (s *DiskStore) Dirs() ([]Dir, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read upload root: %w", err)
	}
	dirs := make([]Dir, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := uuid.Parse(e.Name())
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if IsMissing(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		dirs = append(dirs, Dir{DistributionID: id, ModTime: info.ModTime()})
	}
	return dirs, nil
}

// RemoveDir deletes a distribution directory and everything in it.
func (s *DiskStore) RemoveDir(distributionID uuid.UUID) error {
	return os.RemoveAll(filepath.Join(s.root, distributionID.String()))
}

// IsMissing reports whether err means the file is already gone.
func IsMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
