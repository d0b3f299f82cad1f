package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

// MultipartFile is the first file part of a multipart request found under
// the requested form field. Body streams straight from the request.
type MultipartFile struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// MultipartFilePart scans a multipart/form-data body for field. Parts before it
// are skipped. The caller must consume Body before the handler returns.
func MultipartFilePart(r *http.Request, field string) (*MultipartFile, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "multipart form data required")
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required").WithDetails(map[string]string{"field": field})
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed multipart body")
		}
		if part.FormName() != field || part.FileName() == "" {
			_ = drain(part)
			continue
		}
		return &MultipartFile{
			FileName:    part.FileName(),
			ContentType: strings.TrimSpace(part.Header.Get("Content-Type")),
			Body:        part,
		}, nil
	}
}

func drain(p *multipart.Part) error {
	_, err := io.Copy(io.Discard, p)
	return err
}
