package attachments

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

var allowedExtensions = map[string]struct{}{
	"pdf": {}, "doc": {}, "docx": {}, "ppt": {}, "pptx": {}, "xls": {}, "xlsx": {},
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
	"zip": {}, "rar": {}, "7z": {}, "txt": {}, "csv": {},
}

// Extension returns the lower-cased extension of name when it is allowed.
func Extension(name string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", pkgerrors.New(pkgerrors.CodeBadAttachmentType, "file type not allowed").
			WithDetails(map[string]string{"file_name": name})
	}
	return ext, nil
}

// mimeTypeFor prefers the declared type and falls back to the extension.
func mimeTypeFor(declared, ext string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			return strings.ToLower(mediaType)
		}
	}
	if byExt := mime.TypeByExtension("." + ext); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return "application/octet-stream"
}

// cleanFileName keeps the base name and drops control characters so the
// original name is safe to reuse in MIME headers.
func cleanFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' {
			return -1
		}
		return r
	}, base))
}
