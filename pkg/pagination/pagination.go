// Package pagination implements keyset paging over (created_at, id) in
// descending order.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultLimit is the page size when the caller sends none.
	DefaultLimit = 50
	// MaxLimit caps any single page.
	MaxLimit = 100
)

// Cursor points at the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer is the normalised limit plus one look-ahead row.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor returns an opaque, URL-safe token for c.
func EncodeCursor(c Cursor) string {
	payload := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a token from EncodeCursor. A blank value is the first
// page and yields nil without error.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(value, "="))
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	createdAt, id, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: t, ID: uid}, nil
}

// After restricts q to rows strictly older than c in (created_at, id) DESC
// order and applies that ordering plus the look-ahead limit. A nil cursor
// only orders and limits.
func After(q *gorm.DB, c *Cursor, limit int) *gorm.DB {
	if c != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", c.CreatedAt, c.CreatedAt, c.ID)
	}
	return q.Order("created_at DESC").Order("id DESC").Limit(LimitWithBuffer(limit))
}

// Page trims the look-ahead row and returns the cursor for the next page,
// empty when rows was the last page.
func Page[T any](rows []T, limit int, key func(T) Cursor) ([]T, string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	rows = rows[:limit]
	return rows, EncodeCursor(key(rows[len(rows)-1]))
}
