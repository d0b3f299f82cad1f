package pagination

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorIsURLSafe(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 12, 30, 0, 1500, time.UTC), ID: uuid.New()}
	token := EncodeCursor(in)
	assert.False(t, strings.ContainsAny(token, "+/="), token)

	out, err := ParseCursor(token)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	c, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseCursor("%%%")
	require.Error(t, err)

	_, err = ParseCursor(base64.RawURLEncoding.EncodeToString([]byte("nopipe")))
	require.Error(t, err)

	_, err = ParseCursor(base64.RawURLEncoding.EncodeToString([]byte("2026-03-01T00:00:00Z|not-a-uuid")))
	require.Error(t, err)
}

func TestPage(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	key := func(i int) Cursor { return Cursor{CreatedAt: base.Add(-time.Duration(i) * time.Minute), ID: ids[i]} }

	rows, next := Page([]int{0, 1, 2}, 2, key)
	assert.Equal(t, []int{0, 1}, rows)
	require.NotEmpty(t, next)
	c, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, ids[1], c.ID)

	rows, next = Page([]int{0}, 2, key)
	assert.Equal(t, []int{0}, rows)
	assert.Empty(t, next)
}
