package validators

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

type createBody struct {
	Title    string   `json:"press_release_title" validate:"required,max=10"`
	Email    string   `json:"contact_email" validate:"omitempty,email"`
	MediaIDs []string `json:"media_ids" validate:"required,min=1"`
}

func TestDecodeJSONBodyReportsJSONFieldNames(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"press_release_title":"","contact_email":"nope","media_ids":[]}`))
	var body createBody
	err := DecodeJSONBody(r, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["press_release_title"])
	assert.Equal(t, "must be a valid email", details["contact_email"])
	assert.Equal(t, "must contain at least 1 item(s)", details["media_ids"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"press_release_title":"x","media_ids":["a"],"extra":1}`))
	var body createBody
	err := DecodeJSONBody(r, &body)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = BearerToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	token, err = BearerToken("abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	for _, raw := range []string{"", "   ", "Bearer ", "Bearer", "BEARER\t", "Bearer a b"} {
		_, err := BearerToken(raw)
		assert.ErrorIs(t, err, ErrMissingToken, raw)
	}
}

func TestParseQueryHelpers(t *testing.T) {
	id := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/?limit=20&is_premium=true&category_id="+id.String(), nil)

	limit, err := ParseQueryInt(r, "limit", 50, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	premium, err := ParseQueryBool(r, "is_premium")
	require.NoError(t, err)
	require.NotNil(t, premium)
	assert.True(t, *premium)

	active, err := ParseQueryBool(r, "is_active")
	require.NoError(t, err)
	assert.Nil(t, active)

	category, err := ParseQueryUUID(r, "category_id")
	require.NoError(t, err)
	assert.Equal(t, id, *category)

	bad := httptest.NewRequest(http.MethodGet, "/?limit=500&is_premium=maybe&category_id=x", nil)
	_, err = ParseQueryInt(bad, "limit", 50, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryBool(bad, "is_premium")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryUUID(bad, "category_id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	got, err := ParseUUIDParam(r, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseUUIDParam(r, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMultipartFilePart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile("file", "release.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	file, err := MultipartFilePart(r, "file")
	require.NoError(t, err)
	assert.Equal(t, "release.pdf", file.FileName)
	body, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
}

func TestMultipartFilePartMissing(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "only"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	_, err := MultipartFilePart(r, "file")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	plain := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	plain.Header.Set("Content-Type", "application/json")
	_, err = MultipartFilePart(plain, "file")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsEmptyAndTrailingData(t *testing.T) {
	var body createBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	require.Error(t, err)
	assert.Equal(t, "request body required", pkgerrors.As(err).Message())

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"press_release_title":"x","media_ids":["a"]} {}`)), &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeStringIsRuneAware(t *testing.T) {
	assert.Equal(t, "Запуск", SanitizeString("  Запуск продукта ", 6))
	assert.Equal(t, "a\tb", SanitizeString("a\tb\x00", 0))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2\u0007", 100))
}
