package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressreach-backend/api/middleware"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/types"
)

func testTenant() *models.User {
	return &models.User{ID: uuid.New(), ClerkUserID: "user_1", Email: "ivan@acme.test", FirstName: "Ivan"}
}

func newRequest(method, target string, body io.Reader, tenant *models.User, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := req.Context()
	if tenant != nil {
		ctx = middleware.WithTenant(ctx, tenant)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func decodeErr(t *testing.T, resp *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
