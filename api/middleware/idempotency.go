package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/pressreach-backend/api/responses"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/pressreach-backend/pkg/redis"
)

const (
	// DefaultIdempotencyTTL is how long a stored response is replayed.
	DefaultIdempotencyTTL = 24 * time.Hour
	// idempotencyPendingTTL bounds a reservation whose request never finished.
	idempotencyPendingTTL = 15 * time.Minute
	maxIdempotencyKeyLen  = 255

	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
)

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a tenant repeats a request
// with the same Idempotency-Key. The key is reserved before the handler runs,
// so a concurrent retry gets 409 instead of a second send. Requests without
// the header, or with a nil store, pass through. Mount it per route behind
// Auth so the scope carries the tenant.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
			if idempotencyKey == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(idempotencyKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long").
					WithDetails(map[string]int{"max_length": maxIdempotencyKeyLen}))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), idempotencyKey)

			pending, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency reservation"))
				return
			}
			reserved, err := store.SetNX(ctx, key, string(pending), idempotencyPendingTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replayExisting(ctx, w, store, key, requestHash, logg)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// Never pin a server failure: release the key so the client may retry.
			persistCtx := context.WithoutCancel(ctx)
			if rec.status >= http.StatusInternalServerError {
				if delErr := store.Del(persistCtx, key); delErr != nil {
					logError(ctx, logg, "idempotency.release_failed", delErr)
				}
				return
			}

			record := idempotencyRecord{
				Status:      defaultStatus(rec.status),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, err := json.Marshal(record)
			if err != nil {
				logError(ctx, logg, "idempotency.marshal_failed", err)
				return
			}
			if err := store.Set(persistCtx, key, string(payload), ttl); err != nil {
				logError(ctx, logg, "idempotency.persist_failed", err)
			}
		})
	}
}

func replayExisting(ctx context.Context, w http.ResponseWriter, store pkgredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	stored, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// Reservation expired between SetNX and Get.
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request in progress, retry"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	switch {
	case record.RequestHash != requestHash:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case record.Pending:
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotent request in progress, retry"))
	default:
		writeStoredResponse(w, &record)
	}
}

func buildScope(r *http.Request) string {
	tenant := "anonymous"
	if user := TenantFromContext(r.Context()); user != nil {
		tenant = user.ID.String()
	}
	return strings.Join([]string{tenant, r.Method, r.URL.Path}, "|")
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(defaultStatus(record.Status))
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
