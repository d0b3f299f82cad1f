package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pressreach-backend/internal/attachments"
	"github.com/angelmondragon/pressreach-backend/internal/distributions"
	"github.com/angelmondragon/pressreach-backend/internal/pipeline"
	"github.com/angelmondragon/pressreach-backend/pkg/db/models"
	"github.com/angelmondragon/pressreach-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pressreach-backend/pkg/errors"
)

type testPipelineService struct {
	createFn     func(ctx context.Context, tenant *models.User, in pipeline.CreateInput) (*pipeline.Created, error)
	getFn        func(ctx context.Context, tenant *models.User, id uuid.UUID) (*pipeline.Detail, error)
	listFn       func(ctx context.Context, tenant *models.User, f distributions.ListFilter) (*pipeline.Page, error)
	previewFn    func(ctx context.Context, tenant *models.User, id uuid.UUID) (*pipeline.Preview, error)
	sendFn       func(ctx context.Context, tenant *models.User, id uuid.UUID) (*pipeline.SendResult, error)
	attachFn     func(ctx context.Context, tenant *models.User, id uuid.UUID, upload attachments.Upload) (*attachments.FileDTO, error)
	filesFn      func(ctx context.Context, tenant *models.User, id uuid.UUID) ([]attachments.FileDTO, error)
	downloadFn   func(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) (*attachments.Download, error)
	deleteFileFn func(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) error
}

func (s *testPipelineService) Create(ctx context.Context, tenant *models.User, in pipeline.CreateInput) (*pipeline.Created, error) {
	return s.createFn(ctx, tenant, in)
}

func (s *testPipelineService) Get(ctx context.Context, tenant *models.User, id uuid.UUID) (*pipeline.Detail, error) {
	return s.getFn(ctx, tenant, id)
}

func (s *testPipelineService) List(ctx context.Context, tenant *models.User, f distributions.ListFilter) (*pipeline.Page, error) {
	return s.listFn(ctx, tenant, f)
}

func (s *testPipelineService) Preview(ctx context.Context, tenant *models.User, id uuid.UUID) (*pipeline.Preview, error) {
	return s.previewFn(ctx, tenant, id)
}

func (s *testPipelineService) Send(ctx context.Context, tenant *models.User, id uuid.UUID) (*pipeline.SendResult, error) {
	return s.sendFn(ctx, tenant, id)
}

func (s *testPipelineService) Attach(ctx context.Context, tenant *models.User, id uuid.UUID, upload attachments.Upload) (*attachments.FileDTO, error) {
	return s.attachFn(ctx, tenant, id, upload)
}

func (s *testPipelineService) Files(ctx context.Context, tenant *models.User, id uuid.UUID) ([]attachments.FileDTO, error) {
	return s.filesFn(ctx, tenant, id)
}

func (s *testPipelineService) Download(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) (*attachments.Download, error) {
	return s.downloadFn(ctx, tenant, id, fileID)
}

func (s *testPipelineService) DeleteFile(ctx context.Context, tenant *models.User, id, fileID uuid.UUID) error {
	return s.deleteFileFn(ctx, tenant, id, fileID)
}

func TestDistributionCreate(t *testing.T) {
	tenant := testTenant()
	mediaID := uuid.New()
	created := &pipeline.Created{ID: uuid.New(), Status: enums.DistributionStatusPending, TotalPrice: decimal.NewFromInt(1000), TotalMediaCount: 1, CreatedAt: time.Now().UTC()}
	svc := &testPipelineService{
		createFn: func(ctx context.Context, got *models.User, in pipeline.CreateInput) (*pipeline.Created, error) {
			assert.Equal(t, tenant.ID, got.ID)
			assert.Equal(t, "Launch", in.Title)
			assert.Equal(t, []uuid.UUID{mediaID}, in.MediaIDs)
			return created, nil
		},
	}

	body := `{"press_release_title":"Launch","press_release_content":"Body","media_ids":["` + mediaID.String() + `"]}`
	resp := httptest.NewRecorder()
	DistributionCreate(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/distributions", jsonBody(body), tenant, nil))

	require.Equal(t, http.StatusCreated, resp.Code)
	var out pipeline.Created
	decodeData(t, resp, &out)
	assert.Equal(t, created.ID, out.ID)
	assert.Equal(t, "1000", out.TotalPrice.String())
}

func TestDistributionCreateValidation(t *testing.T) {
	svc := &testPipelineService{
		createFn: func(context.Context, *models.User, pipeline.CreateInput) (*pipeline.Created, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	resp := httptest.NewRecorder()
	DistributionCreate(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/api/distributions", jsonBody(`{"press_release_title":"x","media_ids":[]}`), testTenant(), nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	body := decodeErr(t, resp)
	assert.Equal(t, string(pkgerrors.CodeValidation), body.Error.Code)
	assert.NotEmpty(t, body.Detail)
}

func TestDistributionRequiresTenant(t *testing.T) {
	resp := httptest.NewRecorder()
	DistributionGet(&testPipelineService{}, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/", nil, nil, map[string]string{"distributionId": uuid.NewString()}))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDistributionGetBadID(t *testing.T) {
	resp := httptest.NewRecorder()
	DistributionGet(&testPipelineService{}, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/", nil, testTenant(), map[string]string{"distributionId": "nope"}))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDistributionGetNotFound(t *testing.T) {
	svc := &testPipelineService{
		getFn: func(context.Context, *models.User, uuid.UUID) (*pipeline.Detail, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Рассылка не найдена")
		},
	}
	resp := httptest.NewRecorder()
	DistributionGet(svc, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/", nil, testTenant(), map[string]string{"distributionId": uuid.NewString()}))
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Рассылка не найдена", decodeErr(t, resp).Detail)
}

func TestDistributionListParsesFilters(t *testing.T) {
	var seen distributions.ListFilter
	svc := &testPipelineService{
		listFn: func(_ context.Context, _ *models.User, f distributions.ListFilter) (*pipeline.Page, error) {
			seen = f
			return &pipeline.Page{Items: []pipeline.Summary{}, NextCursor: "next"}, nil
		},
	}
	resp := httptest.NewRecorder()
	DistributionList(svc, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/api/distributions?status=completed&limit=10&cursor=abc", nil, testTenant(), nil))

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, seen.Status)
	assert.Equal(t, enums.DistributionStatusCompleted, *seen.Status)
	assert.Equal(t, 10, seen.Limit)
	assert.Equal(t, "abc", seen.Cursor)

	var page pipeline.Page
	decodeData(t, resp, &page)
	assert.Equal(t, "next", page.NextCursor)
}

func TestDistributionListRejectsUnknownStatus(t *testing.T) {
	resp := httptest.NewRecorder()
	DistributionList(&testPipelineService{}, nil).ServeHTTP(resp, newRequest(http.MethodGet, "/api/distributions?status=bogus", nil, testTenant(), nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDistributionSendAlreadySent(t *testing.T) {
	svc := &testPipelineService{
		sendFn: func(context.Context, *models.User, uuid.UUID) (*pipeline.SendResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadySent, "Рассылка уже отправлена")
		},
	}
	resp := httptest.NewRecorder()
	DistributionSend(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/", nil, testTenant(), map[string]string{"distributionId": uuid.NewString()}))
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeAlreadySent), decodeErr(t, resp).Error.Code)
}

func TestDistributionSendResult(t *testing.T) {
	id := uuid.New()
	svc := &testPipelineService{
		sendFn: func(_ context.Context, _ *models.User, got uuid.UUID) (*pipeline.SendResult, error) {
			return &pipeline.SendResult{DistributionID: got, Total: 2, SentCount: 1, FailedCount: 1, Status: enums.DistributionStatusPartiallyCompleted}, nil
		},
	}
	resp := httptest.NewRecorder()
	DistributionSend(svc, nil).ServeHTTP(resp, newRequest(http.MethodPost, "/", nil, testTenant(), map[string]string{"distributionId": id.String()}))

	require.Equal(t, http.StatusOK, resp.Code)
	var out pipeline.SendResult
	decodeData(t, resp, &out)
	assert.Equal(t, id, out.DistributionID)
	assert.Equal(t, enums.DistributionStatusPartiallyCompleted, out.Status)
}

func multipartUpload(t *testing.T, field, name string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDistributionUploadFile(t *testing.T) {
	id := uuid.New()
	svc := &testPipelineService{
		attachFn: func(_ context.Context, _ *models.User, got uuid.UUID, upload attachments.Upload) (*attachments.FileDTO, error) {
			data, err := io.ReadAll(upload.Body)
			require.NoError(t, err)
			assert.Equal(t, "release.pdf", upload.FileName)
			return &attachments.FileDTO{ID: uuid.New(), DistributionID: got, FileName: upload.FileName, FileSize: int64(len(data)), MimeType: "application/pdf"}, nil
		},
	}
	body, contentType := multipartUpload(t, "file", "release.pdf", []byte("%PDF-1.4 test"))
	req := newRequest(http.MethodPost, "/", body, testTenant(), map[string]string{"distributionId": id.String()})
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	DistributionUploadFile(svc, 1<<20, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var out attachments.FileDTO
	decodeData(t, resp, &out)
	assert.Equal(t, int64(len("%PDF-1.4 test")), out.FileSize)
	assert.Equal(t, id, out.DistributionID)
}

func TestDistributionUploadFileTooLarge(t *testing.T) {
	svc := &testPipelineService{
		attachFn: func(_ context.Context, _ *models.User, _ uuid.UUID, upload attachments.Upload) (*attachments.FileDTO, error) {
			_, err := io.ReadAll(upload.Body)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
			}
			return &attachments.FileDTO{}, nil
		},
	}
	body, contentType := multipartUpload(t, "file", "big.pdf", bytes.Repeat([]byte("x"), 2*multipartOverhead))
	req := newRequest(http.MethodPost, "/", body, testTenant(), map[string]string{"distributionId": uuid.NewString()})
	req.Header.Set("Content-Type", contentType)

	resp := httptest.NewRecorder()
	DistributionUploadFile(svc, 16, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeAttachmentTooLarge), decodeErr(t, resp).Error.Code)
}

func TestDistributionFileDownload(t *testing.T) {
	fileID := uuid.New()
	svc := &testPipelineService{
		downloadFn: func(context.Context, *models.User, uuid.UUID, uuid.UUID) (*attachments.Download, error) {
			return &attachments.Download{
				File: &attachments.FileDTO{ID: fileID, FileName: "пресс-релиз.pdf", FileSize: 5, MimeType: "application/pdf"},
				Body: io.NopCloser(strings.NewReader("%PDF-")),
			}, nil
		},
	}
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodGet, "/", nil, testTenant(), map[string]string{"distributionId": uuid.NewString(), "fileId": fileID.String()})
	DistributionFileDownload(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, "5", resp.Header().Get("Content-Length"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "%PDF-", resp.Body.String())
}

func TestDistributionFileDelete(t *testing.T) {
	var deleted uuid.UUID
	fileID := uuid.New()
	svc := &testPipelineService{
		deleteFileFn: func(_ context.Context, _ *models.User, _ uuid.UUID, got uuid.UUID) error {
			deleted = got
			return nil
		},
	}
	resp := httptest.NewRecorder()
	req := newRequest(http.MethodDelete, "/", nil, testTenant(), map[string]string{"distributionId": uuid.NewString(), "fileId": fileID.String()})
	DistributionFileDelete(svc, nil).ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, fileID, deleted)
}
