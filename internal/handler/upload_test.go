package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"UploadInbox/internal/service"
	"UploadInbox/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUploads struct {
	attempt model.UploadAttempt
	url     string
	err     error

	completed []string
	cancelled []string
}

func (s *stubUploads) InitiateNew(_ context.Context, _, _, _ string) (model.UploadAttempt, error) {
	return s.attempt, s.err
}

func (s *stubUploads) GetDetails(_ context.Context, _ string) (model.UploadAttempt, error) {
	return s.attempt, s.err
}

func (s *stubUploads) CreatePartURL(_ context.Context, _ string, _ int) (string, error) {
	return s.url, s.err
}

func (s *stubUploads) Complete(_ context.Context, uploadID string) error {
	s.completed = append(s.completed, uploadID)
	return s.err
}

func (s *stubUploads) Cancel(_ context.Context, uploadID string) error {
	s.cancelled = append(s.cancelled, uploadID)
	return s.err
}

type stubFiles struct {
	file model.FileMetadata
	err  error
}

func (s *stubFiles) GetByID(_ context.Context, _ string) (model.FileMetadata, error) {
	return s.file, s.err
}

func newTestRouter(uploads *stubUploads, files *stubFiles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(uploads, files, zap.NewNop().Sugar())
	r := gin.New()
	r.POST("/api/uploads", h.CreateUpload)
	r.GET("/api/uploads/:uploadID", h.GetUpload)
	r.PATCH("/api/uploads/:uploadID", h.UpdateUploadStatus)
	r.POST("/api/uploads/:uploadID/parts/:partNo/signed-urls", h.CreatePartURL)
	r.GET("/api/files/:fileID", h.GetFileMetadata)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCreateUpload(t *testing.T) {
	uploads := &stubUploads{attempt: model.UploadAttempt{UploadID: "upload-1", FileID: "file-1", Status: model.StatusPending}}
	r := newTestRouter(uploads, &stubFiles{})

	w := doRequest(t, r, http.MethodPost, "/api/uploads",
		`{"file_id": "file-1", "submitter_public_key": "pk", "storage_alias": "inbox"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var attempt model.UploadAttempt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attempt))
	assert.Equal(t, "upload-1", attempt.UploadID)
}

func TestCreateUploadRejectsIncompleteBody(t *testing.T) {
	r := newTestRouter(&stubUploads{}, &stubFiles{})

	w := doRequest(t, r, http.MethodPost, "/api/uploads", `{"file_id": "file-1"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformedRequest", decodeErrorBody(t, w)["exception_id"])
}

func TestCreateUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		exceptionID string
	}{
		{"unknown file", &service.FileUnknownError{FileID: "file-1"}, http.StatusNotFound, "fileNotRegistered"},
		{"active upload", &service.ExistingActiveUploadError{ActiveUpload: model.UploadAttempt{UploadID: "upload-0"}}, http.StatusBadRequest, "existingActiveUpload"},
		{"unknown alias", &service.UnknownStorageAliasError{StorageAlias: "nowhere"}, http.StatusBadRequest, "noSuchStorageAlias"},
		{"already in inbox", &service.FileAlreadyInInboxError{FileID: "file-1"}, http.StatusBadRequest, "fileAlreadyInInbox"},
		{"internal", assert.AnError, http.StatusInternalServerError, "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubUploads{err: tt.err}, &stubFiles{})

			w := doRequest(t, r, http.MethodPost, "/api/uploads",
				`{"file_id": "file-1", "submitter_public_key": "pk", "storage_alias": "inbox"}`)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.exceptionID, decodeErrorBody(t, w)["exception_id"])
		})
	}
}

func TestGetUpload(t *testing.T) {
	uploads := &stubUploads{attempt: model.UploadAttempt{UploadID: "upload-1", Status: model.StatusUploaded}}
	r := newTestRouter(uploads, &stubFiles{})

	w := doRequest(t, r, http.MethodGet, "/api/uploads/upload-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	r = newTestRouter(&stubUploads{err: &service.UnknownUploadError{UploadID: "nope"}}, &stubFiles{})
	w = doRequest(t, r, http.MethodGet, "/api/uploads/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "noSuchUpload", decodeErrorBody(t, w)["exception_id"])
}

func TestUpdateUploadStatus(t *testing.T) {
	uploads := &stubUploads{}
	r := newTestRouter(uploads, &stubFiles{})

	w := doRequest(t, r, http.MethodPatch, "/api/uploads/upload-1", `{"status": "uploaded"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, r, http.MethodPatch, "/api/uploads/upload-1", `{"status": "cancelled"}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, []string{"upload-1"}, uploads.completed)
	assert.Equal(t, []string{"upload-1"}, uploads.cancelled)
}

func TestUpdateUploadStatusRejectsTerminalTargets(t *testing.T) {
	r := newTestRouter(&stubUploads{}, &stubFiles{})

	w := doRequest(t, r, http.MethodPatch, "/api/uploads/upload-1", `{"status": "accepted"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformedRequest", decodeErrorBody(t, w)["exception_id"])
}

func TestUpdateUploadStatusMismatch(t *testing.T) {
	uploads := &stubUploads{err: &service.UploadStatusMismatchError{
		UploadID:       "upload-1",
		ExpectedStatus: model.StatusPending,
		CurrentStatus:  model.StatusCancelled,
	}}
	r := newTestRouter(uploads, &stubFiles{})

	w := doRequest(t, r, http.MethodPatch, "/api/uploads/upload-1", `{"status": "uploaded"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeErrorBody(t, w)
	assert.Equal(t, "uploadStatusMismatch", body["exception_id"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["expected_status"])
	assert.Equal(t, "cancelled", data["current_status"])
}

func TestCreatePartURL(t *testing.T) {
	uploads := &stubUploads{url: "https://storage.test/part"}
	r := newTestRouter(uploads, &stubFiles{})

	w := doRequest(t, r, http.MethodPost, "/api/uploads/upload-1/parts/3/signed-urls", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://storage.test/part", resp["url"])
}

func TestCreatePartURLValidatesPartNumber(t *testing.T) {
	r := newTestRouter(&stubUploads{url: "unused"}, &stubFiles{})

	for _, partNo := range []string{"0", "10001", "-1", "abc"} {
		w := doRequest(t, r, http.MethodPost, "/api/uploads/upload-1/parts/"+partNo+"/signed-urls", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "part number %s", partNo)
	}
}

func TestGetFileMetadata(t *testing.T) {
	files := &stubFiles{file: model.FileMetadata{FileID: "file-1", FileName: "study.cram"}}
	r := newTestRouter(&stubUploads{}, files)

	w := doRequest(t, r, http.MethodGet, "/api/files/file-1", "")
	require.Equal(t, http.StatusOK, w.Code)

	r = newTestRouter(&stubUploads{}, &stubFiles{err: &service.FileUnknownError{FileID: "missing"}})
	w = doRequest(t, r, http.MethodGet, "/api/files/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "fileNotRegistered", decodeErrorBody(t, w)["exception_id"])
}
