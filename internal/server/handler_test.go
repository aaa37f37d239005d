package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careermatch/internal/config"
	careermatchErrors "careermatch/internal/errors"
	"careermatch/internal/observability"
	"careermatch/internal/storage"
)

func newTestServer(t *testing.T, apiKeys ...string) (*Server, http.Handler) {
	t.Helper()

	logger, err := careermatchErrors.New("error")
	require.NoError(t, err)

	appCfg := &config.Config{}
	appCfg.Storage = config.StorageConfig{PersistArtifacts: false}
	appCfg.Extract = config.ExtractConfig{
		FetchTimeout: 5 * time.Second,
		UserAgent:    "test-agent",
	}
	appCfg.Observability.Enabled = false
	appCfg.Observability.HealthCheck.Timeout = time.Second

	srv := NewServer(appCfg, ServerConfig{
		Host:           "localhost",
		Port:           "0",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1 << 20,
	}, logger)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{
		ServiceName: "careermatch-test",
		Enabled:     false,
	}, appCfg)
	require.NoError(t, err)

	return srv, srv.setupRoutes(om)
}

func postJSON(mux http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAnalyzeHandlerValidation(t *testing.T) {
	_, mux := newTestServer(t)

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request body", decodeError(t, rec).Error)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rec := postJSON(mux, "/analyze", "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing cv text", func(t *testing.T) {
		rec := postJSON(mux, "/analyze", `{"jobText":"Go developer wanted"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing CV text", decodeError(t, rec).Error)
	})

	t.Run("missing job text", func(t *testing.T) {
		rec := postJSON(mux, "/analyze", `{"cvText":"Experienced Go developer"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing job text", decodeError(t, rec).Error)
	})

	t.Run("whitespace only counts as missing", func(t *testing.T) {
		rec := postJSON(mux, "/analyze", `{"cvText":"  \n ","jobText":"something"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("missing key rejected", func(t *testing.T) {
		_, mux := newTestServer(t, "secret-key-12345")

		rec := postJSON(mux, "/analyze", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Missing API key", decodeError(t, rec).Error)
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		_, mux := newTestServer(t, "secret-key-12345")

		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "wrong-key")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid API key", decodeError(t, rec).Error)
	})

	t.Run("valid key passes through", func(t *testing.T) {
		_, mux := newTestServer(t, "secret-key-12345")

		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", "secret-key-12345")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		// Reaches the handler, which rejects the empty payload
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bearer token accepted", func(t *testing.T) {
		_, mux := newTestServer(t, "secret-key-12345")

		req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret-key-12345")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no keys configured means open access", func(t *testing.T) {
		_, mux := newTestServer(t)

		rec := postJSON(mux, "/analyze", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestJobStatusHandler(t *testing.T) {
	srv, mux := newTestServer(t)

	t.Run("unknown job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs/0123456789abcdef0123456789abcdef", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, careermatchErrors.ErrCodeJobNotFound, decodeError(t, rec).Code)
	})

	t.Run("known job", func(t *testing.T) {
		jobID := srv.Store.NewJob()
		srv.Store.SetStatus(jobID, storage.StatusRunning, "")

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+jobID, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var record storage.JobRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
		assert.Equal(t, jobID, record.ID)
		assert.Equal(t, storage.StatusRunning, record.Status)
	})
}

func TestJobReportHandler(t *testing.T) {
	srv, mux := newTestServer(t)

	t.Run("unknown job", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs/deadbeef/report", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("job not done yet", func(t *testing.T) {
		jobID := srv.Store.NewJob()
		srv.Store.SetStatus(jobID, storage.StatusRunning, "")

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+jobID+"/report", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, careermatchErrors.ErrCodeJobNotReady, resp.Code)
		assert.Contains(t, resp.Message, "RUNNING")
	})

	t.Run("serves json report when done", func(t *testing.T) {
		jobID := srv.Store.NewJob()
		srv.Store.SetResult(jobID, []byte(`{"fit_score":80}`), []byte("<html>report</html>"))

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+jobID+"/report", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"fit_score":80}`, rec.Body.String())
	})

	t.Run("serves html report when done", func(t *testing.T) {
		jobID := srv.Store.NewJob()
		srv.Store.SetResult(jobID, []byte(`{"fit_score":80}`), []byte("<html>report</html>"))

		req := httptest.NewRequest(http.MethodGet, "/jobs/"+jobID+"/report.html", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "<html>report</html>", rec.Body.String())
	})
}

func TestUploadHandlerValidation(t *testing.T) {
	_, mux := newTestServer(t)

	postMultipart := func(t *testing.T, fields map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range fields {
			require.NoError(t, writer.WriteField(key, value))
		}
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/jobs", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	t.Run("not multipart", func(t *testing.T) {
		rec := postJSON(mux, "/jobs", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, careermatchErrors.ErrCodeInvalidRequest, decodeError(t, rec).Code)
	})

	t.Run("missing cv", func(t *testing.T) {
		rec := postMultipart(t, map[string]string{"job_text": "Go developer wanted"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, careermatchErrors.ErrCodeEmptyInput, decodeError(t, rec).Code)
	})

	t.Run("missing job reference", func(t *testing.T) {
		rec := postMultipart(t, map[string]string{"cv_text": "Experienced Go developer"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, careermatchErrors.ErrCodeEmptyInput, decodeError(t, rec).Code)
	})

	t.Run("blank cv text", func(t *testing.T) {
		rec := postMultipart(t, map[string]string{
			"cv_text":  "   \n\n  ",
			"job_text": "Go developer wanted",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUploadHandlerAcceptsJob(t *testing.T) {
	srv, mux := newTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("cv_text", "Experienced Go developer with Kubernetes"))
	require.NoError(t, writer.WriteField("job_text", "Looking for a Go developer"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/jobs", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp JobAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, "^[0-9a-f]{32}$", resp.JobID)
	assert.Equal(t, string(storage.StatusUploaded), resp.Status)

	// The job exists in the registry; the background run races this check so
	// its status is not asserted.
	_, ok := srv.Store.Get(resp.JobID)
	assert.True(t, ok)
}

func TestStatsHandler(t *testing.T) {
	srv, mux := newTestServer(t)
	srv.Store.NewJob()
	jobID := srv.Store.NewJob()
	srv.Store.SetStatus(jobID, storage.StatusError, "fetch failed")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "careermatch", resp["service"])

	jobs, ok := resp["jobs"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), jobs["UPLOADED"])
	assert.Equal(t, float64(1), jobs["ERROR"])
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedError  string
		expectedCode   string
	}{
		{
			name: "invalid input",
			err: careermatchErrors.NewValidationError(careermatchErrors.ErrCodeEmptyInput,
				"CV is empty", nil),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid input",
			expectedCode:   careermatchErrors.ErrCodeEmptyInput,
		},
		{
			name: "schema violation",
			err: careermatchErrors.NewAIError(careermatchErrors.ErrCodeSchemaViolation,
				"missing required key: gaps", nil),
			expectedStatus: http.StatusBadGateway,
			expectedError:  "Model output rejected",
			expectedCode:   careermatchErrors.ErrCodeSchemaViolation,
		},
		{
			name: "upstream unavailable",
			err: careermatchErrors.NewAIError(careermatchErrors.ErrCodeUpstreamUnavailable,
				"model request failed", nil),
			expectedStatus: http.StatusServiceUnavailable,
			expectedError:  "Upstream AI service unavailable",
			expectedCode:   careermatchErrors.ErrCodeUpstreamUnavailable,
		},
		{
			name:           "plain error maps to internal",
			err:            fmt.Errorf("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Internal error",
			expectedCode:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeAppError(rec, tt.err)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedError, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "****", maskAPIKey("12345678"))
	assert.Equal(t, "12345678****", maskAPIKey("123456789abcdef"))
}

func TestIsPDFUpload(t *testing.T) {
	assert.True(t, isPDFUpload("resume.pdf", nil))
	assert.True(t, isPDFUpload("Resume.PDF", nil))
	assert.True(t, isPDFUpload("upload.bin", []byte("%PDF-1.7 rest")))
	assert.False(t, isPDFUpload("resume.txt", []byte("plain text")))
	assert.False(t, isPDFUpload("resume", []byte("%PD")))
}
