package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certvet/certvet/internal/ocr"
	"github.com/certvet/certvet/internal/store"
	"github.com/certvet/certvet/internal/verify"
)

// stubEngine returns canned OCR output without touching tesseract.
type stubEngine struct {
	result *ocr.Result
	err    error
}

func (s *stubEngine) ExtractImage(ctx context.Context, img image.Image) (*ocr.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEngine) Close() error { return nil }

func newTestServer(t *testing.T, engine ocr.Engine) *Server {
	t.Helper()

	reports, err := store.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = reports.Close() })

	verifier := verify.New(engine, verify.DefaultOptions(), nil)
	srv := New(Config{Addr: ":0"}, verifier, reports, nil)
	srv.probe = func() ocr.Info {
		return ocr.Info{Available: true, Version: "5.3.0", Languages: []string{"eng"}}
	}
	return srv
}

// uploadRequest builds a multipart POST /api/verify with a PNG payload.
func uploadRequest(t *testing.T, fieldName, fileName string) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.White)
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/verify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleVerify(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{
		FullText: "Certificate of Live Birth\nNo. 12345678\n",
	}})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "image", "scan.png"))

	require.Equal(t, http.StatusOK, rec.Code)

	var report verify.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "scan.png", report.FileName)
	assert.Equal(t, verify.DocTypeCertificateOfLiveBirth, report.Analysis.DocumentType)
	assert.Equal(t, "12345678", report.Analysis.SerialNumber)

	// The report must be retrievable afterwards.
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet, "/api/reports/"+report.ID, nil))
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestHandleVerify_MissingField(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "wrong_field", "scan.png"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing image upload")
}

func TestHandleVerify_UnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "image", "scan.tiff"))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleVerify_CorruptImage(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "scan.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/verify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleVerify_EngineFailure(t *testing.T) {
	srv := newTestServer(t, &stubEngine{err: assert.AnError})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, uploadRequest(t, "image", "scan.png"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "verification failed")
}

func TestHandleListReports(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{FullText: "CERTIFICATE OF BIRTH"}})
	handler := srv.Handler()

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, uploadRequest(t, "image", "scan.png"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []*verify.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	assert.Len(t, reports, 2)
}

func TestHandleListReports_BadLimit(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetReport_NotFound(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/reports/1b52ce0f-4b3f-44f0-a51e-4dcb71a7a1ad", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleDownloadReport(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{
		FullText: "Certificate of Birth BC12345",
	}})
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "image", "scan.png"))
	require.Equal(t, http.StatusOK, rec.Code)

	var report verify.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodGet,
		"/api/reports/"+report.ID+"/report.txt", nil))

	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec2.Header().Get("Content-Disposition"), "validation_report.txt")
	assert.Contains(t, rec2.Body.String(), "Birth Certificate Validation Report")
	assert.Contains(t, rec2.Body.String(), "Serial Number: BC12345")
}

func TestHandleHealthz(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleHealthz_EngineMissing(t *testing.T) {
	srv := newTestServer(t, &stubEngine{result: &ocr.Result{}})
	srv.probe = func() ocr.Info {
		return ocr.Info{
			Available: false,
			Error:     "tesseract engine not found",
			Remedy:    ocr.InstallGuidance(),
		}
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "tesseract")
}
