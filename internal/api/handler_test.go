package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/orafadelg/surveyqr/internal/keyring"
	"github.com/orafadelg/surveyqr/internal/notify"
	"github.com/orafadelg/surveyqr/internal/qr"
	workerpool "github.com/orafadelg/surveyqr/internal/worker"
)

func newTestHandler(t *testing.T, secret string, onBatchDone BatchCallback) http.Handler {
	t.Helper()

	h := NewHandler(HandlerOpts{
		Keyring:     keyring.NewStatic(secret),
		QR:          qr.NewGenerator(qr.DefaultBoxSize),
		Pool:        workerpool.NewPool(workerpool.Config{WorkerCount: 1, TaskQueueSize: 4}),
		Logger:      zap.NewNop(),
		Defaults:    Defaults{Domain: "pt.surveymonkey.com", Timestamp: false},
		Version:     VersionInfo{Version: "test"},
		CacheTTL:    time.Minute,
		OnBatchDone: onBatchDone,
	})
	t.Cleanup(h.Close)
	return NewRouter(h)
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLinkUnsigned(t *testing.T) {
	router := newTestHandler(t, "", nil)

	rec := postJSON(t, router, "/link", LinkRequest{
		SurveyCode: "9B9GS555",
		StoreID:    "045",
		OrderID:    "123456",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp LinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	want := "https://pt.surveymonkey.com/r/9B9GS555?store_id=045&order_id=123456"
	if resp.URL != want {
		t.Errorf("url = %q, want %q", resp.URL, want)
	}
	if resp.Signature != "" {
		t.Errorf("unexpected signature %q", resp.Signature)
	}
}

func TestHandleLinkSigned(t *testing.T) {
	router := newTestHandler(t, "super-secret-key", nil)

	rec := postJSON(t, router, "/link", LinkRequest{
		SurveyCode: "9B9GS555",
		StoreID:    "045",
		OrderID:    "123456",
		Sign:       true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp LinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	wantSig := "e15a357b88987ed9a2de4c7193e292fd6022816626a2a9e58564c15fc06e9905"
	if resp.Signature != wantSig {
		t.Errorf("sig = %q, want %q", resp.Signature, wantSig)
	}
	if !strings.HasSuffix(resp.URL, "&sig="+wantSig) {
		t.Errorf("url missing signature parameter: %q", resp.URL)
	}
}

func TestHandleLinkSignedWithoutSecret(t *testing.T) {
	router := newTestHandler(t, "", nil)

	rec := postJSON(t, router, "/link", LinkRequest{
		SurveyCode: "9B9GS555",
		StoreID:    "045",
		Sign:       true,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleLinkMissingSurveyCode(t *testing.T) {
	router := newTestHandler(t, "", nil)

	rec := postJSON(t, router, "/link", LinkRequest{StoreID: "045"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleQRPNG(t *testing.T) {
	router := newTestHandler(t, "", nil)

	req := httptest.NewRequest(http.MethodGet,
		"/qr?survey_code=9B9GS555&store_id=045&order_id=123456&size=8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="qr_9B9GS555_123456.png"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	magic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(rec.Body.Bytes(), magic) {
		t.Error("body is not a PNG")
	}
}

func TestHandleQRSVG(t *testing.T) {
	router := newTestHandler(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/qr?survey_code=9B9GS555&format=svg", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body is not an SVG")
	}
}

func TestHandleQRBadFormat(t *testing.T) {
	router := newTestHandler(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/qr?survey_code=9B9GS555&format=gif", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleBatch(t *testing.T) {
	done := make(chan notify.BatchSummary, 1)
	router := newTestHandler(t, "super-secret-key", func(summary notify.BatchSummary, sample []byte) {
		if len(sample) == 0 {
			t.Error("batch callback got no sample PNG")
		}
		done <- summary
	})

	rec := postJSON(t, router, "/batch", BatchRequest{
		SurveyCode: "9B9GS555",
		Sign:       true,
		Orders: []OrderRef{
			{StoreID: "045", OrderID: "123456"},
			{StoreID: "045", OrderID: "123457"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("empty job id")
	}

	var summary notify.BatchSummary
	select {
	case summary = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for batch completion")
	}
	if summary.Rendered != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !summary.Signed {
		t.Error("batch should have been signed")
	}

	req := httptest.NewRequest(http.MethodGet, "/job/"+resp.JobID, nil)
	jobRec := httptest.NewRecorder()
	router.ServeHTTP(jobRec, req)
	if jobRec.Code != http.StatusOK {
		t.Fatalf("job status = %d", jobRec.Code)
	}

	var job Job
	if err := json.Unmarshal(jobRec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decoding job: %v", err)
	}
	if job.Status != JobStatusCompleted {
		t.Errorf("job status = %q", job.Status)
	}
	if len(job.Results) != 2 {
		t.Errorf("results = %d, want 2", len(job.Results))
	}
	if r := job.Results["123456"]; r.Signature == "" {
		t.Errorf("order 123456 not signed: %+v", r)
	}
}

func TestHandleBatchWithoutOrders(t *testing.T) {
	router := newTestHandler(t, "", nil)

	rec := postJSON(t, router, "/batch", BatchRequest{SurveyCode: "9B9GS555"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleJobNotFound(t *testing.T) {
	router := newTestHandler(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/job/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router := newTestHandler(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("health = %+v", resp)
	}
	if !resp.WorkerPool.IsRunning {
		t.Error("worker pool not running")
	}
}
