package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/orafadelg/surveyqr/internal/export"
	"github.com/orafadelg/surveyqr/internal/keyring"
	"github.com/orafadelg/surveyqr/internal/notify"
	"github.com/orafadelg/surveyqr/internal/qr"
	"github.com/orafadelg/surveyqr/internal/survey"
	workerpool "github.com/orafadelg/surveyqr/internal/worker"
)

// BatchCallback runs after a batch render finishes, with a sample PNG from
// the batch for preview channels.
type BatchCallback func(summary notify.BatchSummary, samplePNG []byte)

// Defaults are the link-building fallbacks applied when a request leaves a
// field empty.
type Defaults struct {
	Domain     string
	SurveyCode string
	Timestamp  bool
}

type HandlerOpts struct {
	Keyring     keyring.Keyring
	QR          *qr.Generator
	Redis       *redis.Client // nil disables the render cache
	Pool        *workerpool.Pool
	Logger      *zap.Logger
	Defaults    Defaults
	Version     VersionInfo
	CacheTTL    time.Duration
	OnBatchDone BatchCallback
}

type Handler struct {
	keyring     keyring.Keyring
	qr          *qr.Generator
	redis       *redis.Client
	pool        *workerpool.Pool
	jobs        sync.Map
	logger      *zap.Logger
	defaults    Defaults
	versionInfo VersionInfo
	cacheTTL    time.Duration
	onBatchDone BatchCallback
}

func NewHandler(opts HandlerOpts) *Handler {
	h := &Handler{
		keyring:     opts.Keyring,
		qr:          opts.QR,
		redis:       opts.Redis,
		pool:        opts.Pool,
		logger:      opts.Logger,
		defaults:    opts.Defaults,
		versionInfo: opts.Version,
		cacheTTL:    opts.CacheTTL,
		onBatchDone: opts.OnBatchDone,
	}

	h.pool.SetResultHandler(h.handleTaskResult)
	if err := h.pool.Start(); err != nil {
		panic("Failed to start worker pool: " + err.Error())
	}

	return h
}

// requestParams assembles the parameter set in presentation order: store and
// order identifiers first, extras after, sorted for deterministic output.
func requestParams(storeID, orderID string, extra map[string]string) *survey.Params {
	params := survey.NewParams()
	if storeID != "" {
		params.Set("store_id", survey.String(storeID))
	}
	if orderID != "" {
		params.Set("order_id", survey.String(orderID))
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.Set(k, survey.String(extra[k]))
	}
	return params
}

func (h *Handler) buildLink(ctx context.Context, req LinkRequest) (survey.Link, error) {
	domain := req.Domain
	if domain == "" {
		domain = h.defaults.Domain
	}
	surveyCode := req.SurveyCode
	if surveyCode == "" {
		surveyCode = h.defaults.SurveyCode
	}
	timestamp := h.defaults.Timestamp
	if req.Timestamp != nil {
		timestamp = *req.Timestamp
	}

	build := survey.Request{
		Domain:     domain,
		SurveyCode: surveyCode,
		Params:     requestParams(req.StoreID, req.OrderID, req.Extra),
		Timestamp:  timestamp,
	}

	if req.Sign {
		secret, err := h.keyring.Secret(ctx, req.StoreID)
		if err != nil {
			return survey.Link{}, err
		}
		build.Sign = true
		build.Secret = secret
	}

	return build.Build()
}

func (h *Handler) handleLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Invalid JSON", zap.Error(err))
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.buildLink(r.Context(), req)
	if err != nil {
		h.writeBuildError(w, err)
		return
	}

	writeJSON(w, LinkResponse{URL: link.URL, Signature: link.Signature})
}

func (h *Handler) handleQR(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	generator := h.qr
	if sizeParam := q.Get("size"); sizeParam != "" {
		size, err := strconv.Atoi(sizeParam)
		if err != nil {
			writeError(w, "size must be an integer", http.StatusBadRequest)
			return
		}
		generator = qr.NewGenerator(size)
	}

	req := LinkRequest{
		Domain:     q.Get("domain"),
		SurveyCode: q.Get("survey_code"),
		StoreID:    q.Get("store_id"),
		OrderID:    q.Get("order_id"),
		Sign:       q.Get("sign") == "true",
	}
	if tsParam := q.Get("timestamp"); tsParam != "" {
		ts := tsParam == "true"
		req.Timestamp = &ts
	}

	link, err := h.buildLink(r.Context(), req)
	if err != nil {
		h.writeBuildError(w, err)
		return
	}

	surveyCode := req.SurveyCode
	if surveyCode == "" {
		surveyCode = h.defaults.SurveyCode
	}

	data, cached, err := h.render(r.Context(), generator, link.URL, format)
	if err != nil {
		h.logger.Error("Failed to render QR code", zap.Error(err), zap.String("url", link.URL))
		writeError(w, "Failed to render QR code", http.StatusInternalServerError)
		return
	}
	if cached {
		w.Header().Set("X-Cache", "HIT")
	}

	export.WriteHTTP(w, surveyCode, req.OrderID, format, data)
}

// render produces image bytes for a URL, going through the Redis cache when
// one is configured.
func (h *Handler) render(ctx context.Context, g *qr.Generator, url string, format export.Format) ([]byte, bool, error) {
	key := renderCacheKey(url, format, g.BoxSize())

	if h.redis != nil {
		if data, err := h.redis.Get(ctx, key).Bytes(); err == nil {
			return data, true, nil
		} else if err != redis.Nil {
			h.logger.Warn("Render cache read failed", zap.Error(err))
		}
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case export.FormatSVG:
		data, err = g.SVG(url)
	default:
		data, err = g.PNG(url)
	}
	if err != nil {
		return nil, false, err
	}

	if h.redis != nil {
		if err := h.redis.Set(ctx, key, data, h.cacheTTL).Err(); err != nil {
			h.logger.Warn("Render cache write failed", zap.Error(err))
		}
	}

	return data, false, nil
}

func renderCacheKey(url string, format export.Format, boxSize int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", url, format, boxSize)))
	return "qr:" + hex.EncodeToString(sum[:])
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Invalid JSON", zap.Error(err))
		writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.Orders) == 0 {
		writeError(w, "No orders provided", http.StatusBadRequest)
		return
	}
	if req.SurveyCode == "" {
		req.SurveyCode = h.defaults.SurveyCode
	}
	if req.SurveyCode == "" {
		writeError(w, "No survey code provided", http.StatusBadRequest)
		return
	}

	job := NewJob(len(req.Orders))
	h.jobs.Store(job.ID, job)
	job.Start()

	if err := h.pool.Submit(workerpool.Task{
		ID: job.ID,
		Run: func(ctx context.Context) (interface{}, error) {
			return h.renderBatch(ctx, job, req), nil
		},
	}); err != nil {
		h.logger.Error("Failed to submit batch", zap.Error(err))
		job.Fail(err)
		writeError(w, "Failed to submit batch", http.StatusInternalServerError)
		return
	}

	writeJSON(w, BatchResponse{JobID: job.ID})
}

type batchOutcome struct {
	Job     *Job
	Summary notify.BatchSummary
	Sample  []byte
}

// renderBatch builds and renders every order of a batch. Missing signing
// secrets degrade the affected orders to unsigned links instead of failing
// the batch.
func (h *Handler) renderBatch(ctx context.Context, job *Job, req BatchRequest) batchOutcome {
	secrets := make(map[string]string)
	signedAny := false
	var sample []byte

	for _, order := range req.Orders {
		result := RenderResult{StoreID: order.StoreID, OrderID: order.OrderID}

		build := survey.Request{
			Domain:     req.Domain,
			SurveyCode: req.SurveyCode,
			Params:     requestParams(order.StoreID, order.OrderID, nil),
			Timestamp:  h.defaults.Timestamp,
		}
		if build.Domain == "" {
			build.Domain = h.defaults.Domain
		}

		if req.Sign {
			secret, ok := secrets[order.StoreID]
			if !ok {
				var err error
				secret, err = h.keyring.Secret(ctx, order.StoreID)
				if err != nil {
					h.logger.Warn("No signing key, emitting unsigned link",
						zap.String("store_id", order.StoreID),
						zap.Error(err))
					secret = ""
				}
				secrets[order.StoreID] = secret
			}
			if secret != "" {
				build.Sign = true
				build.Secret = secret
			}
		}

		link, err := build.Build()
		if err != nil {
			result.Error = err.Error()
			job.AddResult(result)
			continue
		}
		result.URL = link.URL
		result.Signature = link.Signature
		if link.Signature != "" {
			signedAny = true
		}

		png, cached, err := h.render(ctx, h.qr, link.URL, export.FormatPNG)
		if err != nil {
			result.Error = err.Error()
			job.AddResult(result)
			continue
		}
		result.Cached = cached
		if sample == nil {
			sample = png
		}

		job.AddResult(result)
	}

	done, failed := job.Snapshot()
	if failed == done {
		job.Fail(fmt.Errorf("all %d orders failed", failed))
	} else {
		job.Complete()
	}

	return batchOutcome{
		Job: job,
		Summary: notify.BatchSummary{
			JobID:      job.ID,
			SurveyCode: req.SurveyCode,
			Total:      job.TotalCount,
			Rendered:   done - failed,
			Failed:     failed,
			Signed:     signedAny,
		},
		Sample: sample,
	}
}

func (h *Handler) handleTaskResult(result workerpool.Result) {
	if result.Error != nil {
		h.logger.Error("Batch task failed", zap.String("job_id", result.TaskID), zap.Error(result.Error))
		return
	}

	outcome := result.Value.(batchOutcome)

	if h.redis != nil {
		data, err := json.Marshal(outcome.Job)
		if err != nil {
			h.logger.Error("Failed to marshal job results", zap.Error(err))
		} else {
			ctx := context.Background()
			key := "job_results:" + outcome.Job.ID
			if err := h.redis.Set(ctx, key, data, h.cacheTTL).Err(); err != nil {
				h.logger.Error("Failed to store job results in Redis", zap.Error(err))
			}
		}
	}

	h.logger.Info("Batch render completed",
		zap.String("job_id", outcome.Job.ID),
		zap.Int("rendered", outcome.Summary.Rendered),
		zap.Int("failed", outcome.Summary.Failed),
		zap.Duration("duration", result.Duration))

	if h.onBatchDone != nil {
		h.onBatchDone(outcome.Summary, outcome.Sample)
	}
}

func (h *Handler) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	if value, exists := h.jobs.Load(mux.Vars(r)["id"]); exists {
		writeJSON(w, value.(*Job))
		return
	}
	writeError(w, "Job not found", http.StatusNotFound)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.pool.GetStats()
	writeJSON(w, HealthResponse{
		Status:  "ok",
		Version: h.versionInfo.Version,
		Build: BuildInfo{
			Version:   h.versionInfo.Version,
			Commit:    h.versionInfo.Commit,
			Date:      h.versionInfo.Date,
			GoVersion: h.versionInfo.GoVersion,
			Platform:  h.versionInfo.Platform,
		},
		WorkerPool: WorkerPoolStatus{
			WorkerCount:    stats.WorkerCount,
			TotalTasks:     stats.TotalTasks,
			CompletedTasks: stats.CompletedTasks,
			FailedTasks:    stats.FailedTasks,
			QueueLength:    stats.QueueLength,
			IsRunning:      stats.IsRunning,
			Uptime:         stats.Uptime.String(),
		},
	})
}

func (h *Handler) writeBuildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, survey.ErrMissingDomain), errors.Is(err, survey.ErrMissingSurveyCode):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, survey.ErrMissingSecret),
		errors.Is(err, keyring.ErrStoreNotFound),
		errors.Is(err, keyring.ErrStoreDisabled):
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("Failed to build link", zap.Error(err))
		writeError(w, "Failed to build link", http.StatusInternalServerError)
	}
}

func (h *Handler) Close() {
	h.pool.Stop()
}

// Helper functions
func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(MessageResponse{
		Status:  code,
		Message: message,
	}); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
