package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job tracks one batch render through the worker pool. Results are keyed by
// order id.
type Job struct {
	ID         string                  `json:"id"`
	Status     JobStatus               `json:"status"`
	Results    map[string]RenderResult `json:"results"`
	TotalCount int                     `json:"total_count"`
	DoneCount  int                     `json:"done_count"`
	StartTime  *time.Time              `json:"start_time,omitempty"`
	EndTime    *time.Time              `json:"end_time,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	Error      string                  `json:"error,omitempty"`
	mutex      sync.RWMutex
}

type LinkRequest struct {
	Domain     string            `json:"domain,omitempty"`
	SurveyCode string            `json:"survey_code"`
	StoreID    string            `json:"store_id,omitempty"`
	OrderID    string            `json:"order_id,omitempty"`
	Timestamp  *bool             `json:"timestamp,omitempty"`
	Sign       bool              `json:"sign,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

type LinkResponse struct {
	URL       string `json:"url"`
	Signature string `json:"sig,omitempty"`
}

type OrderRef struct {
	StoreID string `json:"store_id"`
	OrderID string `json:"order_id"`
}

type BatchRequest struct {
	Domain     string     `json:"domain,omitempty"`
	SurveyCode string     `json:"survey_code"`
	Sign       bool       `json:"sign,omitempty"`
	Orders     []OrderRef `json:"orders"`
}

type BatchResponse struct {
	JobID string `json:"job_id"`
}

type RenderResult struct {
	StoreID   string `json:"store_id"`
	OrderID   string `json:"order_id"`
	URL       string `json:"url"`
	Signature string `json:"sig,omitempty"`
	Cached    bool   `json:"cached"`
	Error     string `json:"error,omitempty"`
}

type MessageResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type VersionInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Platform  string
}

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

type WorkerPoolStatus struct {
	WorkerCount    int    `json:"worker_count"`
	TotalTasks     int64  `json:"total_tasks"`
	CompletedTasks int64  `json:"completed_tasks"`
	FailedTasks    int64  `json:"failed_tasks"`
	QueueLength    int64  `json:"queue_length"`
	IsRunning      bool   `json:"is_running"`
	Uptime         string `json:"uptime"`
}

type HealthResponse struct {
	Status     string           `json:"status"`
	Version    string           `json:"version"`
	Build      BuildInfo        `json:"build"`
	WorkerPool WorkerPoolStatus `json:"worker_pool"`
}

func NewJob(total int) *Job {
	return &Job{
		ID:         uuid.NewString(),
		Status:     JobStatusPending,
		Results:    make(map[string]RenderResult, total),
		TotalCount: total,
		CreatedAt:  time.Now(),
	}
}

func (j *Job) updateStatus(status JobStatus, err error) {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	now := time.Now()
	j.Status = status
	if status != JobStatusRunning {
		j.EndTime = &now
	} else {
		j.StartTime = &now
	}
	if err != nil {
		j.Error = err.Error()
	}
}

func (j *Job) Start() {
	j.updateStatus(JobStatusRunning, nil)
}

func (j *Job) Complete() {
	j.updateStatus(JobStatusCompleted, nil)
}

func (j *Job) Fail(err error) {
	j.updateStatus(JobStatusFailed, err)
}

func (j *Job) AddResult(result RenderResult) {
	j.mutex.Lock()
	j.Results[result.OrderID] = result
	j.DoneCount++
	j.mutex.Unlock()
}

// jobView mirrors Job's encodable fields so MarshalJSON can reuse the
// default encoding without recursing.
type jobView struct {
	ID         string                  `json:"id"`
	Status     JobStatus               `json:"status"`
	Results    map[string]RenderResult `json:"results"`
	TotalCount int                     `json:"total_count"`
	DoneCount  int                     `json:"done_count"`
	StartTime  *time.Time              `json:"start_time,omitempty"`
	EndTime    *time.Time              `json:"end_time,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	Error      string                  `json:"error,omitempty"`
}

// MarshalJSON encodes a point-in-time view of the job. Batch workers keep
// adding results while clients poll the status endpoint, so encoding has to
// happen under the read lock.
func (j *Job) MarshalJSON() ([]byte, error) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()

	return json.Marshal(jobView{
		ID:         j.ID,
		Status:     j.Status,
		Results:    j.Results,
		TotalCount: j.TotalCount,
		DoneCount:  j.DoneCount,
		StartTime:  j.StartTime,
		EndTime:    j.EndTime,
		CreatedAt:  j.CreatedAt,
		Error:      j.Error,
	})
}

func (j *Job) Snapshot() (done, failed int) {
	j.mutex.RLock()
	defer j.mutex.RUnlock()
	for _, r := range j.Results {
		if r.Error != "" {
			failed++
		}
	}
	return j.DoneCount, failed
}
