package notify

// BatchSummary describes a finished batch render, for operations channels.
type BatchSummary struct {
	JobID      string
	SurveyCode string
	Total      int
	Rendered   int
	Failed     int
	Signed     bool
}

type Notifier interface {
	SendSummary(summary BatchSummary) error
}
