package model

import "time"

// Run is the accumulated output of one annotation invocation.
// Results are kept in target order and only ever appended or placed at
// their target's index; nothing else shares or mutates them.
type Run struct {
	// ID is the history database identifier, zero until saved.
	ID int64 `json:"id,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last target completed.
	FinishedAt time.Time `json:"finished_at"`

	// TopN is the number of classes kept per target.
	TopN int `json:"top_n"`

	// Endpoint is the knowledge-base endpoint that was queried.
	Endpoint string `json:"endpoint,omitempty"`

	// TargetsFile is the target list the run was built from.
	TargetsFile string `json:"targets_file,omitempty"`

	// Results holds one entry per target, in target order.
	Results []AnnotationResult `json:"results"`
}

// NewRun creates an empty run.
func NewRun(topN int) *Run {
	return &Run{
		StartedAt: time.Now(),
		TopN:      topN,
		Results:   make([]AnnotationResult, 0),
	}
}

// Append records a completed result.
func (r *Run) Append(result AnnotationResult) {
	r.Results = append(r.Results, result)
}

// Len returns the number of results.
func (r *Run) Len() int {
	return len(r.Results)
}

// Finish stamps the completion time.
func (r *Run) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns the wall time of the run, or zero if unfinished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// EmptyCount returns how many targets got no prediction.
func (r *Run) EmptyCount() int {
	n := 0
	for _, res := range r.Results {
		if res.IsEmpty() {
			n++
		}
	}
	return n
}
