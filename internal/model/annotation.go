package model

import (
	"strings"
	"time"
)

// PredictionSeparator joins ranked classes into one prediction string.
const PredictionSeparator = ","

// ClassCount is one ranked class with the number of cells that voted for it.
type ClassCount struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// ColumnStats summarizes how the cells of one column fared during annotation.
type ColumnStats struct {
	// Cells is the number of cells in the column extract.
	Cells int `json:"cells"`

	// UsableKeys is the number of cells that normalized to a non-absent key.
	UsableKeys int `json:"usable_keys"`

	// ResolvedKeys is the number of keys that returned at least one class.
	ResolvedKeys int `json:"resolved_keys"`

	// Timeouts is the number of lookups that hit the per-call timeout.
	Timeouts int `json:"timeouts,omitempty"`

	// SkippedFailures is the number of transport failures skipped by policy.
	SkippedFailures int `json:"skipped_failures,omitempty"`
}

// AnnotationResult is the prediction for one target.
// Exactly one is produced per target, even when no class was found.
type AnnotationResult struct {
	Target

	// Classes are the predicted class URIs in rank order (at most top-N).
	Classes []string `json:"classes"`

	// Ranking carries the vote count of each predicted class.
	Ranking []ClassCount `json:"ranking,omitempty"`

	// Stats describes the cell-level outcome.
	Stats ColumnStats `json:"stats"`
}

// NewAnnotationResult builds a result from a ranking.
func NewAnnotationResult(target Target, ranking []ClassCount, stats ColumnStats) AnnotationResult {
	classes := make([]string, len(ranking))
	for i, c := range ranking {
		classes[i] = c.Class
	}
	return AnnotationResult{
		Target:  target,
		Classes: classes,
		Ranking: ranking,
		Stats:   stats,
	}
}

// Prediction returns the ranked classes joined in rank order,
// or "" when nothing was resolved.
func (r AnnotationResult) Prediction() string {
	return strings.Join(r.Classes, PredictionSeparator)
}

// IsEmpty reports whether no class was predicted.
func (r AnnotationResult) IsEmpty() bool {
	return len(r.Classes) == 0
}

// String returns the "table,column,prediction" progress line.
func (r AnnotationResult) String() string {
	return r.Target.String() + PredictionSeparator + r.Prediction()
}

// Annotation is the per-target work item that flows through the pipeline.
// Each step fills in the fields it is responsible for.
type Annotation struct {
	// Target is the column being annotated.
	Target Target

	// TopN is the maximum number of classes to keep.
	TopN int

	// Cells is the column extract, filled by the extract step.
	Cells []Cell

	// Keys holds one normalized key per cell, filled by the normalize step.
	Keys []Key

	// Result is set by the annotate step.
	Result *AnnotationResult

	// Error records the failure of the step that stopped this annotation.
	Error error `json:"-"`

	// PerformedSteps lists the names of steps that ran.
	PerformedSteps []string

	// Elapsed is the wall time spent on this target.
	Elapsed time.Duration
}

// NewAnnotation creates a work item for a target.
func NewAnnotation(target Target, topN int) *Annotation {
	return &Annotation{
		Target:         target,
		TopN:           topN,
		PerformedSteps: make([]string, 0),
	}
}
