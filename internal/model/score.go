package model

import "time"

// GroundTruthRow is the expected class for one target.
type GroundTruthRow struct {
	Target

	// Class is the expected class URI.
	Class string `json:"class"`
}

// ScoreMode selects how predictions are aligned with ground truth.
type ScoreMode string

const (
	// ScoreModeKeyed joins predictions and ground truth on (table, column).
	ScoreModeKeyed ScoreMode = "keyed"

	// ScoreModePositional compares row i with row i.
	// Any row-count mismatch silently misaligns every following comparison.
	ScoreModePositional ScoreMode = "positional"
)

// Mismatch describes one ground-truth row that did not match.
type Mismatch struct {
	Target

	// Expected is the ground-truth class.
	Expected string `json:"expected"`

	// Predicted is the prediction string, empty when none was produced.
	Predicted string `json:"predicted"`

	// Missing is true when no prediction existed for this row.
	Missing bool `json:"missing,omitempty"`
}

// ScoreReport is the outcome of comparing predictions with ground truth.
type ScoreReport struct {
	// Mode is the alignment that was used.
	Mode ScoreMode `json:"mode"`

	// Matches is the number of exactly matching rows.
	Matches int `json:"matches"`

	// Total is the number of ground-truth rows.
	Total int `json:"total"`

	// Score is Matches / Total.
	Score float64 `json:"score"`

	// MissingCount is the number of ground-truth rows with no prediction.
	MissingCount int `json:"missing_count"`

	// Mismatches lists every non-matching row.
	Mismatches []Mismatch `json:"mismatches,omitempty"`

	// GroundTruthFile is the file the rows came from, if any.
	GroundTruthFile string `json:"ground_truth_file,omitempty"`

	// ScoredAt is when the comparison ran.
	ScoredAt time.Time `json:"scored_at"`
}
