// Package score measures predictions against a ground truth.
//
// The score is the fraction of ground-truth rows whose expected class is
// exactly equal to the predicted class string. Predictions are joined to
// the ground truth on (table id, column index) by default; positional
// mode compares the i-th prediction with the i-th ground-truth row.
package score

import (
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/cta/internal/model"
)

var (
	// ErrEmptyGroundTruth is returned when there is nothing to score against.
	ErrEmptyGroundTruth = errors.New("ground truth is empty")

	// ErrUnknownMode is returned for a score mode other than keyed or positional.
	ErrUnknownMode = errors.New("unknown score mode")
)

// Score compares results with the ground truth using the given mode.
func Score(results []model.AnnotationResult, truth []model.GroundTruthRow, mode model.ScoreMode) (*model.ScoreReport, error) {
	if len(truth) == 0 {
		return nil, ErrEmptyGroundTruth
	}

	var lookup func(i int, row model.GroundTruthRow) (string, bool)
	switch mode {
	case model.ScoreModeKeyed, "":
		mode = model.ScoreModeKeyed
		predictions := make(map[model.TargetKey]string, len(results))
		for _, res := range results {
			if _, dup := predictions[res.Key()]; !dup {
				predictions[res.Key()] = res.Prediction()
			}
		}
		lookup = func(_ int, row model.GroundTruthRow) (string, bool) {
			p, ok := predictions[row.Key()]
			return p, ok
		}
	case model.ScoreModePositional:
		lookup = func(i int, _ model.GroundTruthRow) (string, bool) {
			if i >= len(results) {
				return "", false
			}
			return results[i].Prediction(), true
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	report := &model.ScoreReport{
		Mode:     mode,
		Total:    len(truth),
		ScoredAt: time.Now(),
	}
	for i, row := range truth {
		predicted, ok := lookup(i, row)
		if ok && predicted == row.Class {
			report.Matches++
			continue
		}
		if !ok {
			report.MissingCount++
		}
		report.Mismatches = append(report.Mismatches, model.Mismatch{
			Target:    row.Target,
			Expected:  row.Class,
			Predicted: predicted,
			Missing:   !ok,
		})
	}
	report.Score = float64(report.Matches) / float64(report.Total)

	return report, nil
}

// Keyed scores results joined to the ground truth on (table id, column index).
func Keyed(results []model.AnnotationResult, truth []model.GroundTruthRow) (*model.ScoreReport, error) {
	return Score(results, truth, model.ScoreModeKeyed)
}

// Positional scores the i-th result against the i-th ground-truth row.
// Missing positions count as wrong.
func Positional(results []model.AnnotationResult, truth []model.GroundTruthRow) (*model.ScoreReport, error) {
	return Score(results, truth, model.ScoreModePositional)
}
