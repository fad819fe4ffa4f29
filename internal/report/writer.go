package report

import (
	"io"
	"strconv"

	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/model"
)

// Writer defines the interface for report output.
// Implementations render annotation runs, score reports and run history
// in a specific format.
type Writer interface {
	// WriteRun outputs a completed (or partial) annotation run.
	// Returns the number of bytes written and any error encountered.
	WriteRun(run *model.Run) (int, error)

	// WriteScore outputs the result of comparing predictions with ground truth.
	WriteScore(report *model.ScoreReport) (int, error)

	// WriteHistory outputs a listing of saved runs.
	WriteHistory(runs []database.RunMetadata) (int, error)
}

// MultiWriter writes to multiple Writers in order.
// Our Writer interface renders domain values, so io.MultiWriter cannot be used.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteRun outputs the run to all configured Writers.
// Returns the total bytes written across all writers and stops on the first error.
func (m *MultiWriter) WriteRun(run *model.Run) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRun(run) })
}

// WriteScore outputs the score report to all configured Writers.
func (m *MultiWriter) WriteScore(report *model.ScoreReport) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteScore(report) })
}

// WriteHistory outputs the run listing to all configured Writers.
func (m *MultiWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteHistory(runs) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is the timestamp format used by the human-readable writers.
const timeLayout = "2006-01-02 15:04:05 MST"

// formatScore renders a score in [0,1] with four decimals.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}

// formatBestScore renders the best recorded score of a run, or "-" when unscored.
func formatBestScore(run database.RunMetadata) string {
	if !run.BestScore.Valid {
		return "-"
	}
	return formatScore(run.BestScore.Float64)
}

// shortDigest returns the first 12 characters of a run digest.
func shortDigest(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
