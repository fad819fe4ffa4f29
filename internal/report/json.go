package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRun outputs the run in JSON format.
func (w *JSONWriter) WriteRun(run *model.Run) (int, error) {
	return w.writeJSON(run)
}

// WriteScore outputs the score report in JSON format.
func (w *JSONWriter) WriteScore(report *model.ScoreReport) (int, error) {
	return w.writeJSON(report)
}

// WriteHistory outputs the run listing as a JSON array.
func (w *JSONWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = newHistoryEntry(r)
	}
	return w.writeJSON(entries)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// HistoryEntry is the JSON form of a saved run's metadata.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	TopN        int       `json:"top_n"`
	Endpoint    string    `json:"endpoint,omitempty"`
	TargetsFile string    `json:"targets_file,omitempty"`
	ResultCount int       `json:"result_count"`
	EmptyCount  int       `json:"empty_count"`
	Digest      string    `json:"digest"`

	// BestScore is nil when the run was never scored.
	BestScore *float64 `json:"best_score,omitempty"`
}

func newHistoryEntry(r database.RunMetadata) HistoryEntry {
	e := HistoryEntry{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		TopN:        r.TopN,
		Endpoint:    r.Endpoint,
		TargetsFile: r.TargetsFile,
		ResultCount: r.ResultCount,
		EmptyCount:  r.EmptyCount,
		Digest:      r.Digest,
	}
	if r.BestScore.Valid {
		best := r.BestScore.Float64
		e.BestScore = &best
	}
	return e
}

// JSONReport wraps a run and its optional score with the tool version.
// Output-specific fields live here so model.Run stays free of them.
type JSONReport struct {
	// Version is the cta version that generated this report.
	Version string `json:"version"`

	// Run is the annotation run, if any.
	Run *model.Run `json:"run,omitempty"`

	// Score is the score report, if any.
	Score *model.ScoreReport `json:"score,omitempty"`
}

// FullJSONWriter outputs reports wrapped with version metadata.
type FullJSONWriter struct {
	*JSONWriter

	// version is the cta version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// WriteRun outputs the run wrapped with metadata.
func (w *FullJSONWriter) WriteRun(run *model.Run) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Run: run})
}

// WriteScore outputs the score report wrapped with metadata.
func (w *FullJSONWriter) WriteScore(report *model.ScoreReport) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Score: report})
}

// WriteRunWithScore outputs a run and the score computed for it as one document.
func (w *FullJSONWriter) WriteRunWithScore(run *model.Run, report *model.ScoreReport) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Run: run, Score: report})
}
