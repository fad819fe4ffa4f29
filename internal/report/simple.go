package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Plain ASCII formatting is used so output can be piped to files.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose adds per-column statistics and rankings to run output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteRun outputs the run summary and its predictions.
func (w *SimpleWriter) WriteRun(run *model.Run) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "COLUMN TYPE ANNOTATION RUN")

	if run.ID != 0 {
		fmt.Fprintf(&sb, "Run ID:        %d\n", run.ID)
	}
	fmt.Fprintf(&sb, "Started:       %s\n", run.StartedAt.Format(timeLayout))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "Duration:      %s\n", run.Duration().Round(time.Millisecond))
	}
	if run.Endpoint != "" {
		fmt.Fprintf(&sb, "Endpoint:      %s\n", run.Endpoint)
	}
	if run.TargetsFile != "" {
		fmt.Fprintf(&sb, "Targets File:  %s\n", run.TargetsFile)
	}
	fmt.Fprintf(&sb, "Top N:         %d\n", run.TopN)
	fmt.Fprintf(&sb, "Annotated:     %d\n", run.Len())
	fmt.Fprintf(&sb, "Empty:         %d\n", run.EmptyCount())
	sb.WriteString("\n")

	if run.Len() > 0 || w.showEmpty {
		writeSection(&sb, "PREDICTIONS")
		if run.Len() == 0 {
			sb.WriteString("  No predictions\n")
		}
		for _, res := range run.Results {
			w.writeResult(&sb, res)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeResult(sb *strings.Builder, res model.AnnotationResult) {
	prediction := res.Prediction()
	if prediction == "" {
		prediction = "(none)"
	}
	fmt.Fprintf(sb, "  %-30s %s\n", res.Target.String(), prediction)

	if !w.verbose {
		return
	}
	s := res.Stats
	fmt.Fprintf(sb, "    cells=%d usable=%d resolved=%d timeouts=%d skipped=%d\n",
		s.Cells, s.UsableKeys, s.ResolvedKeys, s.Timeouts, s.SkippedFailures)
	for _, c := range res.Ranking {
		fmt.Fprintf(sb, "    %5d  %s\n", c.Count, c.Class)
	}
}

// WriteScore outputs the score and, when present, the mismatched targets.
func (w *SimpleWriter) WriteScore(report *model.ScoreReport) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "SCORE REPORT")

	fmt.Fprintf(&sb, "Mode:          %s\n", report.Mode)
	if report.GroundTruthFile != "" {
		fmt.Fprintf(&sb, "Ground Truth:  %s\n", report.GroundTruthFile)
	}
	fmt.Fprintf(&sb, "Matches:       %d / %d\n", report.Matches, report.Total)
	fmt.Fprintf(&sb, "Score:         %s\n", formatScore(report.Score))
	fmt.Fprintf(&sb, "Missing:       %d\n", report.MissingCount)
	sb.WriteString("\n")

	if len(report.Mismatches) > 0 || w.showEmpty {
		writeSection(&sb, "MISMATCHES")
		if len(report.Mismatches) == 0 {
			sb.WriteString("  No mismatches\n")
		}
		for _, m := range report.Mismatches {
			predicted := m.Predicted
			if m.Missing {
				predicted = "(missing)"
			} else if predicted == "" {
				predicted = "(none)"
			}
			fmt.Fprintf(&sb, "  [x] %s\n", m.Target.String())
			fmt.Fprintf(&sb, "      expected:  %s\n", m.Expected)
			fmt.Fprintf(&sb, "      predicted: %s\n", predicted)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs one line per saved run.
func (w *SimpleWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No saved runs\n")
		return w.output.Write([]byte(sb.String()))
	}

	fmt.Fprintf(&sb, "%-6s %-25s %-5s %-8s %-6s %-8s %s\n",
		"ID", "STARTED", "TOPN", "COLUMNS", "EMPTY", "SCORE", "DIGEST")
	for _, r := range runs {
		fmt.Fprintf(&sb, "%-6d %-25s %-5d %-8d %-6d %-8s %s\n",
			r.ID,
			r.StartedAt.Local().Format(timeLayout),
			r.TopN,
			r.ResultCount,
			r.EmptyCount,
			formatBestScore(r),
			shortDigest(r.Digest),
		)
	}

	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
