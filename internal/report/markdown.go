package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/model"
)

// MarkdownWriter outputs reports in Markdown format for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteRun outputs the run summary and a prediction table.
func (w *MarkdownWriter) WriteRun(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Column Type Annotation Run")
	md.PlainText("")

	rows := [][]string{}
	if run.ID != 0 {
		rows = append(rows, []string{"Run ID", strconv.FormatInt(run.ID, 10)})
	}
	rows = append(rows, []string{"Started", run.StartedAt.Format(timeLayout)})
	if !run.FinishedAt.IsZero() {
		rows = append(rows, []string{"Duration", run.Duration().Round(time.Millisecond).String()})
	}
	if run.Endpoint != "" {
		rows = append(rows, []string{"Endpoint", "`" + run.Endpoint + "`"})
	}
	if run.TargetsFile != "" {
		rows = append(rows, []string{"Targets File", "`" + run.TargetsFile + "`"})
	}
	rows = append(rows,
		[]string{"Top N", strconv.Itoa(run.TopN)},
		[]string{"Annotated Columns", strconv.Itoa(run.Len())},
		[]string{"Empty Predictions", strconv.Itoa(run.EmptyCount())},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if run.Len() > 0 && run.EmptyCount() == run.Len() {
		md.Warningf("No column received a prediction out of %d. Check the endpoint and the table directory.", run.Len())
		md.PlainText("")
	}

	w.writePredictions(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writePredictions(md *markdown.Markdown, run *model.Run) {
	md.H2("Predictions")
	md.PlainText("")

	if run.Len() == 0 {
		md.PlainText("No columns were annotated.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Results))
	for i, res := range run.Results {
		prediction := res.Prediction()
		if prediction == "" {
			prediction = "-"
		}
		rows[i] = []string{
			res.TableID,
			strconv.Itoa(int(res.Column)),
			prediction,
			strconv.Itoa(res.Stats.ResolvedKeys) + "/" + strconv.Itoa(res.Stats.UsableKeys),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Table", "Column", "Prediction", "Resolved Keys"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteScore outputs the score summary, a pie chart and the mismatch table.
func (w *MarkdownWriter) WriteScore(report *model.ScoreReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Score Report")
	md.PlainText("")

	rows := [][]string{
		{"Mode", string(report.Mode)},
	}
	if report.GroundTruthFile != "" {
		rows = append(rows, []string{"Ground Truth", "`" + report.GroundTruthFile + "`"})
	}
	rows = append(rows,
		[]string{"Matches", strconv.Itoa(report.Matches)},
		[]string{"Total", strconv.Itoa(report.Total)},
		[]string{"Missing", strconv.Itoa(report.MissingCount)},
		[]string{"**Score**", "**" + formatScore(report.Score) + "**"},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Total > 0 {
		w.writePieChart(md, report)
	}

	if report.Mode == model.ScoreModePositional {
		md.Note("Positional scoring compares the i-th result with the i-th ground truth row.")
		md.PlainText("")
	}

	w.writeMismatches(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of matches against mismatches.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ScoreReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Ground Truth Agreement"),
		piechart.WithShowData(true),
	)

	if report.Matches > 0 {
		chart.LabelAndIntValue("Match", uint64(report.Matches))
	}
	wrong := report.Total - report.Matches - report.MissingCount
	if wrong > 0 {
		chart.LabelAndIntValue("Mismatch", uint64(wrong))
	}
	if report.MissingCount > 0 {
		chart.LabelAndIntValue("Missing", uint64(report.MissingCount))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeMismatches(md *markdown.Markdown, report *model.ScoreReport) {
	md.H2("Mismatches")
	md.PlainText("")

	if len(report.Mismatches) == 0 {
		md.Tip("Every ground truth target was predicted correctly.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Mismatches))
	for i, m := range report.Mismatches {
		predicted := m.Predicted
		switch {
		case m.Missing:
			predicted = "(missing)"
		case predicted == "":
			predicted = "-"
		}
		rows[i] = []string{
			m.TableID,
			strconv.Itoa(int(m.Column)),
			m.Expected,
			predicted,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Table", "Column", "Expected", "Predicted"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteHistory outputs the saved runs as a table.
func (w *MarkdownWriter) WriteHistory(runs []database.RunMetadata) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Run History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No saved runs.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.FormatInt(r.ID, 10),
			r.StartedAt.Local().Format(timeLayout),
			strconv.Itoa(r.TopN),
			strconv.Itoa(r.ResultCount),
			strconv.Itoa(r.EmptyCount),
			formatBestScore(r),
			"`" + shortDigest(r.Digest) + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Started", "Top N", "Columns", "Empty", "Best Score", "Digest"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [cta](https://github.com/nao1215/cta)*")
}
