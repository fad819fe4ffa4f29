package report

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/model"
)

const placeClass = "http://dbpedia.org/ontology/Place"

// createTestRun creates a finished run with one resolved and one empty column.
func createTestRun() *model.Run {
	run := model.NewRun(1)
	run.ID = 7
	run.Endpoint = "https://dbpedia.org/sparql"
	run.TargetsFile = "targets.csv"
	run.Append(model.NewAnnotationResult(
		model.Target{TableID: "CITIES", Column: 0},
		[]model.ClassCount{{Class: placeClass, Count: 2}},
		model.ColumnStats{Cells: 3, UsableKeys: 3, ResolvedKeys: 2},
	))
	run.Append(model.NewAnnotationResult(
		model.Target{TableID: "EMPTY", Column: 1},
		nil,
		model.ColumnStats{Cells: 2},
	))
	run.FinishedAt = run.StartedAt.Add(1500 * time.Millisecond)
	return run
}

// createTestScore creates a keyed score with one match, one mismatch and one missing target.
func createTestScore() *model.ScoreReport {
	return &model.ScoreReport{
		Mode:         model.ScoreModeKeyed,
		Matches:      1,
		Total:        3,
		Score:        1.0 / 3.0,
		MissingCount: 1,
		Mismatches: []model.Mismatch{
			{
				Target:    model.Target{TableID: "EMPTY", Column: 1},
				Expected:  "http://dbpedia.org/ontology/Person",
				Predicted: "",
			},
			{
				Target:   model.Target{TableID: "GONE", Column: 2},
				Expected: "http://dbpedia.org/ontology/Film",
				Missing:  true,
			},
		},
		GroundTruthFile: "gt.csv",
		ScoredAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func createTestHistory() []database.RunMetadata {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []database.RunMetadata{
		{
			ID:          2,
			StartedAt:   started,
			FinishedAt:  started.Add(time.Minute),
			TopN:        1,
			ResultCount: 120,
			EmptyCount:  4,
			Digest:      "0123456789abcdef0123456789abcdef",
			BestScore:   sql.NullFloat64{Float64: 0.75, Valid: true},
		},
		{
			ID:          1,
			StartedAt:   started.Add(-time.Hour),
			FinishedAt:  started.Add(-time.Hour + time.Minute),
			TopN:        3,
			ResultCount: 120,
			Digest:      "fedcba",
		},
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes run summary and predictions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.WriteRun(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, buffer has %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"COLUMN TYPE ANNOTATION RUN",
			"Run ID:        7",
			"Duration:      1.5s",
			"Annotated:     2",
			"Empty:         1",
			"CITIES,0",
			placeClass,
			"EMPTY,1",
			"(none)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
		if strings.Contains(output, "cells=") {
			t.Error("statistics should only be shown in verbose mode")
		}
	})

	t.Run("verbose shows statistics and ranking", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.WriteRun(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "cells=3 usable=3 resolved=2 timeouts=0 skipped=0") {
			t.Errorf("expected statistics line\n%s", output)
		}
		if !strings.Contains(output, "    2  "+placeClass) {
			t.Errorf("expected ranking line\n%s", output)
		}
	})

	t.Run("empty run hides predictions unless requested", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteRun(model.NewRun(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "PREDICTIONS") {
			t.Error("expected no predictions section")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).WriteRun(model.NewRun(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No predictions") {
			t.Error("expected empty predictions section")
		}
	})

	t.Run("writes score report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteScore(createTestScore()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"SCORE REPORT",
			"Mode:          keyed",
			"Matches:       1 / 3",
			"Score:         0.3333",
			"Missing:       1",
			"[x] EMPTY,1",
			"predicted: (none)",
			"[x] GONE,2",
			"predicted: (missing)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("writes history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHistory(createTestHistory()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "ID") {
			t.Errorf("unexpected header: %q", lines[0])
		}
		if !strings.Contains(lines[1], "0.7500") || !strings.HasSuffix(lines[1], "0123456789ab") {
			t.Errorf("unexpected scored row: %q", lines[1])
		}
		if !strings.Contains(lines[2], " - ") || !strings.HasSuffix(lines[2], "fedcba") {
			t.Errorf("unexpected unscored row: %q", lines[2])
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "No saved runs\n" {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("run round trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteRun(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.Run
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.ID != 7 || got.Len() != 2 {
			t.Fatalf("unexpected run: %+v", got)
		}
		if got.Results[0].Prediction() != placeClass {
			t.Errorf("prediction = %q", got.Results[0].Prediction())
		}
		if got.Results[0].Stats.ResolvedKeys != 2 {
			t.Errorf("resolved keys = %d", got.Results[0].Stats.ResolvedKeys)
		}
	})

	t.Run("compact output is one line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteScore(createTestScore()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected a single trailing newline, got %q", buf.String())
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteScore(createTestScore()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"mode\": \"keyed\"") {
			t.Errorf("expected indented output, got %s", buf.String())
		}
	})

	t.Run("history omits missing best score", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteHistory(createTestHistory()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []HistoryEntry
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].BestScore == nil || *got[0].BestScore != 0.75 {
			t.Errorf("best score = %v, want 0.75", got[0].BestScore)
		}
		if got[1].BestScore != nil {
			t.Errorf("best score = %v, want nil", *got[1].BestScore)
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "v1.2.3")
		if _, err := w.WriteRunWithScore(createTestRun(), createTestScore()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.Version != "v1.2.3" {
			t.Errorf("version = %q", got.Version)
		}
		if got.Run == nil || got.Score == nil {
			t.Fatal("expected both run and score")
		}
		if got.Score.Matches != 1 {
			t.Errorf("matches = %d", got.Score.Matches)
		}
	})

	t.Run("full writer run only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "dev").WriteRun(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), `"score"`) {
			t.Error("score should be omitted")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes run", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteRun(createTestRun()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Column Type Annotation Run",
			"## Predictions",
			"CITIES",
			"EMPTY",
			"2/3",
			"Report generated by [cta]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("writes score with chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteScore(createTestScore()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Score Report",
			"```mermaid",
			"Ground Truth Agreement",
			"## Mismatches",
			"GONE",
			"(missing)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q\n%s", want, output)
			}
		}
	})

	t.Run("perfect score has no mismatch table", func(t *testing.T) {
		t.Parallel()

		report := &model.ScoreReport{Mode: model.ScoreModePositional, Matches: 2, Total: 2, Score: 1}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteScore(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "[!TIP]") {
			t.Errorf("expected tip for perfect score\n%s", output)
		}
		if !strings.Contains(output, "Positional scoring") {
			t.Errorf("expected positional note\n%s", output)
		}
	})

	t.Run("writes history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteHistory(createTestHistory()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "# Run History") || !strings.Contains(output, "0.7500") {
			t.Errorf("unexpected output\n%s", output)
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		n, err := m.WriteRun(createTestRun())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("reported %d bytes, want %d", n, text.Len()+js.Len())
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(NewJSONWriter(failingWriter{}), NewJSONWriter(&after))

		if _, err := m.WriteScore(createTestScore()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("writers after the failing one should not run")
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMultiWriter(NewSimpleWriter(&buf)).WriteHistory(createTestHistory()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("expected output")
		}
	})
}
