package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/cta/internal/config"
	"github.com/nao1215/cta/internal/database"
)

// TestRunHistory tests listing and showing saved runs.
func TestRunHistory(t *testing.T) {
	t.Parallel()

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		ds := writeDataset(t)
		stdout, _, err := execute(t, "", "history", "--data-dir", ds.dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "No saved runs\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("list and show", func(t *testing.T) {
		t.Parallel()

		server := newFakeEndpoint(t)
		ds := writeDataset(t)

		for range 2 {
			if _, _, err := execute(t, "", annotateArgs(ds, server, "-y")...); err != nil {
				t.Fatalf("annotate failed: %v", err)
			}
		}

		list, _, err := execute(t, "", "history", "--data-dir", ds.dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(list), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 runs\n%s", list)
		}
		if !strings.HasPrefix(lines[1], "2 ") || !strings.HasPrefix(lines[2], "1 ") {
			t.Errorf("expected newest run first\n%s", list)
		}

		limited, _, err := execute(t, "", "history", "-l", "1", "--data-dir", ds.dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(strings.Split(strings.TrimSpace(limited), "\n")); got != 2 {
			t.Errorf("expected header and 1 run, got %d lines", got)
		}

		shown, _, err := execute(t, "", "history", "latest", "--data-dir", ds.dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(shown, "Run ID:        2") || !strings.Contains(shown, "CITIES,0") {
			t.Errorf("expected latest run\n%s", shown)
		}

		md, _, err := execute(t, "", "history", "1", "-m", "--data-dir", ds.dataDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(md, "# Column Type Annotation Run") {
			t.Errorf("expected markdown run\n%s", md)
		}
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		ds := writeDataset(t)

		tests := []struct {
			name    string
			args    []string
			wantErr error
		}{
			{"invalid id", []string{"history", "abc"}, database.ErrInvalidRunID},
			{"unknown id", []string{"history", "9"}, database.ErrRunNotFound},
			{"no latest", []string{"history", "latest"}, database.ErrRunNotFound},
			{"negative limit", []string{"history", "--limit=-1"}, config.ErrInvalidLimit},
		}
		for _, tt := range tests {
			_, _, err := execute(t, "", append(tt.args, "--data-dir", ds.dataDir)...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: expected %v, got %v", tt.name, tt.wantErr, err)
			}
		}
	})
}
