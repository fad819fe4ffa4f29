package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/cta/internal/config"
	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/model"
)

// defaultHistoryLimit is the number of runs listed when --limit is not set.
const defaultHistoryLimit = 20

// latestRunArg selects the most recently saved run.
const latestRunArg = "latest"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show saved annotation runs",
		Long: `History lists the annotation runs recorded in the history database,
newest first, with their best score.

Given a run ID (or "latest"), it prints that run's predictions followed by
every score recorded for it.

Examples:
  # List the latest runs
  cta history

  # List all runs as JSON
  cta history --limit 0 -j

  # Show one run
  cta history 3

  # Show the most recent run
  cta history latest`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return fmt.Errorf("configuration error: %w", config.ErrInvalidLimit)
	}

	// Validate arguments before opening the database.
	var runID int64
	latest := len(args) > 0 && args[0] == latestRunArg
	if len(args) > 0 && !latest {
		runID, err = database.ParseRunID(args[0])
		if err != nil {
			return err
		}
	}

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	w := newReportWriter(cfg, cmd.OutOrStdout())

	if runID == 0 && !latest {
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		_, err = w.WriteHistory(runs)
		return err
	}

	var run *model.Run
	if latest {
		run, err = db.GetLatestRun(ctx)
	} else {
		run, err = db.GetRun(ctx, runID)
	}
	if err != nil {
		return err
	}
	scores, err := db.ListScores(ctx, run.ID)
	if err != nil {
		return err
	}

	if _, err := w.WriteRun(run); err != nil {
		return err
	}
	for _, s := range scores {
		if _, err := w.WriteScore(s); err != nil {
			return err
		}
	}
	return nil
}
