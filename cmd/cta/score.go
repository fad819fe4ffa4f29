package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/cta/internal/config"
	"github.com/nao1215/cta/internal/database"
	"github.com/nao1215/cta/internal/dataset"
	"github.com/nao1215/cta/internal/model"
	"github.com/nao1215/cta/internal/score"
)

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [results-file]",
		Short: "Score predictions against a ground truth file",
		Long: `Score compares predictions with a ground truth file and prints the share
of ground truth rows whose class equals the prediction exactly.

The predictions are read from a result CSV (default: the configured output
file) or, with --run-id, from a run saved in the history database. By
default each ground truth row is matched with the prediction for the same
(table, column) pair. --positional instead compares the i-th prediction with
the i-th ground truth row, which only makes sense when both files list the
targets in the same order.

Examples:
  # Score the default result file
  cta score -g gt.csv

  # Score a specific result file and print Markdown
  cta score predictions.csv -g gt.csv -m

  # Score a run from the history database
  cta score --run-id 3 -g gt.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScoreCmd,
	}

	cmd.Flags().StringP("ground-truth", "g", "",
		"Ground truth CSV (table_id, column_index, class)")
	cmd.Flags().Int64P("run-id", "r", 0,
		"Score a run from the history database instead of a result file")
	cmd.Flags().Bool("positional", false,
		"Match predictions and ground truth by row position")
	cmd.Flags().Bool("no-history", false,
		"Do not record the score in the history database")

	addConfigFlag(cmd)
	addReportFlags(cmd)

	return cmd
}

// runScoreCmd executes the score command.
func runScoreCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := overrideString(cmd, "ground-truth", &cfg.GroundTruthFile); err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.GroundTruthFile == "" {
		return fmt.Errorf("configuration error: %w", config.ErrNoGroundTruthFile)
	}

	runID, err := cmd.Flags().GetInt64("run-id")
	if err != nil {
		return err
	}
	if runID != 0 && len(args) > 0 {
		return errors.New("specify either a results file or --run-id, not both")
	}
	if runID < 0 {
		return fmt.Errorf("%w: %d", database.ErrInvalidRunID, runID)
	}

	positional, err := cmd.Flags().GetBool("positional")
	if err != nil {
		return err
	}
	mode := model.ScoreModeKeyed
	if positional {
		mode = model.ScoreModePositional
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return err
	}
	cfg.SaveToDB = !noHistory

	resultsFile := cfg.OutputFile
	if len(args) > 0 {
		resultsFile = args[0]
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	return runScore(cmd, cfg, resultsFile, runID, mode, logger)
}

// runScore loads predictions and ground truth, scores them and prints the report.
func runScore(cmd *cobra.Command, cfg *config.Config, resultsFile string, runID int64, mode model.ScoreMode, logger *slog.Logger) error {
	ctx := cmd.Context()

	var db *database.RunDB
	if cfg.SaveToDB || runID != 0 {
		var err error
		db, err = openHistory(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	results, runID, err := loadPredictions(ctx, db, resultsFile, runID)
	if err != nil {
		return err
	}

	truth, err := dataset.LoadGroundTruth(cfg.GroundTruthFile)
	if err != nil {
		return fmt.Errorf("failed to load ground truth: %w", err)
	}

	report, err := score.Score(results, truth, mode)
	if err != nil {
		return fmt.Errorf("failed to score predictions: %w", err)
	}
	report.GroundTruthFile = cfg.GroundTruthFile

	logger.Info("scored predictions",
		"mode", report.Mode,
		"matches", report.Matches,
		"total", report.Total,
		"runID", runID,
	)

	if cfg.SaveToDB {
		if _, err := db.SaveScore(ctx, runID, report); err != nil {
			logger.Error("failed to record score", "error", err)
		}
	}

	_, err = newReportWriter(cfg, cmd.OutOrStdout()).WriteScore(report)
	return err
}

// loadPredictions returns the predictions to score and the ID of the run
// they belong to, or 0 when no saved run matches.
// With a positive runID the run is read from db; otherwise resultsFile is
// read and matched against saved runs by content digest.
func loadPredictions(ctx context.Context, db *database.RunDB, resultsFile string, runID int64) ([]model.AnnotationResult, int64, error) {
	if runID != 0 {
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to load run %d: %w", runID, err)
		}
		return run.Results, runID, nil
	}

	results, err := dataset.LoadResults(resultsFile)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load results: %w", err)
	}
	if db == nil {
		return results, 0, nil
	}

	id, found, err := db.FindRunByDigest(ctx, database.Digest(results))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to look up run: %w", err)
	}
	if !found {
		return results, 0, nil
	}
	return results, id, nil
}
