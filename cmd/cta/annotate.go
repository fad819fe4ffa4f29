package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/cta/internal/aggregate"
	"github.com/nao1215/cta/internal/config"
	"github.com/nao1215/cta/internal/dataset"
	"github.com/nao1215/cta/internal/model"
	"github.com/nao1215/cta/internal/pipeline"
	"github.com/nao1215/cta/internal/report"
	"github.com/nao1215/cta/internal/score"
	"github.com/nao1215/cta/internal/sparql"
)

// NewAnnotateCmd creates the annotate command.
func NewAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Predict the ontology class of every target column",
		Long: `Annotate predicts a class for every (table, column) pair in the target list.

Each cell of the column is normalized into a lookup key, the key is resolved
against the SPARQL endpoint, and the classes returned for all cells are
counted. The --count most frequent classes become the prediction.

Results are printed as they are produced. At the end you are asked whether
to save them to the output file (use --yes to skip the question). When a
ground truth file is given, the predictions are also scored.

Examples:
  # Annotate with the default dataset layout
  cta annotate

  # Predict the three most frequent classes per column
  cta annotate -n 3 -t targets.csv -d tables/

  # Annotate, score and save without asking
  cta annotate -g gt.csv -y -o predictions.csv

  # Use a private endpoint behind a SOCKS5 proxy
  cta annotate --endpoint https://kb.example.com/sparql --proxy 127.0.0.1:1080`,
		Args: cobra.NoArgs,
		RunE: runAnnotateCmd,
	}

	// Dataset flags
	cmd.Flags().IntP("count", "n", config.DefaultTopN,
		"Number of classes predicted per column")
	cmd.Flags().StringP("targets", "t", config.DefaultTargetsFile,
		"Target list CSV (table_id, column_index)")
	cmd.Flags().StringP("tables", "d", config.DefaultTablesDir,
		"Directory holding one <table_id>.csv file per table")
	cmd.Flags().StringP("ground-truth", "g", "",
		"Ground truth CSV used to score the predictions")
	cmd.Flags().Int("limit", 0,
		"Read at most this many targets (0 reads all)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Result CSV path")
	cmd.Flags().BoolP("yes", "y", false,
		"Save results without asking for confirmation")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	// Knowledge base flags
	cmd.Flags().String("endpoint", sparql.DefaultEndpoint,
		"SPARQL endpoint URL")
	cmd.Flags().String("namespace", sparql.DefaultOntologyNamespace,
		"Ontology namespace of the classes to keep")
	cmd.Flags().String("resource-base", sparql.DefaultResourceBase,
		"Base IRI prefixed to every lookup key")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:1080)")
	cmd.Flags().DurationP("timeout", "T", config.DefaultTimeout,
		"Timeout for each lookup")

	// Concurrency flags
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of targets annotated at once")
	cmd.Flags().Int("cell-concurrency", config.DefaultCellConcurrency,
		"Number of cells of one column resolved at once")
	cmd.Flags().Bool("skip-lookup-errors", false,
		"Count failed lookups as cells without classes instead of stopping")

	addConfigFlag(cmd)
	addReportFlags(cmd)

	return cmd
}

// runAnnotateCmd executes the annotate command.
func runAnnotateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildAnnotateConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	return runAnnotate(ctx, cmd, cfg, logger)
}

// buildAnnotateConfig layers the annotate flags over the loaded config.
func buildAnnotateConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	for name, dst := range map[string]*string{
		"targets":       &cfg.TargetsFile,
		"tables":        &cfg.TablesDir,
		"ground-truth":  &cfg.GroundTruthFile,
		"output":        &cfg.OutputFile,
		"endpoint":      &cfg.Endpoint,
		"namespace":     &cfg.Namespace,
		"resource-base": &cfg.ResourceBase,
		"proxy":         &cfg.ProxyAddress,
	} {
		if err := overrideString(cmd, name, dst); err != nil {
			return nil, err
		}
	}
	for name, dst := range map[string]*int{
		"count":            &cfg.TopN,
		"limit":            &cfg.Limit,
		"concurrency":      &cfg.Concurrency,
		"cell-concurrency": &cfg.CellConcurrency,
	} {
		if err := overrideInt(cmd, name, dst); err != nil {
			return nil, err
		}
	}
	if err := overrideBool(cmd, "skip-lookup-errors", &cfg.SkipLookupErrors); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}

	if cfg.AssumeYes, err = cmd.Flags().GetBool("yes"); err != nil {
		return nil, err
	}
	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	if err := readReportFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runAnnotate annotates every target, then reports, records and saves the run.
func runAnnotate(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	targets, err := dataset.LoadTargets(cfg.TargetsFile, cfg.Limit)
	if err != nil {
		return fmt.Errorf("failed to load targets: %w", err)
	}

	var truth []model.GroundTruthRow
	if cfg.GroundTruthFile != "" {
		truth, err = dataset.LoadGroundTruth(cfg.GroundTruthFile)
		if err != nil {
			return fmt.Errorf("failed to load ground truth: %w", err)
		}
		if len(truth) == 0 {
			return fmt.Errorf("configuration error: %w", score.ErrEmptyGroundTruth)
		}
	}

	client, err := newSPARQLClient(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting annotation",
		"targets", len(targets),
		"endpoint", cfg.Endpoint,
		"topN", cfg.TopN,
		"concurrency", cfg.Concurrency,
		"cellConcurrency", cfg.CellConcurrency,
	)

	// Text mode streams every result to stdout; structured formats keep
	// stdout for the report and send progress to stderr.
	progress := out
	if cfg.JSONReport || cfg.MarkdownReport {
		progress = errOut
	}

	run, err := newDriver(cfg, client, progress, logger).Run(ctx, targets, cfg.TopN)
	if err != nil {
		if run != nil && run.Len() > 0 {
			fmt.Fprintf(errOut, "Stopped after %d of %d targets\n", run.Len(), len(targets))
		}
		return fmt.Errorf("annotation failed: %w", err)
	}
	run.Endpoint = cfg.Endpoint
	run.TargetsFile = cfg.TargetsFile

	var scoreReport *model.ScoreReport
	if len(truth) > 0 {
		scoreReport, err = score.Keyed(run.Results, truth)
		if err != nil {
			return fmt.Errorf("failed to score predictions: %w", err)
		}
		scoreReport.GroundTruthFile = cfg.GroundTruthFile
	}

	if cfg.SaveToDB {
		if err := recordRun(ctx, cfg, run, scoreReport, logger); err != nil {
			logger.Error("failed to record run", "error", err)
			fmt.Fprintf(errOut, "Warning: run was not recorded in history: %v\n", err)
		}
	}

	if err := writeAnnotateReport(cfg, out, run, scoreReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return saveResults(cmd, cfg, run)
}

// newSPARQLClient creates the knowledge-base client described by cfg.
func newSPARQLClient(cfg *config.Config, logger *slog.Logger) (*sparql.Client, error) {
	httpClient, err := sparql.NewHTTPClient(cfg.ProxyAddress, cfg.Headers)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client, err := sparql.NewClient(cfg.Endpoint,
		sparql.WithHTTPClient(httpClient),
		sparql.WithResourceBase(cfg.ResourceBase),
		sparql.WithOntologyNamespace(cfg.Namespace),
		sparql.WithTimeout(cfg.Timeout),
		sparql.WithUserAgent(cfg.UserAgent),
		sparql.WithMaxBodySize(cfg.MaxBodySize),
		sparql.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SPARQL client: %w", err)
	}
	return client, nil
}

// newDriver wires the table store, the aggregator and the driver.
// Every result is printed to progress as soon as it is produced.
func newDriver(cfg *config.Config, resolver aggregate.Resolver, progress io.Writer, logger *slog.Logger) *pipeline.Driver {
	store := dataset.NewTableStore(cfg.TablesDir)
	aggregator := aggregate.New(resolver,
		aggregate.WithConcurrency(cfg.CellConcurrency),
		aggregate.WithSkipLookupErrors(cfg.SkipLookupErrors),
		aggregate.WithLogger(logger),
	)

	return pipeline.NewDriver(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(store, aggregator, pipeline.WithLogger(logger))
		},
		pipeline.WithTargetConcurrency(cfg.Concurrency),
		pipeline.WithDriverLogger(logger),
		pipeline.WithResultCallback(func(res model.AnnotationResult) {
			fmt.Fprintln(progress, res.String())
		}),
	)
}

// recordRun stores the run and its score in the history database.
func recordRun(ctx context.Context, cfg *config.Config, run *model.Run, scoreReport *model.ScoreReport, logger *slog.Logger) error {
	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return err
	}
	logger.Info("run recorded", "id", id, "path", db.Path())

	if scoreReport != nil {
		if _, err := db.SaveScore(ctx, id, scoreReport); err != nil {
			return err
		}
	}
	return nil
}

// writeAnnotateReport writes the end-of-run report in the selected format.
func writeAnnotateReport(cfg *config.Config, out io.Writer, run *model.Run, scoreReport *model.ScoreReport) error {
	switch w := newReportWriter(cfg, out).(type) {
	case *report.FullJSONWriter:
		_, err := w.WriteRunWithScore(run, scoreReport)
		return err
	case *report.MarkdownWriter:
		if _, err := w.WriteRun(run); err != nil {
			return err
		}
	default:
		fmt.Fprintf(out, "\nAnnotated %d columns (%d without prediction) in %s\n",
			run.Len(), run.EmptyCount(), run.Duration().Round(time.Millisecond))
	}

	if scoreReport == nil {
		return nil
	}
	_, err := newReportWriter(cfg, out).WriteScore(scoreReport)
	return err
}

// saveResults writes the result CSV after confirmation.
func saveResults(cmd *cobra.Command, cfg *config.Config, run *model.Run) error {
	errOut := cmd.ErrOrStderr()

	if !cfg.AssumeYes {
		ok, err := confirm("Save to file?", cmd.InOrStdin(), errOut)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(errOut, "Results were not saved")
			return nil
		}
	}

	if err := dataset.SaveResults(cfg.OutputFile, run.Results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}
	fmt.Fprintf(errOut, "Saved %d results to %s\n", run.Len(), cfg.OutputFile)
	return nil
}
