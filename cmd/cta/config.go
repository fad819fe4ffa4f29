package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/cta/internal/config"
	"github.com/nao1215/cta/internal/database"
	ctalog "github.com/nao1215/cta/internal/log"
	"github.com/nao1215/cta/internal/report"
)

// addConfigFlag registers the --config flag shared by annotate and score.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cta in current or home directory)")
}

// addReportFlags registers the mutually exclusive report format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
}

// loadConfig builds a Config from defaults, the configuration file and
// the flags explicitly set on the command line, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	dataDir, err := cmd.Flags().GetString("data-dir")
	if err == nil && dataDir != "" {
		cfg.DBDir = dataDir
	}

	if cmd.Flags().Lookup("config") != nil {
		cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
		if err != nil {
			return nil, err
		}
		if err := applyConfigFile(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyConfigFile loads the configuration file, if any, onto cfg.
// A file given with --config must exist; otherwise a missing file is fine.
func applyConfigFile(cfg *config.Config) error {
	path := config.FindConfigFile(cfg.ConfigFilePath)
	if path == "" {
		if cfg.ConfigFilePath != "" {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	if err := file.Apply(cfg); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// The override helpers copy a flag value onto dst only when the user set
// the flag, so configuration file values survive flag defaults.

func overrideString(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func overrideInt(cmd *cobra.Command, name string, dst *int) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func overrideBool(cmd *cobra.Command, name string, dst *bool) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// readReportFlags reads --json and --markdown into cfg.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}
	return nil
}

// setupLogger creates a redacting structured logger on w.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return ctalog.NewSecureLogger(w, verbose)
}

// newReportWriter returns the writer for the format selected in cfg.
func newReportWriter(cfg *config.Config, out io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}
}

// openHistory opens the run history database in cfg.DBDir.
func openHistory(cfg *config.Config) (*database.RunDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
