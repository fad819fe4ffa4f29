package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/cta/internal/config"
)

// NewRootCmd creates the root command for cta.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cta",
		Short: "Column type annotation with a SPARQL knowledge base",
		Long: `cta predicts the ontology class of table columns.

Every cell of a target column is normalized into a lookup key and resolved
against a SPARQL endpoint (DBpedia by default). The classes returned for
all cells are counted and the most frequent ones become the prediction.
Predictions can be scored against a ground truth file, and every run is
recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("data-dir", config.XDGDataDir(),
		"Directory of the run history database")
	_ = cmd.PersistentFlags().MarkHidden("data-dir") //nolint:errcheck // flag is defined above

	cmd.AddCommand(NewAnnotateCmd())
	cmd.AddCommand(NewScoreCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
