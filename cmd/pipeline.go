package cmd

import (
	"github.com/huangsam/churnlab/core"
	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/loader"
	"github.com/spf13/cobra"
)

// pipelineCmd runs the full churn prediction pipeline.
var pipelineCmd = &cobra.Command{
	Use:   "pipeline <dataset.csv>",
	Short: "Run the full churn pipeline and compare the hyperparameter grid.",
	Long: `Run the end-to-end churn prediction pipeline on a customer CSV.

The pipeline engineers features, balances the classes with synthetic minority
samples, splits the data with stratification, then trains and evaluates one
decision tree per grid point, helping you:
- Compare hyperparameter combinations side by side
- Catch degenerate models that never predict churn
- Pick a production candidate with a recall-first policy
- Track every run in a local or remote database

Examples:
  # Run with the default grid
  churnlab pipeline customers.csv

  # Sweep a custom grid including pruned variants
  churnlab pipeline customers.csv --cp-grid 0.01,0.001 --pruned yes

  # Reproduce a run exactly
  churnlab pipeline customers.csv --seed 1337

  # Export findings to CSV for tracking
  churnlab pipeline customers.csv --output csv --output-file grid.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer func() { _ = runStore.Close() }()
		if err := core.ExecutePipeline(rootCtx, cfg, loader.NewCSVLoader(), runStore); err != nil {
			contract.LogFatal("Cannot run pipeline", err)
		}
	},
}
