package cmd

import (
	"github.com/huangsam/churnlab/core"
	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/loader"
	"github.com/spf13/cobra"
)

// featuresCmd ranks features by information gain.
var featuresCmd = &cobra.Command{
	Use:   "features <dataset.csv>",
	Short: "Rank engineered features by information gain.",
	Long: `Rank every engineered feature by how much information it carries about churn.

Runs the front half of the pipeline (feature engineering, encoding, balancing)
and scores each feature against the churn label, helping you:
- Understand which signals drive cancellations
- Spot features worth collecting more carefully
- Tune --min-gain before a full pipeline run

Examples:
  # Rank features on a dataset
  churnlab features customers.csv

  # Export the ranking as JSON
  churnlab features customers.csv --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer func() { _ = runStore.Close() }()
		if err := core.ExecuteRanking(rootCtx, cfg, loader.NewCSVLoader()); err != nil {
			contract.LogFatal("Cannot rank features", err)
		}
	},
}
