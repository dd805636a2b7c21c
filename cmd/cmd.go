// Package cmd defines the command-line interface for churnlab.
package cmd

import (
	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("positive-label", "cancelled", "Status value treated as the churn (positive) class")
	rootCmd.PersistentFlags().Int("neighbors", contract.DefaultNeighbors, "Number of nearest neighbors for synthetic oversampling")
	rootCmd.PersistentFlags().String("split-fraction", "0.7", "Train fraction for the stratified split (strictly between 0 and 1)")
	rootCmd.PersistentFlags().Int64("seed", contract.DefaultSeed, "Random seed for balancing and splitting")
	rootCmd.PersistentFlags().String("min-gain", "0", "Information gain threshold for feature selection")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("policy", "recall-first", "Model selection policy")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("runs-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of pipelineCmd to Viper
	pipelineCmd.Flags().String("cp-grid", "", "Comma-separated complexity penalty values (e.g., '0.01,0.005,0.001')")
	pipelineCmd.Flags().String("minsplit-grid", "", "Comma-separated minimum node sizes eligible for splitting")
	pipelineCmd.Flags().String("maxdepth-grid", "", "Comma-separated maximum tree depths")
	pipelineCmd.Flags().String("pruned", "no", "Also evaluate a pruned variant of every grid point (yes/no)")
	if err := viper.BindPFlags(pipelineCmd.Flags()); err != nil {
		contract.LogFatal("Error binding pipeline flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
