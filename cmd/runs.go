package cmd

import (
	"fmt"

	"github.com/huangsam/churnlab/core"
	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/runstore"
	"github.com/huangsam/churnlab/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads minimal configuration needed for run store operations.
// This is used by commands that need store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get run-tracking config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as the SQLite default
	backend := schema.SQLiteBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	cfg.OutputFile = viper.GetString("output-file")
	cfg.Output = schema.OutputMode(viper.GetString("output"))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	// Initialize the store with the loaded config
	store, err := runstore.NewRunStore(backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}
	runStore = store

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create
// tables, allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	backend := schema.SQLiteBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of the
// full sharedSetup used by pipeline commands. This avoids dataset validation
// and grid parsing for simple bookkeeping operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage tracked pipeline runs and exports",
	Long: `Manage the historical run data recorded by the pipeline command.

When enabled, ChurnLab tracks every pipeline run, storing:
- Run metadata (timestamp, configuration, duration)
- Evaluation metrics for every grid point
- Which grid point the selection policy picked

This enables longitudinal comparison of models as the dataset evolves.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracked runs
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  churnlab runs status

  # Export for analysis in pandas/DuckDB
  churnlab runs export --output-file churn-runs.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer func() { _ = runStore.Close() }()
		if err := core.ExecuteRuns(cfg, runStore); err != nil {
			contract.LogFatal("Cannot list runs", err)
		}
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about historical run tracking.

Displays:
- Backend type and connection status
- Total number of pipeline runs stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  # Check run tracking status
  churnlab runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer func() { _ = runStore.Close() }()
		if err := core.ExecuteRunsStatus(cfg, runStore); err != nil {
			contract.LogFatal("Failed to get runs status", err)
		}
	},
}

// runsClearCmd clears the run data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked pipeline run data",
	Long: `Delete all stored pipeline runs and grid point metrics.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  churnlab runs export --output-file backup.parquet
  churnlab runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer func() { _ = runStore.Close() }()
		if err := runStore.Clear(); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run data to Parquet format for use with analytics tools.

Exports two datasets:
- Pipeline runs - metadata about each pipeline execution
- Grid point metrics - evaluation metrics per hyperparameter combination

Requires: --output-file parameter

Examples:
  # Export all data
  churnlab runs export --output-file churn-runs.parquet

  # Use with DuckDB for analysis
  churnlab runs export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet.runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		defer func() { _ = runStore.Close() }()
		if err := runstore.ExecuteRunsExport(runStore, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  churnlab runs migrate

  # Migrate to specific version
  churnlab runs migrate --target-version 1

  # Rollback to initial state
  churnlab runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := runstore.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
