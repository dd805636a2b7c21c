package runstore

import (
	"errors"
	"fmt"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/parquet"
)

// ExecuteRunsExport exports the tracked run history to Parquet files.
func ExecuteRunsExport(store contract.RunStore, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}

	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total pipeline runs: %d\n", status.TotalRuns)
	fmt.Printf("Total grid point records: %d\n", status.TableSizes[gridPointsTable])

	// Retrieve all pipeline runs
	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve pipeline runs: %w", err)
	}

	// Retrieve all grid points
	gridPoints, err := store.GetAllGridPoints()
	if err != nil {
		return fmt.Errorf("failed to retrieve grid points: %w", err)
	}

	// Convert to Parquet format
	parquetRuns := parquet.ConvertRunRecords(runs)
	parquetGridPoints := parquet.ConvertGridPointRecords(gridPoints)

	// Write pipeline runs to Parquet
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WritePipelineRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write pipeline runs: %w", err)
	}
	fmt.Printf("Exported %d pipeline runs to: %s\n", len(parquetRuns), runsFile)

	// Write grid points to Parquet
	gridPointsFile := outputFile + ".grid_points.parquet"
	if err := parquet.WriteGridPointMetricsParquet(parquetGridPoints, gridPointsFile); err != nil {
		return fmt.Errorf("failed to write grid points: %w", err)
	}
	fmt.Printf("Exported %d grid point records to: %s\n", len(parquetGridPoints), gridPointsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
