// Package parquet provides data structures and functions for exporting
// churn run tracking data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/huangsam/churnlab/schema"
	"github.com/parquet-go/parquet-go"
)

// PipelineRun represents a single tracked pipeline run with metadata.
// This struct maps to the churnlab_runs database table.
type PipelineRun struct {
	// RunID is the unique identifier for this pipeline run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable, stored as TIMESTAMP with nanosecond precision)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the pipeline run in milliseconds (nullable)
	RunDurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	// GridPoints is the number of grid points trained in this run
	GridPoints int32 `parquet:"grid_points,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// GridPointMetrics represents the evaluated metrics for one grid point of a run.
// This struct maps to the churnlab_grid_points database table.
type GridPointMetrics struct {
	// RunID references the parent pipeline run
	RunID int64 `parquet:"run_id,snappy"`

	// Params is the rendered hyperparameter tuple for this grid point
	Params string `parquet:"params,snappy"`

	// RecordedAt is when this grid point was persisted (stored as TIMESTAMP with nanosecond precision)
	RecordedAt time.Time `parquet:"recorded_at,snappy"`

	// Accuracy on the test partition (nullable; undefined metrics are null)
	Accuracy *float64 `parquet:"accuracy,optional,snappy"`

	// Precision on the test partition (nullable)
	Precision *float64 `parquet:"precision_score,optional,snappy"`

	// Recall on the test partition (nullable)
	Recall *float64 `parquet:"recall_score,optional,snappy"`

	// F1 on the test partition (nullable)
	F1 *float64 `parquet:"f1_score,optional,snappy"`

	// AUC on the test partition (nullable)
	AUC *float64 `parquet:"auc,optional,snappy"`

	// Nodes is the node count of the trained tree
	Nodes int32 `parquet:"nodes,snappy"`

	// Selected indicates whether the selection policy chose this grid point
	Selected bool `parquet:"selected,snappy"`
}

// WritePipelineRunsParquet writes a slice of PipelineRun structs to a Parquet file.
func WritePipelineRunsParquet(data []PipelineRun, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the PipelineRun struct tags
	writer := parquet.NewGenericWriter[PipelineRun](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteGridPointMetricsParquet writes a slice of GridPointMetrics structs to a Parquet file.
func WriteGridPointMetricsParquet(data []GridPointMetrics, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	// The schema is automatically derived from the GridPointMetrics struct tags
	writer := parquet.NewGenericWriter[GridPointMetrics](file)
	defer func() { _ = writer.Close() }()

	// Write all records to the file
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to PipelineRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []PipelineRun {
	result := make([]PipelineRun, len(records))
	for i, record := range records {
		result[i] = PipelineRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			GridPoints:    int32(record.GridPoints),
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertGridPointRecords converts schema.GridPointRecord to GridPointMetrics
// for Parquet export. Undefined (NaN) metrics become null columns.
func ConvertGridPointRecords(records []schema.GridPointRecord) []GridPointMetrics {
	result := make([]GridPointMetrics, len(records))
	for i, record := range records {
		result[i] = GridPointMetrics{
			RunID:      record.RunID,
			Params:     record.Params,
			RecordedAt: record.RecordedAt,
			Accuracy:   metricPtr(record.Accuracy),
			Precision:  metricPtr(record.Precision),
			Recall:     metricPtr(record.Recall),
			F1:         metricPtr(record.F1),
			AUC:        metricPtr(record.AUC),
			Nodes:      int32(record.Nodes),
			Selected:   record.Selected,
		}
	}
	return result
}

// MockFetchPipelineRuns generates sample PipelineRun data for demonstration.
func MockFetchPipelineRuns() []PipelineRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := now.Add(-1*time.Hour - 58*time.Minute)
	durationMs1 := endTime1.Sub(startTime1).Milliseconds()
	configParams1 := `{"policy":"recall-first","neighbors":5,"split_fraction":0.7}`

	startTime2 := now.Add(-24 * time.Hour)
	endTime2 := now.Add(-24*time.Hour + 3*time.Minute)
	durationMs2 := endTime2.Sub(startTime2).Milliseconds()
	configParams2 := `{"policy":"recall-first","neighbors":3,"split_fraction":0.8}`

	startTime3 := now.Add(-10 * time.Minute)
	// Note: end time, duration, and config are nil to demonstrate nullable fields

	return []PipelineRun{
		{
			RunID:         1,
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			GridPoints:    18,
			ConfigParams:  &configParams1,
		},
		{
			RunID:         2,
			StartTime:     startTime2,
			EndTime:       &endTime2,
			RunDurationMs: &durationMs2,
			GridPoints:    54,
			ConfigParams:  &configParams2,
		},
		{
			RunID:         3,
			StartTime:     startTime3,
			EndTime:       nil, // Still running - nullable field
			RunDurationMs: nil, // Not yet calculated - nullable field
			GridPoints:    0,
			ConfigParams:  nil, // No config stored - nullable field
		},
	}
}

// MockFetchGridPointMetrics generates sample GridPointMetrics data for demonstration.
func MockFetchGridPointMetrics() []GridPointMetrics {
	now := time.Now()
	accuracy1, precision1, recall1, f11, auc1 := 0.87, 0.81, 0.84, 0.82, 0.9
	accuracy2 := 0.79

	return []GridPointMetrics{
		{
			RunID:      1,
			Params:     "cp=0.01 minsplit=20 maxdepth=8",
			RecordedAt: now.Add(-2 * time.Hour),
			Accuracy:   &accuracy1,
			Precision:  &precision1,
			Recall:     &recall1,
			F1:         &f11,
			AUC:        &auc1,
			Nodes:      17,
			Selected:   true,
		},
		{
			// Degenerate tree that never predicted churn; its precision,
			// recall, F1, and AUC are undefined and stay null.
			RunID:      1,
			Params:     "cp=0.001 minsplit=40 maxdepth=4 pruned",
			RecordedAt: now.Add(-2 * time.Hour),
			Accuracy:   &accuracy2,
			Precision:  nil,
			Recall:     nil,
			F1:         nil,
			AUC:        nil,
			Nodes:      1,
			Selected:   false,
		},
	}
}

// metricPtr maps an undefined (NaN) metric to nil.
func metricPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
