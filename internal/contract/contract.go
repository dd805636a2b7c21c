// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/churnlab/schema"
)

// DataLoader defines how raw customer tables enter the pipeline.
// This allows the pipeline logic to be tested without touching the filesystem.
type DataLoader interface {
	// Load reads and validates customer records from the given source path.
	Load(ctx context.Context, path string) ([]schema.CustomerRecord, error)
}

// RunStore defines the interface for tracking pipeline runs and storing
// grid-point metrics.
type RunStore interface {
	// BeginRun creates a new pipeline run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the pipeline run with completion data
	EndRun(runID int64, endTime time.Time, gridPoints int) error

	// RecordGridPoint stores the evaluated metrics for one grid point
	RecordGridPoint(runID int64, point schema.GridPointRecord) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded pipeline run, newest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllGridPoints returns every recorded grid point, ordered by run
	GetAllGridPoints() ([]schema.GridPointRecord, error)

	// Clear removes all recorded runs and grid points
	Clear() error

	// Close closes the underlying connection
	Close() error
}
