package runstore

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/huangsam/churnlab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// BeginRun should return 0 for NoneBackend
	runID, err := store.BeginRun(time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	// Other operations should not error
	err = store.EndRun(1, time.Now(), 4)
	assert.NoError(t, err)

	err = store.RecordGridPoint(1, schema.GridPointRecord{Params: "cp=0.01"})
	assert.NoError(t, err)

	status, err := store.GetStatus()
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	err = store.Close()
	assert.NoError(t, err)
}

func TestRunStore_SQLite(t *testing.T) {
	// Use in-memory SQLite for testing
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Test BeginRun
	startTime := time.Now()
	configParams := map[string]any{
		"input":     "/test/customers.csv",
		"neighbors": 5,
		"split":     0.7,
		"policy":    "recall-first",
	}
	runID, err := store.BeginRun(startTime, configParams)
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	// Test RecordGridPoint
	point := schema.GridPointRecord{
		RunID:      runID,
		Params:     "cp=0.010,minsplit=20,maxdepth=8,pruned=false",
		RecordedAt: time.Now(),
		Accuracy:   0.91,
		Precision:  0.72,
		Recall:     0.68,
		F1:         0.6994,
		AUC:        0.85,
		Nodes:      17,
		Selected:   true,
	}
	err = store.RecordGridPoint(runID, point)
	assert.NoError(t, err)

	// Test EndRun
	endTime := time.Now()
	err = store.EndRun(runID, endTime, 1)
	assert.NoError(t, err)
}

func TestRunStore_UndefinedMetricsStoredAsNull(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun(time.Now(), map[string]any{"test": "nan"})
	require.NoError(t, err)

	// Precision, F1 and AUC are NaN, as for a fold with no positive predictions
	point := schema.GridPointRecord{
		RunID:      runID,
		Params:     "cp=0.100,minsplit=40,maxdepth=4,pruned=false",
		RecordedAt: time.Now(),
		Accuracy:   0.95,
		Precision:  math.NaN(),
		Recall:     0.0,
		F1:         math.NaN(),
		AUC:        math.NaN(),
		Nodes:      1,
		Selected:   false,
	}
	err = store.RecordGridPoint(runID, point)
	require.NoError(t, err)

	db := store.(*RunStoreImpl).db
	var precision, f1, auc sql.NullFloat64
	var recall float64
	row := db.QueryRow(`SELECT precision_score, recall_score, f1_score, auc FROM "churnlab_grid_points" WHERE run_id = ?`, runID)
	err = row.Scan(&precision, &recall, &f1, &auc)
	require.NoError(t, err)

	assert.False(t, precision.Valid)
	assert.False(t, f1.Valid)
	assert.False(t, auc.Valid)
	assert.Equal(t, 0.0, recall)
}

func TestRunStore_RuntimeCapture(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Start the run at a known time
	startTime := time.Now().Add(-100 * time.Millisecond)
	runID, err := store.BeginRun(startTime, map[string]any{"test": "runtime"})
	require.NoError(t, err)

	endTime := time.Now()
	err = store.EndRun(runID, endTime, 4)
	assert.NoError(t, err)

	// Query the database to verify runtime was captured
	db := store.(*RunStoreImpl).db
	var storedStartTime, storedEndTime string
	var storedDurationMs int64

	row := db.QueryRow(`SELECT start_time, end_time, run_duration_ms FROM "churnlab_runs" WHERE run_id = ?`, runID)
	err = row.Scan(&storedStartTime, &storedEndTime, &storedDurationMs)
	assert.NoError(t, err)

	storedStart, err := time.Parse(time.RFC3339Nano, storedStartTime)
	assert.NoError(t, err)
	storedEnd, err := time.Parse(time.RFC3339Nano, storedEndTime)
	assert.NoError(t, err)

	// Duration should be exactly end - start
	expectedDurationMs := storedEnd.Sub(storedStart).Milliseconds()
	assert.Equal(t, expectedDurationMs, storedDurationMs)
	assert.GreaterOrEqual(t, storedDurationMs, int64(100))
}

func TestRunStore_GetAllRuns(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Test empty store
	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	// Add some runs
	startTime := time.Now()
	configs := []map[string]any{
		{"policy": "recall-first", "neighbors": 5},
		{"policy": "recall-first", "neighbors": 3},
	}

	var runIDs []int64
	for _, config := range configs {
		id, err := store.BeginRun(startTime, config)
		require.NoError(t, err)
		runIDs = append(runIDs, id)

		err = store.EndRun(id, startTime.Add(time.Minute), 8)
		assert.NoError(t, err)
	}

	// Get all runs; newest first
	runs, err = store.GetAllRuns()
	assert.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, runIDs[1], runs[0].RunID)
	assert.Equal(t, runIDs[0], runs[1].RunID)
	for _, run := range runs {
		assert.Equal(t, 8, run.GridPoints)
		require.NotNil(t, run.RunDurationMs)
		assert.Greater(t, *run.RunDurationMs, int64(0))
		require.NotNil(t, run.ConfigParams)
		assert.Contains(t, *run.ConfigParams, "recall-first")
	}
}

func TestRunStore_Status(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Empty store
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, int64(0), status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes["churnlab_runs"])
	assert.Equal(t, int64(0), status.TableSizes["churnlab_grid_points"])

	// Record two runs with one grid point each
	var lastID int64
	for i := range 2 {
		id, err := store.BeginRun(time.Now(), map[string]any{"run": i})
		require.NoError(t, err)
		lastID = id

		err = store.RecordGridPoint(id, schema.GridPointRecord{
			Params:     "cp=0.010,minsplit=20,maxdepth=8,pruned=false",
			RecordedAt: time.Now(),
			Accuracy:   0.9,
			Nodes:      3,
		})
		require.NoError(t, err)

		err = store.EndRun(id, time.Now(), 1)
		require.NoError(t, err)
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.TotalRuns)
	assert.Equal(t, lastID, status.LastRunID)
	assert.False(t, status.LastRunTime.IsZero())
	assert.False(t, status.OldestRunTime.IsZero())
	assert.Equal(t, int64(2), status.TableSizes["churnlab_runs"])
	assert.Equal(t, int64(2), status.TableSizes["churnlab_grid_points"])
}

func TestRunStore_GetAllGridPoints(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	// Empty store
	points, err := store.GetAllGridPoints()
	assert.NoError(t, err)
	assert.Empty(t, points)

	runID, err := store.BeginRun(time.Now(), map[string]any{"test": "grid"})
	require.NoError(t, err)

	recorded := []schema.GridPointRecord{
		{
			Params:     "cp=0.001 minsplit=10 maxdepth=16",
			RecordedAt: time.Now(),
			Accuracy:   0.89,
			Precision:  0.7,
			Recall:     0.66,
			F1:         0.6794,
			AUC:        0.81,
			Nodes:      21,
			Selected:   true,
		},
		{
			Params:     "cp=0.01 minsplit=20 maxdepth=8",
			RecordedAt: time.Now(),
			Accuracy:   0.95,
			Precision:  math.NaN(),
			Recall:     0.0,
			F1:         math.NaN(),
			AUC:        math.NaN(),
			Nodes:      1,
			Selected:   false,
		},
	}
	for _, point := range recorded {
		require.NoError(t, store.RecordGridPoint(runID, point))
	}

	points, err = store.GetAllGridPoints()
	require.NoError(t, err)
	require.Len(t, points, 2)

	// Ordered by run then params, so cp=0.001 comes first
	first := points[0]
	assert.Equal(t, runID, first.RunID)
	assert.Equal(t, "cp=0.001 minsplit=10 maxdepth=16", first.Params)
	assert.InDelta(t, 0.66, first.Recall, 0.0001)
	assert.True(t, first.Selected)

	// NULL metrics come back as NaN
	second := points[1]
	assert.True(t, math.IsNaN(second.Precision))
	assert.True(t, math.IsNaN(second.F1))
	assert.True(t, math.IsNaN(second.AUC))
	assert.Equal(t, 0.0, second.Recall)
	assert.Equal(t, 1, second.Nodes)
}

func TestRunStore_Clear(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	id, err := store.BeginRun(time.Now(), map[string]any{"test": "clear"})
	require.NoError(t, err)
	err = store.RecordGridPoint(id, schema.GridPointRecord{
		Params:     "cp=0.001,minsplit=10,maxdepth=16,pruned=true",
		RecordedAt: time.Now(),
		Nodes:      9,
	})
	require.NoError(t, err)

	err = store.Clear()
	assert.NoError(t, err)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.TotalRuns)
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	store, err := NewRunStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "unsupported backend")
}
