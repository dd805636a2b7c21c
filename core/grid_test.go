package core

import (
	"context"
	"testing"

	"github.com/huangsam/churnlab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExpandGrid builds the full cartesian product in stable order.
func TestExpandGrid(t *testing.T) {
	grid := ExpandGrid([]float64{0.01, 0.001}, []int{10, 20}, []int{4}, false)
	require.Len(t, grid, 4)
	assert.Equal(t, schema.Hyperparams{CP: 0.01, MinSplit: 10, MaxDepth: 4}, grid[0])
	assert.Equal(t, schema.Hyperparams{CP: 0.001, MinSplit: 20, MaxDepth: 4}, grid[3])

	withPruned := ExpandGrid([]float64{0.01, 0.001}, []int{10, 20}, []int{4}, true)
	require.Len(t, withPruned, 8)
	assert.False(t, withPruned[0].Prune)
	assert.True(t, withPruned[1].Prune)
	assert.Equal(t, withPruned[0].CP, withPruned[1].CP)
}

// TestRunGrid trains every point and keeps results in grid order.
func TestRunGrid(t *testing.T) {
	data := benchmarkDataset()
	part, err := Split(data, 0.7, 42)
	require.NoError(t, err)

	grid := ExpandGrid([]float64{0.01, 0.001}, []int{2, 20}, []int{4, 8}, true)
	results := RunGrid(context.Background(), part, grid, 4)
	require.Len(t, results, len(grid))

	for i, r := range results {
		assert.Equal(t, grid[i], r.Params)
		require.NoError(t, r.Err)
		require.NotNil(t, r.Model)
		require.NotNil(t, r.Report)
		assert.Equal(t, part.Test.Len(), r.Report.Confusion.Total())
	}
}

// TestRunGridLocalizesErrors lets bad points fail without aborting others.
func TestRunGridLocalizesErrors(t *testing.T) {
	data := benchmarkDataset()
	part, err := Split(data, 0.7, 42)
	require.NoError(t, err)

	grid := []schema.Hyperparams{
		{CP: 0.001, MinSplit: 2, MaxDepth: 4},
		{CP: -1, MinSplit: 2, MaxDepth: 4}, // invalid cp
		{CP: 0.001, MinSplit: 2, MaxDepth: 8},
	}
	results := RunGrid(context.Background(), part, grid, 2)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[2].Err)

	var invalid *InvalidHyperparameterError
	require.ErrorAs(t, results[1].Err, &invalid)
	assert.Nil(t, results[1].Model)
}

// TestRunGridDeterminism repeats the search with the same inputs.
func TestRunGridDeterminism(t *testing.T) {
	data := benchmarkDataset()
	part, err := Split(data, 0.7, 42)
	require.NoError(t, err)

	grid := ExpandGrid([]float64{0.01, 0.001}, []int{2}, []int{8}, false)
	first := RunGrid(context.Background(), part, grid, 4)
	second := RunGrid(context.Background(), part, grid, 1)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Params, second[i].Params)
		require.NotNil(t, first[i].Model)
		require.NotNil(t, second[i].Model)
		assert.Equal(t, first[i].Model.Root, second[i].Model.Root)
		assert.Equal(t, first[i].Report.Confusion, second[i].Report.Confusion)
	}
}

// TestRunGridCancelledContext marks all points with the context error.
func TestRunGridCancelledContext(t *testing.T) {
	data := benchmarkDataset()
	part, err := Split(data, 0.7, 42)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	grid := ExpandGrid([]float64{0.01}, []int{2}, []int{4}, false)
	results := RunGrid(ctx, part, grid, 2)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}
