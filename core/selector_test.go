package core

import (
	"errors"
	"math"
	"testing"

	"github.com/huangsam/churnlab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultWith(recall, f1, auc float64) schema.GridResult {
	return schema.GridResult{
		Model: &schema.DecisionTreeModel{Root: &schema.TreeNode{Size: 1, Counts: [2]int{1, 0}}},
		Report: &schema.EvaluationReport{
			Recall: recall,
			F1:     f1,
			AUC:    auc,
		},
	}
}

// TestRecallFirstPolicy orders by recall, then F1, then AUC.
func TestRecallFirstPolicy(t *testing.T) {
	policy := RecallFirstPolicy{}

	tests := []struct {
		name   string
		a      schema.GridResult
		b      schema.GridResult
		better bool
	}{
		{name: "higher recall wins", a: resultWith(0.8, 0.2, 0.2), b: resultWith(0.7, 0.9, 0.9), better: true},
		{name: "lower recall loses", a: resultWith(0.6, 0.9, 0.9), b: resultWith(0.7, 0.1, 0.1), better: false},
		{name: "recall tie breaks on f1", a: resultWith(0.7, 0.6, 0.1), b: resultWith(0.7, 0.5, 0.9), better: true},
		{name: "f1 tie breaks on auc", a: resultWith(0.7, 0.5, 0.8), b: resultWith(0.7, 0.5, 0.6), better: true},
		{name: "full tie is not better", a: resultWith(0.7, 0.5, 0.6), b: resultWith(0.7, 0.5, 0.6), better: false},
		{name: "defined beats undefined", a: resultWith(0.1, 0, 0), b: resultWith(math.NaN(), 1, 1), better: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.better, policy.Better(&tt.a, &tt.b))
		})
	}
}

// TestSelectBest picks the policy winner and skips failed points.
func TestSelectBest(t *testing.T) {
	results := []schema.GridResult{
		resultWith(0.6, 0.5, 0.7),
		{Err: errors.New("bad grid point")},
		resultWith(0.9, 0.4, 0.5),
		resultWith(0.9, 0.6, 0.5),
	}

	best, err := SelectBest(results, RecallFirstPolicy{})
	require.NoError(t, err)
	assert.Same(t, &results[3], best)
}

// TestSortByPolicy orders results best-first and sinks failed points to
// the end, keeping their relative order.
func TestSortByPolicy(t *testing.T) {
	results := []schema.GridResult{
		resultWith(0.6, 0.5, 0.7),
		{Err: errors.New("first failure")},
		resultWith(0.9, 0.4, 0.5),
		{Err: errors.New("second failure")},
		resultWith(0.9, 0.6, 0.5),
	}

	SortByPolicy(results, RecallFirstPolicy{})

	require.Len(t, results, 5)
	assert.Equal(t, 0.6, results[0].Report.F1, "recall tie should break on F1")
	assert.Equal(t, 0.4, results[1].Report.F1)
	assert.Equal(t, 0.6, results[2].Report.Recall)
	assert.EqualError(t, results[3].Err, "first failure")
	assert.EqualError(t, results[4].Err, "second failure")
}

// TestSortByPolicyNilPolicy falls back to recall-first when nil.
func TestSortByPolicyNilPolicy(t *testing.T) {
	results := []schema.GridResult{
		resultWith(0.2, 0.2, 0.2),
		resultWith(0.4, 0.1, 0.1),
	}

	SortByPolicy(results, nil)
	assert.Equal(t, 0.4, results[0].Report.Recall)
}

// TestSelectBestDefaultsPolicy falls back to recall-first when nil.
func TestSelectBestDefaultsPolicy(t *testing.T) {
	results := []schema.GridResult{
		resultWith(0.2, 0.2, 0.2),
		resultWith(0.4, 0.1, 0.1),
	}

	best, err := SelectBest(results, nil)
	require.NoError(t, err)
	assert.Same(t, &results[1], best)
}

// TestSelectBestAllFailed errors out when nothing trained.
func TestSelectBestAllFailed(t *testing.T) {
	results := []schema.GridResult{
		{Err: errors.New("first failure")},
		{Err: errors.New("second failure")},
	}

	_, err := SelectBest(results, RecallFirstPolicy{})
	assert.Error(t, err)
}
