package core

import (
	"math"
	"testing"

	"github.com/huangsam/churnlab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel returns a tree that predicts positive when x > 0.5.
func stubModel() *schema.DecisionTreeModel {
	return &schema.DecisionTreeModel{
		Root: &schema.TreeNode{
			Col:       0,
			Feature:   "x",
			Threshold: 0.5,
			Size:      20,
			Counts:    [2]int{10, 10},
			Left:      &schema.TreeNode{Size: 10, Counts: [2]int{10, 0}},
			Right:     &schema.TreeNode{Size: 10, Counts: [2]int{0, 10}},
		},
		Columns: []string{"x"},
	}
}

// TestEvaluatePerfectClassifier pins every metric at 1 on separable data.
func TestEvaluatePerfectClassifier(t *testing.T) {
	rows := [][]float64{{0}, {0}, {0}, {1}, {1}, {1}}
	labels := []int{0, 0, 0, 1, 1, 1}
	test := makeDataset([]string{"x"}, nil, rows, labels)

	report := Evaluate(stubModel(), test)

	assert.Equal(t, schema.ConfusionMatrix{TP: 3, TN: 3}, report.Confusion)
	assert.Equal(t, 1.0, report.Accuracy)
	assert.Equal(t, 1.0, report.Precision)
	assert.Equal(t, 1.0, report.Recall)
	assert.Equal(t, 1.0, report.F1)
	assert.Equal(t, 1.0, report.AUC)
	assert.Empty(t, report.Notes)
}

// TestEvaluateConfusionSums checks counts always add up to the test size.
func TestEvaluateConfusionSums(t *testing.T) {
	rows := [][]float64{{0}, {0}, {1}, {1}, {1}, {0}, {1}}
	labels := []int{0, 1, 0, 1, 1, 0, 0}
	test := makeDataset([]string{"x"}, nil, rows, labels)

	report := Evaluate(stubModel(), test)

	assert.Equal(t, test.Len(), report.Confusion.Total())
	assert.Equal(t, test.Len(), report.TestSize)

	for name, v := range map[string]float64{
		"accuracy":  report.Accuracy,
		"precision": report.Precision,
		"recall":    report.Recall,
		"f1":        report.F1,
		"auc":       report.AUC,
	} {
		if schema.Defined(v) {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 1.0, name)
		}
	}
}

// TestEvaluateAccuracyInterval checks the 95% interval brackets accuracy
// and stays inside [0,1].
func TestEvaluateAccuracyInterval(t *testing.T) {
	rows := [][]float64{{0}, {0}, {1}, {1}, {1}, {0}, {1}, {0}}
	labels := []int{0, 1, 0, 1, 1, 0, 1, 0}
	test := makeDataset([]string{"x"}, nil, rows, labels)

	report := Evaluate(stubModel(), test)

	require.True(t, schema.Defined(report.Accuracy))
	assert.LessOrEqual(t, report.AccuracyLower, report.Accuracy)
	assert.GreaterOrEqual(t, report.AccuracyUpper, report.Accuracy)
	assert.GreaterOrEqual(t, report.AccuracyLower, 0.0)
	assert.LessOrEqual(t, report.AccuracyUpper, 1.0)

	p := report.Accuracy
	half := 1.96 * math.Sqrt(p*(1-p)/float64(test.Len()))
	assert.InDelta(t, math.Max(0, p-half), report.AccuracyLower, 1e-9)
	assert.InDelta(t, math.Min(1, p+half), report.AccuracyUpper, 1e-9)
}

// TestEvaluateSingleClassFold reports NaN with a note instead of failing.
func TestEvaluateSingleClassFold(t *testing.T) {
	rows := [][]float64{{0}, {0}, {0}}
	labels := []int{0, 0, 0}
	test := makeDataset([]string{"x"}, nil, rows, labels)

	report := Evaluate(stubModel(), test)

	assert.True(t, math.IsNaN(report.Recall))
	assert.True(t, math.IsNaN(report.AUC))
	assert.Nil(t, report.ROC)
	assert.NotEmpty(t, report.Notes)

	// Accuracy is still well-defined on a one-class fold.
	assert.Equal(t, 1.0, report.Accuracy)
}

// TestEvaluateNoPositivePredictions leaves precision undefined.
func TestEvaluateNoPositivePredictions(t *testing.T) {
	rows := [][]float64{{0}, {0}, {0}, {0}}
	labels := []int{0, 0, 1, 1}
	test := makeDataset([]string{"x"}, nil, rows, labels)

	report := Evaluate(stubModel(), test)

	assert.Zero(t, report.Confusion.TP)
	assert.Zero(t, report.Confusion.FP)
	assert.True(t, math.IsNaN(report.Precision))
	assert.Equal(t, 0.0, report.Recall)
	assert.True(t, math.IsNaN(report.F1))
	assert.NotEmpty(t, report.Notes)
}

// TestEvaluateROCShape checks curve endpoints and monotone FPR.
func TestEvaluateROCShape(t *testing.T) {
	model, err := Train(benchmarkDataset(), schema.Hyperparams{CP: 0.001, MinSplit: 2, MaxDepth: 8})
	require.NoError(t, err)

	report := Evaluate(model, benchmarkDataset())
	require.NotEmpty(t, report.ROC)

	first := report.ROC[0]
	last := report.ROC[len(report.ROC)-1]
	assert.Equal(t, schema.ROCPoint{FPR: 0, TPR: 0}, first)
	assert.Equal(t, schema.ROCPoint{FPR: 1, TPR: 1}, last)

	for i := 1; i < len(report.ROC); i++ {
		assert.GreaterOrEqual(t, report.ROC[i].FPR, report.ROC[i-1].FPR)
		assert.GreaterOrEqual(t, report.ROC[i].TPR, report.ROC[i-1].TPR)
	}

	require.True(t, schema.Defined(report.AUC))
	assert.GreaterOrEqual(t, report.AUC, 0.0)
	assert.LessOrEqual(t, report.AUC, 1.0)
}
