package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePipelineOutput() *schema.PipelineOutput {
	model := &schema.DecisionTreeModel{
		Root: &schema.TreeNode{
			Size:   100,
			Counts: [2]int{60, 40},
		},
		Columns: []string{"support_tickets"},
	}
	output := &schema.PipelineOutput{
		Ranking: schema.FeatureRanking{
			{Name: "support_tickets", Gain: 0.82},
			{Name: "weekly_logins", Gain: 0.31},
		},
		SelectedColumns: []string{"support_tickets", "weekly_logins"},
		TrainSize:       70,
		TestSize:        30,
		MinoritySize:    20,
		SyntheticSize:   30,
		Grid: []schema.GridResult{
			{
				Params: schema.Hyperparams{CP: 0.01, MinSplit: 20, MaxDepth: 8},
				Model:  model,
				Report: &schema.EvaluationReport{
					Confusion:     schema.ConfusionMatrix{TP: 8, FP: 2, TN: 18, FN: 2},
					Accuracy:      0.8667,
					AccuracyLower: 0.745,
					AccuracyUpper: 0.988,
					Precision:     0.8,
					Recall:        0.8,
					F1:            0.8,
					AUC:           0.85,
					TestSize:      30,
				},
				Duration: 12 * time.Millisecond,
			},
			{
				Params: schema.Hyperparams{CP: 0.001, MinSplit: 10, MaxDepth: 4, Prune: true},
				Model:  model,
				Report: &schema.EvaluationReport{
					Confusion:     schema.ConfusionMatrix{TN: 30},
					Accuracy:      1.0,
					AccuracyLower: 1.0,
					AccuracyUpper: 1.0,
					Precision:     math.NaN(),
					Recall:        math.NaN(),
					F1:            math.NaN(),
					AUC:           math.NaN(),
					TestSize:      30,
					Notes:         []string{"no positive records in test fold"},
				},
				Duration: 5 * time.Millisecond,
			},
		},
	}
	output.Best = &output.Grid[0]
	return output
}

func TestWritePipelineTable(t *testing.T) {
	output := samplePipelineOutput()
	cfg := &contract.Config{
		Precision:   3,
		Workers:     4,
		Policy:      "recall-first",
		Width:       120,
		RunsBackend: schema.NoneBackend,
	}
	fmtFloat, fmtMetric := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writePipelineTable(output, cfg, fmtFloat, fmtMetric, 100*time.Millisecond, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "cp=0.01 minsplit=20 maxdepth=8")
	assert.Contains(t, out, "cp=0.001 minsplit=10 maxdepth=4 pruned")
	assert.Contains(t, out, "* cp=0.01") // best model marker
	assert.Contains(t, out, "n/a")       // undefined metrics of the degenerate point
	assert.Contains(t, out, "Best model (recall-first policy)")
	assert.Contains(t, out, "70 train / 30 test")
	assert.Contains(t, out, "4 workers")
}

func TestWritePipelineTableWithError(t *testing.T) {
	output := samplePipelineOutput()
	output.Grid[1].Report = nil
	output.Grid[1].Model = nil
	output.Grid[1].Err = assert.AnError

	cfg := &contract.Config{Precision: 2, Width: 120}
	fmtFloat, fmtMetric := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writePipelineTable(output, cfg, fmtFloat, fmtMetric, time.Millisecond, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "error")
}

func TestWriteCSVResultsForPipeline(t *testing.T) {
	output := samplePipelineOutput()
	fmtFloat, fmtMetric := createFormatters(3)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeCSVResultsForPipeline(w, output, fmtFloat, fmtMetric)
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows

	assert.Contains(t, lines[0], "params")
	assert.Contains(t, lines[0], "recall")
	assert.Contains(t, lines[1], "cp=0.01 minsplit=20 maxdepth=8")
	assert.Contains(t, lines[1], "true") // selected
	assert.Contains(t, lines[2], "n/a")
	assert.Contains(t, lines[2], "false")
}

func TestWriteJSONResultsForPipeline(t *testing.T) {
	output := samplePipelineOutput()

	var buf bytes.Buffer
	err := writeJSONResultsForPipeline(&buf, output)
	require.NoError(t, err)

	// Parse the JSON to verify structure; NaN metrics must become null
	var result map[string]any
	err = json.Unmarshal(buf.Bytes(), &result)
	require.NoError(t, err)

	grid, ok := result["grid"].([]any)
	require.True(t, ok)
	require.Len(t, grid, 2)

	first := grid[0].(map[string]any)
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, true, first["selected"])
	firstMetrics := first["metrics"].(map[string]any)
	assert.Equal(t, 0.8, firstMetrics["recall"])

	second := grid[1].(map[string]any)
	assert.Equal(t, false, second["selected"])
	secondMetrics := second["metrics"].(map[string]any)
	assert.Nil(t, secondMetrics["recall"])
	assert.Nil(t, secondMetrics["auc"])

	ranking, ok := result["ranking"].([]any)
	require.True(t, ok)
	assert.Len(t, ranking, 2)
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, fmtMetric := createFormatters(2)
	assert.Equal(t, "0.87", fmtFloat(0.8667))
	assert.Equal(t, "0.87", fmtMetric(0.8667))
	assert.Equal(t, "n/a", fmtMetric(math.NaN()))
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "Strong", metricLabel(0.95, false))
	assert.Equal(t, "Weak", metricLabel(0.2, false))
	assert.Equal(t, "-", metricLabel(math.NaN(), false))
	assert.Equal(t, "-", metricLabel(math.NaN(), true))
}

func TestGetMaxTableTextWidth(t *testing.T) {
	// Narrow terminal clamps to the minimum
	cfg := &contract.Config{Width: 40}
	assert.Equal(t, 15, getMaxTableTextWidth(cfg))

	// Wide terminal clamps to the maximum
	cfg = &contract.Config{Width: 300}
	assert.Equal(t, 60, getMaxTableTextWidth(cfg))

	// In-between widths leave room for the metric columns
	cfg = &contract.Config{Width: 100}
	assert.Equal(t, 40, getMaxTableTextWidth(cfg))
}
