package schema

import (
	"math"
	"time"
)

// ConfusionMatrix holds prediction counts against the known labels.
type ConfusionMatrix struct {
	TP int `json:"tp"` // predicted positive, actually positive
	FP int `json:"fp"` // predicted positive, actually negative
	TN int `json:"tn"` // predicted negative, actually negative
	FN int `json:"fn"` // predicted negative, actually positive
}

// Total returns the number of evaluated records.
func (c ConfusionMatrix) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// ROCPoint is one point of the ROC curve.
type ROCPoint struct {
	FPR float64 `json:"fpr"`
	TPR float64 `json:"tpr"`
}

// EvaluationReport holds every metric computed for one (model, test set)
// pair. Metrics that are undefined for a degenerate fold are NaN, with the
// reason recorded in Notes; evaluation never fails on such folds.
type EvaluationReport struct {
	Confusion ConfusionMatrix `json:"confusion"`

	Accuracy      float64 `json:"accuracy"`
	AccuracyLower float64 `json:"accuracy_lower"` // 95% binomial CI
	AccuracyUpper float64 `json:"accuracy_upper"`

	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	AUC       float64 `json:"auc"`

	ROC []ROCPoint `json:"roc"`

	TestSize int      `json:"test_size"`
	Notes    []string `json:"notes,omitempty"` // reasons for undefined metrics
}

// Defined reports whether a metric value is usable (not NaN).
func Defined(v float64) bool {
	return !math.IsNaN(v)
}

// GridResult is the outcome of one grid point: the trained model and its
// evaluation, or the error that invalidated this point. A failed point
// never aborts the rest of the grid.
type GridResult struct {
	Params   Hyperparams        `json:"params"`
	Model    *DecisionTreeModel `json:"model,omitempty"`
	Report   *EvaluationReport  `json:"report,omitempty"`
	Err      error              `json:"-"`
	Duration time.Duration      `json:"duration"`
}

// PipelineOutput bundles everything a full pipeline run produces: the
// feature ranking, the grid comparison, and the selected model. It is
// plain structured data, independent of any rendering format.
type PipelineOutput struct {
	Ranking         FeatureRanking `json:"ranking"`
	SelectedColumns []string       `json:"selected_columns"`
	TrainSize       int            `json:"train_size"`
	TestSize        int            `json:"test_size"`
	MinoritySize    int            `json:"minority_size"`
	SyntheticSize   int            `json:"synthetic_size"`
	Grid            []GridResult   `json:"grid"`
	Best            *GridResult    `json:"best"`
	Warnings        []string       `json:"warnings,omitempty"`
}

// RunRecord is one tracked pipeline run, as stored by the run store.
type RunRecord struct {
	RunID         int64      `json:"run_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	RunDurationMs *int64     `json:"run_duration_ms,omitempty"`
	GridPoints    int        `json:"grid_points"`
	ConfigParams  *string    `json:"config_params,omitempty"`
}

// GridPointRecord is the stored metrics row for one grid point of a run.
type GridPointRecord struct {
	RunID      int64     `json:"run_id"`
	Params     string    `json:"params"`
	RecordedAt time.Time `json:"recorded_at"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	F1         float64   `json:"f1"`
	AUC        float64   `json:"auc"`
	Nodes      int       `json:"nodes"`
	Selected   bool      `json:"selected"`
}

// RunStatus summarizes the state of the run store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int64            `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
