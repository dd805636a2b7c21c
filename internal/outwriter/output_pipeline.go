package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePipelineResults outputs a full pipeline run, dispatching based on the output format configured.
func WritePipelineResults(output *schema.PipelineOutput, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, fmtMetric := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForPipeline(w, output)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForPipeline(csvWriter, output, fmtFloat, fmtMetric)
		}, "Wrote CSV")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePipelineTable(output, cfg, fmtFloat, fmtMetric, duration, w)
		}, "Wrote table")
	}
}

// writePipelineTable generates and writes the human-readable grid comparison.
func writePipelineTable(output *schema.PipelineOutput, cfg *contract.Config, fmtFloat func(float64) string, fmtMetric func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Params", "Accuracy", "95% CI", "Precision", "Recall", "F1", "AUC", "Nodes", "Label"}
	table.Header(headers)

	// 2. Configure alignment for the metric columns
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	var data [][]string
	for i, r := range output.Grid {
		params := r.Params.String()
		if output.Best != nil && r.Params == output.Best.Params {
			params = "* " + params
		}
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateText(params, getMaxTableTextWidth(cfg)),
		}
		if r.Err != nil {
			row = append(row, "error", "-", "-", "-", "-", "-", "-", "-")
		} else {
			rep := r.Report
			ci := fmt.Sprintf("[%s, %s]", fmtFloat(rep.AccuracyLower), fmtFloat(rep.AccuracyUpper))
			row = append(row,
				fmtMetric(rep.Accuracy),
				ci,
				fmtMetric(rep.Precision),
				fmtMetric(rep.Recall),
				fmtMetric(rep.F1),
				fmtMetric(rep.AUC),
				strconv.Itoa(r.Model.NodeCount()),
				metricLabel(rep.Recall, cfg.UseColors),
			)
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Summary lines below the table
	if output.Best != nil {
		if _, err := fmt.Fprintf(writer, "Best model (%s policy): %s with recall %s\n",
			cfg.Policy, output.Best.Params, fmtMetric(output.Best.Report.Recall)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Dataset: %d train / %d test records (minority %d, synthetic %d)\n",
		output.TrainSize, output.TestSize, output.MinoritySize, output.SyntheticSize); err != nil {
		return err
	}
	for _, warning := range output.Warnings {
		if _, err := fmt.Fprintf(writer, "Warning: %s\n", warning); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Pipeline completed in %v with %d workers. Run backend: %s\n",
		duration, cfg.Workers, cfg.RunsBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForPipeline writes the grid comparison in CSV format.
func writeCSVResultsForPipeline(w *csv.Writer, output *schema.PipelineOutput, fmtFloat func(float64) string, fmtMetric func(float64) string) error {
	// CSV header
	header := []string{
		"rank",
		"params",
		"accuracy",
		"accuracy_lower",
		"accuracy_upper",
		"precision",
		"recall",
		"f1",
		"auc",
		"nodes",
		"label",
		"selected",
		"error",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range output.Grid {
		selected := output.Best != nil && r.Params == output.Best.Params
		rec := []string{
			strconv.Itoa(i + 1),
			r.Params.String(),
		}
		if r.Err != nil {
			rec = append(rec, "", "", "", "", "", "", "", "", "", strconv.FormatBool(selected), r.Err.Error())
		} else {
			rep := r.Report
			rec = append(rec,
				fmtMetric(rep.Accuracy),
				fmtFloat(rep.AccuracyLower),
				fmtFloat(rep.AccuracyUpper),
				fmtMetric(rep.Precision),
				fmtMetric(rep.Recall),
				fmtMetric(rep.F1),
				fmtMetric(rep.AUC),
				strconv.Itoa(r.Model.NodeCount()),
				labelOrDash(rep.Recall),
				strconv.FormatBool(selected),
				"",
			)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// labelOrDash returns the plain quality label, or a dash for undefined metrics.
func labelOrDash(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return contract.GetPlainLabel(v)
}

// GridResultView is the JSON-safe rendition of one grid point. Undefined
// metrics become null rather than NaN, which JSON cannot carry.
type GridResultView struct {
	Rank       int                       `json:"rank"`
	Params     string                    `json:"params"`
	Metrics    map[string]*float64       `json:"metrics,omitempty"`
	Confusion  *schema.ConfusionMatrix   `json:"confusion,omitempty"`
	ROC        []schema.ROCPoint         `json:"roc,omitempty"`
	Notes      []string                  `json:"notes,omitempty"`
	Model      *schema.DecisionTreeModel `json:"model,omitempty"`
	Selected   bool                      `json:"selected"`
	Error      string                    `json:"error,omitempty"`
	DurationMs int64                     `json:"duration_ms"`
}

// PipelineView is the JSON-safe rendition of a full pipeline run.
type PipelineView struct {
	Ranking         schema.FeatureRanking `json:"ranking"`
	SelectedColumns []string              `json:"selected_columns"`
	TrainSize       int                   `json:"train_size"`
	TestSize        int                   `json:"test_size"`
	MinoritySize    int                   `json:"minority_size"`
	SyntheticSize   int                   `json:"synthetic_size"`
	Grid            []GridResultView      `json:"grid"`
	Warnings        []string              `json:"warnings,omitempty"`
}

// NewPipelineView builds the JSON-safe view of a pipeline run.
func NewPipelineView(output *schema.PipelineOutput) PipelineView {
	view := PipelineView{
		Ranking:         output.Ranking,
		SelectedColumns: output.SelectedColumns,
		TrainSize:       output.TrainSize,
		TestSize:        output.TestSize,
		MinoritySize:    output.MinoritySize,
		SyntheticSize:   output.SyntheticSize,
		Warnings:        output.Warnings,
	}
	for i, r := range output.Grid {
		gv := GridResultView{
			Rank:       i + 1,
			Params:     r.Params.String(),
			Selected:   output.Best != nil && r.Params == output.Best.Params,
			DurationMs: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			gv.Error = r.Err.Error()
		} else {
			rep := r.Report
			gv.Metrics = map[string]*float64{
				"accuracy":       metricPtr(rep.Accuracy),
				"accuracy_lower": metricPtr(rep.AccuracyLower),
				"accuracy_upper": metricPtr(rep.AccuracyUpper),
				"precision":      metricPtr(rep.Precision),
				"recall":         metricPtr(rep.Recall),
				"f1":             metricPtr(rep.F1),
				"auc":            metricPtr(rep.AUC),
			}
			gv.Confusion = &rep.Confusion
			gv.ROC = rep.ROC
			gv.Notes = rep.Notes
			gv.Model = r.Model
		}
		view.Grid = append(view.Grid, gv)
	}
	return view
}

// writeJSONResultsForPipeline writes the full run in JSON format.
func writeJSONResultsForPipeline(w io.Writer, output *schema.PipelineOutput) error {
	return writeJSON(w, NewPipelineView(output))
}

// metricPtr maps an undefined (NaN) metric to nil for JSON output.
func metricPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
