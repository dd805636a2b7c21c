package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"
)

// RunPipeline executes the full churn pipeline: feature engineering,
// encoding, oversampling, feature ranking, stratified splitting, grid
// search, and model selection. Run tracking is best-effort when a store is
// configured; tracking failures are logged and never abort the pipeline.
func RunPipeline(ctx context.Context, cfg *contract.Config, loader contract.DataLoader, store contract.RunStore) (*schema.PipelineOutput, error) {
	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	grid := ExpandGrid(cfg.CPGrid, cfg.MinSplitGrid, cfg.MaxDepthGrid, cfg.IncludePruned)
	if store != nil {
		startTime := time.Now()
		configParams := map[string]any{
			"input_path":     cfg.InputPath,
			"positive_label": cfg.PositiveLabel,
			"split_fraction": cfg.SplitFraction,
			"neighbors":      cfg.Neighbors,
			"seed":           cfg.Seed,
			"grid_points":    len(grid),
			"workers":        cfg.Workers,
			"policy":         cfg.Policy,
		}
		var err error
		runID, err = store.BeginRun(startTime, configParams)
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Load and Engineer ---
	records, err := loader.Load(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}

	engineered, tenureWarnings := EngineerFeatures(records)
	output := &schema.PipelineOutput{}
	for _, w := range tenureWarnings {
		output.Warnings = append(output.Warnings, w.Error())
	}

	// --- 2. Encode ---
	encoder, err := FitEncoder(engineered, cfg.PositiveLabel)
	if err != nil {
		return nil, err
	}
	encoded, err := encoder.Apply(engineered)
	if err != nil {
		return nil, err
	}

	// --- 3. Balance ---
	balanced, err := Oversample(encoded, cfg.Neighbors, cfg.Seed)
	if err != nil {
		return nil, err
	}
	neg, pos := encoded.LabelCounts()
	output.MinoritySize = min(neg, pos)
	output.SyntheticSize = balanced.Len() - encoded.Len()

	// --- 4. Rank and Select Features ---
	output.Ranking = RankFeatures(balanced)
	output.SelectedColumns = SelectFeatures(output.Ranking, cfg.MinGain)
	if len(output.SelectedColumns) == 0 {
		return nil, fmt.Errorf("feature selection discarded every column at min gain %g", cfg.MinGain)
	}
	projected := ProjectColumns(balanced, output.SelectedColumns)

	// --- 5. Split ---
	part, err := Split(projected, cfg.SplitFraction, cfg.Seed)
	if err != nil {
		return nil, err
	}
	output.TrainSize = part.Train.Len()
	output.TestSize = part.Test.Len()

	// --- 6. Grid Search ---
	output.Grid = RunGrid(ctx, part, grid, cfg.Workers)

	// --- 7. Model Selection ---
	// Sort before selecting so the rank column in every output format
	// follows the policy's preference with the winner first.
	policy := PolicyByName(cfg.Policy)
	SortByPolicy(output.Grid, policy)
	best, err := SelectBest(output.Grid, policy)
	if err != nil {
		return nil, err
	}
	output.Best = best

	// --- 8. End Run Tracking ---
	if store != nil && runID > 0 {
		recordGridPoints(store, runID, output)
		if err := store.EndRun(runID, time.Now(), len(output.Grid)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}

	return output, nil
}

// RunRanking executes only the front half of the pipeline and returns the
// information-gain ranking computed on the balanced dataset. This backs the
// features command and the MCP rank tool.
func RunRanking(ctx context.Context, cfg *contract.Config, loader contract.DataLoader) (schema.FeatureRanking, error) {
	records, err := loader.Load(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}

	engineered, _ := EngineerFeatures(records)
	encoder, err := FitEncoder(engineered, cfg.PositiveLabel)
	if err != nil {
		return nil, err
	}
	encoded, err := encoder.Apply(engineered)
	if err != nil {
		return nil, err
	}
	balanced, err := Oversample(encoded, cfg.Neighbors, cfg.Seed)
	if err != nil {
		return nil, err
	}

	return RankFeatures(balanced), nil
}

// PolicyByName resolves a policy flag value. Unknown names fall back to
// the recall-first default.
func PolicyByName(name string) SelectionPolicy {
	switch name {
	case "recall-first", "":
		return RecallFirstPolicy{}
	default:
		contract.LogWarn(fmt.Sprintf("Unknown selection policy '%s', using recall-first", name), nil)
		return RecallFirstPolicy{}
	}
}

// ProjectColumns returns a new dataset restricted to the named feature
// columns, preserving their relative order in keep.
func ProjectColumns(d *schema.EncodedDataset, keep []string) *schema.EncodedDataset {
	indices := make([]int, 0, len(keep))
	categorical := make(map[string]bool, len(keep))
	columns := make([]string, 0, len(keep))
	for _, name := range keep {
		if idx := d.ColumnIndex(name); idx >= 0 {
			indices = append(indices, idx)
			columns = append(columns, name)
			categorical[name] = d.Categorical[name]
		}
	}

	records := make([]schema.EncodedRecord, len(d.Records))
	for i, r := range d.Records {
		features := make([]float64, len(indices))
		for j, idx := range indices {
			features[j] = r.Features[idx]
		}
		records[i] = schema.EncodedRecord{
			CustomerID: r.CustomerID,
			Features:   features,
			Label:      r.Label,
			Synthetic:  r.Synthetic,
		}
	}

	return &schema.EncodedDataset{
		Columns:     columns,
		Categorical: categorical,
		Records:     records,
	}
}

// recordGridPoints persists per-point metrics to the run store.
func recordGridPoints(store contract.RunStore, runID int64, output *schema.PipelineOutput) {
	now := time.Now()
	for i := range output.Grid {
		r := &output.Grid[i]
		if r.Err != nil || r.Report == nil {
			continue
		}
		point := schema.GridPointRecord{
			RunID:      runID,
			Params:     r.Params.String(),
			RecordedAt: now,
			Accuracy:   r.Report.Accuracy,
			Precision:  r.Report.Precision,
			Recall:     r.Report.Recall,
			F1:         r.Report.F1,
			AUC:        r.Report.AUC,
			Nodes:      r.Model.NodeCount(),
			Selected:   r == output.Best,
		}
		if err := store.RecordGridPoint(runID, point); err != nil {
			contract.LogWarn(fmt.Sprintf("Run tracking failed for grid point %s", point.Params), err)
		}
	}
}
