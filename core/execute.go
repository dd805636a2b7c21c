package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/outwriter"
	"github.com/huangsam/churnlab/schema"
)

// logPipelineHeader prints the run banner before the pipeline starts.
func logPipelineHeader(cfg *contract.Config) {
	gridSize := len(cfg.CPGrid) * len(cfg.MinSplitGrid) * len(cfg.MaxDepthGrid)
	if cfg.IncludePruned {
		gridSize *= 2
	}

	searchPrefix, gridPrefix := "", ""
	if cfg.UseEmojis {
		searchPrefix, gridPrefix = "🔎 ", "🧪 "
	}

	// Line 1: The dataset summary (file and selection policy)
	fmt.Printf("%sDataset: %s (Policy: %s)\n", searchPrefix, filepath.Base(cfg.InputPath), cfg.Policy)

	// Line 2: The grid being searched
	fmt.Printf("%sGrid: %d points across %d workers\n", gridPrefix, gridSize, cfg.Workers)
}

// ExecutePipeline runs the full churn pipeline and prints the grid comparison.
// It serves as the main entry point for the 'pipeline' command.
func ExecutePipeline(ctx context.Context, cfg *contract.Config, loader contract.DataLoader, store contract.RunStore) error {
	start := time.Now()
	if cfg.Output == schema.TextOut {
		logPipelineHeader(cfg)
	}
	output, err := RunPipeline(ctx, cfg, loader, store)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WritePipeline(output, cfg, duration)
}

// ExecuteRanking computes the information-gain ranking and prints it.
// It serves as the main entry point for the 'features' command.
func ExecuteRanking(ctx context.Context, cfg *contract.Config, loader contract.DataLoader) error {
	start := time.Now()
	ranking, err := RunRanking(ctx, cfg, loader)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteRanking(ranking, cfg, duration)
}

// ExecuteRuns prints the tracked run history.
func ExecuteRuns(cfg *contract.Config, store contract.RunStore) error {
	runs, err := store.GetAllRuns()
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRuns(runs, cfg)
}

// ExecuteRunsStatus prints the run store status.
func ExecuteRunsStatus(cfg *contract.Config, store contract.RunStore) error {
	status, err := store.GetStatus()
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteStatus(status, cfg)
}
