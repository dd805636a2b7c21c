package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/huangsam/churnlab/core"
	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/internal/outwriter"
	"github.com/huangsam/churnlab/internal/runstore"
	"github.com/huangsam/churnlab/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	loader  contract.DataLoader
}

// newRunStore is swapped in tests to avoid touching a real database.
var newRunStore = func(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	return runstore.NewRunStore(backend, connStr)
}

// applyCommonOverrides transfers the shared tool arguments onto a cloned config.
func applyCommonOverrides(cfg *contract.Config, request mcp.CallToolRequest) error {
	cfg.InputPath = request.GetString("input_path", "")
	if cfg.InputPath == "" {
		return fmt.Errorf("input_path is required")
	}
	if l := request.GetString("positive_label", ""); l != "" {
		cfg.PositiveLabel = l
	}
	if n := request.GetInt("neighbors", 0); n > 0 {
		cfg.Neighbors = n
	}
	if s := request.GetInt("seed", 0); s > 0 {
		cfg.Seed = int64(s)
	}
	return nil
}

func (h *toolHandler) handleRunPipeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyCommonOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid pipeline parameters: %v", err)), nil
	}
	if p := request.GetString("policy", ""); p != "" {
		cfg.Policy = p
	}
	if fracStr := request.GetString("split_fraction", ""); fracStr != "" {
		frac, err := strconv.ParseFloat(fracStr, 64)
		if err != nil || frac <= 0 || frac >= 1 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid split_fraction '%s'", fracStr)), nil
		}
		cfg.SplitFraction = frac
	}
	if gainStr := request.GetString("min_gain", ""); gainStr != "" {
		gain, err := strconv.ParseFloat(gainStr, 64)
		if err != nil || gain < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid min_gain '%s'", gainStr)), nil
		}
		cfg.MinGain = gain
	}

	output, err := core.RunPipeline(ctx, cfg, h.loader, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pipeline failed: %v", err)), nil
	}

	view := outwriter.NewPipelineView(output)
	jsonData, _ := json.MarshalIndent(view, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRankFeatures(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applyCommonOverrides(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid ranking parameters: %v", err)), nil
	}

	ranking, err := core.RunRanking(ctx, cfg, h.loader)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}

	type rankedFeature struct {
		Rank  int     `json:"rank"`
		Name  string  `json:"name"`
		Gain  float64 `json:"gain"`
		Label string  `json:"label"`
	}
	ranked := make([]rankedFeature, len(ranking))
	for i, score := range ranking {
		ranked[i] = rankedFeature{
			Rank:  i + 1,
			Name:  score.Name,
			Gain:  score.Gain,
			Label: contract.GetPlainLabel(score.Gain),
		}
	}
	jsonData, _ := json.MarshalIndent(ranked, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetRuns(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg
	store, err := newRunStore(cfg.RunsBackend, cfg.RunsDBConnect)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run store unavailable: %v", err)), nil
	}
	defer store.Close()

	runs, err := store.GetAllRuns()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run listing failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(runs, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
