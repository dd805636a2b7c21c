// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the ChurnLab MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, loader contract.DataLoader) *server.MCPServer {
	s := server.NewMCPServer(
		"ChurnLab Pipeline Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		loader:  loader,
	}

	// --- 1. Tool: run_churn_pipeline ---
	s.AddTool(mcp.NewTool("run_churn_pipeline",
		mcp.WithDescription("Run the full churn prediction pipeline on a customer CSV and return the grid comparison with the selected model."),
		mcp.WithString("input_path", mcp.Description("Path to the customer CSV file."), mcp.Required()),
		mcp.WithString("positive_label", mcp.Description("Status value treated as churn (defaults to 'cancelled').")),
		mcp.WithString("policy", mcp.Description("Model selection policy. Defaults to 'recall-first'."), mcp.Enum("recall-first")),
		mcp.WithString("split_fraction", mcp.Description("Train fraction for the stratified split (e.g. '0.7').")),
		mcp.WithString("min_gain", mcp.Description("Information gain threshold for feature selection (e.g. '0.01').")),
		mcp.WithNumber("neighbors", mcp.Description("Number of nearest neighbors used for oversampling.")),
		mcp.WithNumber("seed", mcp.Description("Random seed for balancing and splitting.")),
	), h.handleRunPipeline)

	// --- 2. Tool: rank_churn_features ---
	s.AddTool(mcp.NewTool("rank_churn_features",
		mcp.WithDescription("Rank the engineered features of a customer CSV by information gain against the churn label."),
		mcp.WithString("input_path", mcp.Description("Path to the customer CSV file."), mcp.Required()),
		mcp.WithString("positive_label", mcp.Description("Status value treated as churn (defaults to 'cancelled').")),
		mcp.WithNumber("neighbors", mcp.Description("Number of nearest neighbors used for oversampling.")),
		mcp.WithNumber("seed", mcp.Description("Random seed for balancing.")),
	), h.handleRankFeatures)

	// --- 3. Tool: get_churn_runs ---
	s.AddTool(mcp.NewTool("get_churn_runs",
		mcp.WithDescription("List the tracked pipeline runs from the configured run store."),
	), h.handleGetRuns)

	return s
}

// StartMCPServer starts the ChurnLab MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, loader contract.DataLoader) error {
	s := NewMCPServer(baseCfg, loader)
	return server.ServeStdio(s)
}
