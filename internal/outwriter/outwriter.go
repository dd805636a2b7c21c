// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WritePipeline prints a full pipeline run using the configured output format.
func (ow *OutWriter) WritePipeline(output *schema.PipelineOutput, cfg *contract.Config, duration time.Duration) error {
	return WritePipelineResults(output, cfg, duration)
}

// WriteRanking prints a feature ranking using the configured output format.
func (ow *OutWriter) WriteRanking(ranking schema.FeatureRanking, cfg *contract.Config, duration time.Duration) error {
	return WriteRankingResults(ranking, cfg, duration)
}

// WriteRuns prints the tracked run history using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return WriteRunResults(runs, cfg)
}

// WriteStatus prints the run store status using the configured output format.
func (ow *OutWriter) WriteStatus(status schema.RunStatus, cfg *contract.Config) error {
	return WriteStatusResults(status, cfg)
}
