package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRankingResults outputs the feature ranking, dispatching based on the output format configured.
func WriteRankingResults(ranking schema.FeatureRanking, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForRanking(w, ranking)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForRanking(csvWriter, ranking, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTable(ranking, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
}

// writeRankingTable generates and writes the human-readable ranking table.
func writeRankingTable(ranking schema.FeatureRanking, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Feature", "Gain", "Label"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, fs := range ranking {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			fs.Name,
			fmtFloat(fs.Gain),
			metricLabel(fs.Gain, cfg.UseColors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Ranked %d features in %v\n", len(ranking), duration); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForRanking writes the ranking in CSV format.
func writeCSVResultsForRanking(w *csv.Writer, ranking schema.FeatureRanking, fmtFloat func(float64) string) error {
	header := []string{"rank", "feature", "gain", "label"}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, fs := range ranking {
		rec := []string{
			strconv.Itoa(i + 1),
			fs.Name,
			fmtFloat(fs.Gain),
			contract.GetPlainLabel(fs.Gain),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForRanking writes the ranking in JSON format.
func writeJSONResultsForRanking(w io.Writer, ranking schema.FeatureRanking) error {
	type JSONFeatureScore struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.FeatureScore
	}

	output := make([]JSONFeatureScore, len(ranking))
	for i, fs := range ranking {
		output[i] = JSONFeatureScore{
			Rank:         i + 1,
			Label:        contract.GetPlainLabel(fs.Gain),
			FeatureScore: fs,
		}
	}

	return writeJSON(w, output)
}
