package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/huangsam/churnlab/internal/contract"
	"github.com/huangsam/churnlab/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunResults outputs the tracked run history, dispatching based on the output format configured.
func WriteRunResults(runs []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, runs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForRuns(csvWriter, runs)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsTable(runs, cfg, w)
		}, "Wrote table")
	}
}

// writeRunsTable generates and writes the human-readable run history.
func writeRunsTable(runs []schema.RunRecord, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run", "Started", "Duration (ms)", "Grid Points", "Config"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, run := range runs {
		duration := "-"
		if run.RunDurationMs != nil {
			duration = strconv.FormatInt(*run.RunDurationMs, 10)
		}
		config := ""
		if run.ConfigParams != nil {
			config = contract.TruncateText(*run.ConfigParams, getMaxTableTextWidth(cfg))
		}
		data = append(data, []string{
			strconv.FormatInt(run.RunID, 10),
			run.StartTime.Format(contract.DateTimeFormat),
			duration,
			strconv.Itoa(run.GridPoints),
			config,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d tracked runs\n", len(runs)); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForRuns writes the run history in CSV format.
func writeCSVResultsForRuns(w *csv.Writer, runs []schema.RunRecord) error {
	header := []string{"run_id", "start_time", "end_time", "run_duration_ms", "grid_points", "config_params"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, run := range runs {
		endTime := ""
		if run.EndTime != nil {
			endTime = run.EndTime.Format(contract.DateTimeFormat)
		}
		duration := ""
		if run.RunDurationMs != nil {
			duration = strconv.FormatInt(*run.RunDurationMs, 10)
		}
		config := ""
		if run.ConfigParams != nil {
			config = *run.ConfigParams
		}
		rec := []string{
			strconv.FormatInt(run.RunID, 10),
			run.StartTime.Format(contract.DateTimeFormat),
			endTime,
			duration,
			strconv.Itoa(run.GridPoints),
			config,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteStatusResults outputs the run store status, dispatching based on the output format configured.
func WriteStatusResults(status schema.RunStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusText(status, w)
		}, "Wrote status")
	}
}

// writeStatusText writes the run store status as plain text.
func writeStatusText(status schema.RunStatus, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "Backend: %s\n", status.Backend); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Connected: %t\n", status.Connected); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Total runs: %d\n", status.TotalRuns); err != nil {
		return err
	}
	if status.TotalRuns > 0 {
		if _, err := fmt.Fprintf(writer, "Last run: %d at %s\n", status.LastRunID, status.LastRunTime.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(writer, "Oldest run: %s\n", status.OldestRunTime.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
	}
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		if _, err := fmt.Fprintf(writer, "Table %s: %d rows\n", table, status.TableSizes[table]); err != nil {
			return err
		}
	}
	return nil
}
