// Package main provides a performance benchmarking tool for the churnlab CLI.
// It measures pipeline and ranking execution times across synthetic datasets of
// increasing size, running each test multiple times, treating the first tracked
// run as cold and averaging the rest as warm, generating CSV output for
// performance analysis and documentation.
//
// Prerequisites:
// - churnlab binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated datasets and the tracking database
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (untracked average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset       string
	Command       string
	UntrackedTime string
	ColdTime      string
	WarmTime      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir       string
	Timeout       time.Duration
	Workers       int
	UntrackedRuns int
	TrackedRuns   int
	DatasetRows   []int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:       workDir,
		Timeout:       5 * time.Minute,
		Workers:       8,
		UntrackedRuns: 3,
		TrackedRuns:   4,
		DatasetRows:   []int{1000, 10000, 50000},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	datasets, err := generateDatasets(config)
	if err != nil {
		fmt.Printf("Dataset generation failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, datasets)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the churnlab binary and work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("churnlab"); err != nil {
		return fmt.Errorf("churnlab binary not found in PATH")
	}

	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}

	return nil
}

// generateDatasets writes one synthetic customer table per configured size and
// returns their paths keyed by a human-readable label. Cancellations track
// high support ticket counts and low engagement, so every grid point has
// signal to find.
func generateDatasets(config BenchmarkConfig) (map[string]string, error) {
	tiers := []string{"basic", "standard", "premium"}
	datasets := make(map[string]string, len(config.DatasetRows))

	for _, rows := range config.DatasetRows {
		label := fmt.Sprintf("%dk", rows/1000)

		var b strings.Builder
		b.WriteString("customer_id,join_date,last_login_date,monthly_fee,weekly_logins,support_tickets,plan_tier,device_type,payment_method,payment_frequency,referral_source,region,country,gender,age_group,status\n")
		for i := range rows {
			cancelled := i%10 < 3
			status := "active"
			tickets := i % 3
			logins := 5 + i%4
			if cancelled {
				status = "cancelled"
				tickets = 7 + i%3
				logins = i % 2
			}
			b.WriteString(fmt.Sprintf("cust-%06d,2023-%02d-%02d,2024-%02d-%02d,%.2f,%d,%d,%s,mobile,card,monthly,organic,west,US,F,25-34,%s\n",
				i, 1+i%12, 1+i%28, 1+i%12, 1+i%28, 9.99+float64(i%5)*10, logins, tickets, tiers[i%3], status))
		}

		path := filepath.Join(config.WorkDir, fmt.Sprintf("customers_%s.csv", label))
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return nil, fmt.Errorf("cannot write dataset %s: %w", path, err)
		}
		datasets[label] = path
		fmt.Printf("Generated %s (%d rows)\n", path, rows)
	}

	return datasets, nil
}

// runBenchmarks executes all benchmark tests across configured dataset sizes
func runBenchmarks(config BenchmarkConfig, datasets map[string]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, untracked: %d runs, tracked: %d runs\n",
		len(config.DatasetRows), config.Timeout, config.Workers, config.UntrackedRuns, config.TrackedRuns)

	for _, rows := range config.DatasetRows {
		label := fmt.Sprintf("%dk", rows/1000)
		dataset := datasets[label]
		fmt.Printf("Benchmarking %s\n", label)

		// Default grid pipeline
		result := runBenchmarkSuite(config, label, "pipeline", "pipeline (default grid)",
			[]string{"pipeline", dataset})
		results = append(results, result)

		// Wide grid pipeline, pruned variants included
		wideArgs := []string{
			"pipeline", dataset,
			"--cp-grid", "0.05,0.01,0.001,0.0001",
			"--minsplit-grid", "5,10,20",
			"--maxdepth-grid", "4,8,12",
			"--pruned", "yes",
		}
		result = runBenchmarkSuite(config, label, "pipeline-wide", "pipeline (wide grid)", wideArgs)
		results = append(results, result)

		// Feature ranking only
		result = runBenchmarkSuite(config, label, "features", "feature ranking",
			[]string{"features", dataset})
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both untracked and tracked benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, label, command, description string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, label)

	dbPath := filepath.Join(config.WorkDir, fmt.Sprintf("bench_%s_%s.db", label, command))

	// Helper to run a benchmark phase
	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, args, backend, dbPath, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: Untracked runs
	_, untrackedAvg := runPhase("none", config.UntrackedRuns, "Untracked")

	// Phase 2: Tracked runs against a fresh SQLite database. The first run
	// pays for schema creation; the rest append to existing tables.
	_ = os.Remove(dbPath)
	coldTime, warmAvg := runPhase("sqlite", config.TrackedRuns, "Tracked")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Untracked average: %s, Cold time: %s, Warm average: %s\n", untrackedAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:       label,
		Command:       command,
		UntrackedTime: untrackedAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes a churnlab command multiple times with the specified run backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, args []string, backend, dbPath string, numRuns int) (coldTime float64, warmTimes []float64) {
	fullArgs := append([]string{}, args...)
	fullArgs = append(fullArgs,
		"--workers", fmt.Sprintf("%d", config.Workers),
		"--runs-backend", backend,
	)
	if backend == "sqlite" {
		fullArgs = append(fullArgs, "--runs-db-connect", dbPath)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("churnlab", fullArgs...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	if command == "features" {
		return strings.Contains(outputStr, "Ranked") && strings.Contains(outputStr, "features in")
	}

	return strings.Contains(outputStr, "Pipeline completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/churnlab_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "untracked_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.UntrackedTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "pipeline", "Pipeline (default grid):")
	printCommandSummary(results, "pipeline-wide", "Pipeline (wide grid):")
	printCommandSummary(results, "features", "Feature Ranking:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: Untracked: %s, Cold: %s, Warm: %s\n", result.Dataset, result.UntrackedTime, result.ColdTime, result.WarmTime)
		}
	}
}
