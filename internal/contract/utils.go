package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Metric quality label constants.
const (
	StrongValue = "Strong" // Strong value
	GoodValue   = "Good"   // Good value
	FairValue   = "Fair"   // Fair value
	WeakValue   = "Weak"   // Weak value
)

// Color variables for console output.
var (
	StrongColor = color.New(color.FgGreen, color.Bold) // strongColor marks a metric worth shipping.
	GoodColor   = color.New(color.FgCyan)              // goodColor marks a solid but unremarkable metric.
	FairColor   = color.New(color.FgYellow)            // fairColor marks a metric that needs a second look.
	WeakColor   = color.New(color.FgRed, color.Bold)   // weakColor marks a metric below any useful bar.
)

// GetPlainLabel returns a plain text quality label for a metric value in
// [0,1]. This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(metric float64) string {
	switch {
	case metric >= 0.9:
		return StrongValue
	case metric >= 0.75:
		return GoodValue
	case metric >= 0.5:
		return FairValue
	default:
		return WeakValue
	}
}

// GetColorLabel returns a colored quality label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the
// appropriate color.
func GetColorLabel(metric float64) string {
	text := GetPlainLabel(metric)

	switch text {
	case StrongValue:
		return StrongColor.Sprint(text)
	case GoodValue:
		return GoodColor.Sprint(text)
	case FairValue:
		return FairColor.Sprint(text)
	default: // "Weak"
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".churnlab_runs.db"
	}
	return filepath.Join(homeDir, ".churnlab_runs.db")
}

// TruncateText truncates a string to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for both the "..." prefix and at
// least one character of content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
