package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/churnlab/schema"
)

// Default values for configuration.
const (
	DefaultSplitFraction = 0.7
	DefaultNeighbors     = 5
	DefaultSeed          = 42
	DefaultMinGain       = 0.0
	DefaultPrecision     = 3
	MaxGridSize          = 1000
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the timestamp format used in CSV and table output.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Default grid axes used when no overrides are supplied.
var (
	DefaultCPGrid       = []float64{0.01, 0.005, 0.001}
	DefaultMinSplitGrid = []int{10, 20, 40}
	DefaultMaxDepthGrid = []int{4, 8, 16}
)

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath     string
	PositiveLabel string
	Neighbors     int
	SplitFraction float64
	Seed          int64
	MinGain       float64

	CPGrid        []float64
	MinSplitGrid  []int
	MaxDepthGrid  []int
	IncludePruned bool

	Workers   int
	Policy    string
	Precision int

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	PositiveLabel string `mapstructure:"positive-label"`
	Neighbors     int    `mapstructure:"neighbors"`
	SplitFraction string `mapstructure:"split-fraction"`
	Seed          int64  `mapstructure:"seed"`
	MinGain       string `mapstructure:"min-gain"`
	Workers       int    `mapstructure:"workers"`
	Policy        string `mapstructure:"policy"`
	Precision     int    `mapstructure:"precision"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	Width         int    `mapstructure:"width"`
	RunsBackend   string `mapstructure:"runs-backend"`
	RunsDBConnect string `mapstructure:"runs-db-connect"`
	Emoji         string `mapstructure:"emoji"`
	Color         string `mapstructure:"color"`

	// --- Fields from pipelineCmd.Flags() ---
	CPGrid       string `mapstructure:"cp-grid"`
	MinSplitGrid string `mapstructure:"minsplit-grid"`
	MaxDepthGrid string `mapstructure:"maxdepth-grid"`
	Pruned       string `mapstructure:"pruned"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CPGrid != nil {
		clone.CPGrid = make([]float64, len(c.CPGrid))
		copy(clone.CPGrid, c.CPGrid)
	}
	if c.MinSplitGrid != nil {
		clone.MinSplitGrid = make([]int, len(c.MinSplitGrid))
		copy(clone.MinSplitGrid, c.MinSplitGrid)
	}
	if c.MaxDepthGrid != nil {
		clone.MaxDepthGrid = make([]int, len(c.MaxDepthGrid))
		copy(clone.MaxDepthGrid, c.MaxDepthGrid)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := ProcessAndValidateBase(cfg, input); err != nil {
		return err
	}
	return resolveInputPath(cfg, input)
}

// ProcessAndValidateBase parses and validates everything except the dataset
// path. MCP tool calls supply their own path per request.
func ProcessAndValidateBase(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	return processGridAxes(cfg, input)
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database
// connection strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("runs-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-grid fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Seed = input.Seed

	// Parse emoji flag
	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Label Validation ---
	cfg.PositiveLabel = strings.TrimSpace(input.PositiveLabel)
	if cfg.PositiveLabel == "" {
		return fmt.Errorf("positive-label must not be empty")
	}

	// --- 2. Balancing and Split Validation ---
	if input.Neighbors < 1 {
		return fmt.Errorf("neighbors must be at least 1 (received %d)", input.Neighbors)
	}
	cfg.Neighbors = input.Neighbors

	fraction, err := strconv.ParseFloat(input.SplitFraction, 64)
	if err != nil {
		return fmt.Errorf("invalid split-fraction '%s': %w", input.SplitFraction, err)
	}
	if fraction <= 0 || fraction >= 1 {
		return fmt.Errorf("split-fraction must lie strictly between 0 and 1 (received %g)", fraction)
	}
	cfg.SplitFraction = fraction

	minGain, err := strconv.ParseFloat(input.MinGain, 64)
	if err != nil {
		return fmt.Errorf("invalid min-gain '%s': %w", input.MinGain, err)
	}
	if minGain < 0 {
		return fmt.Errorf("min-gain must be non-negative (received %g)", minGain)
	}
	cfg.MinGain = minGain

	// --- 3. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 4. Policy, Precision and Output Validation ---
	cfg.Policy = strings.ToLower(strings.TrimSpace(input.Policy))
	if cfg.Policy == "" {
		cfg.Policy = "recall-first"
	}

	if input.Precision < 1 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 1 and 6 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 5. Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	return nil
}

// processGridAxes parses the comma-separated grid flags and bounds the
// resulting grid size.
func processGridAxes(cfg *Config, input *ConfigRawInput) error {
	cfg.CPGrid = DefaultCPGrid
	cfg.MinSplitGrid = DefaultMinSplitGrid
	cfg.MaxDepthGrid = DefaultMaxDepthGrid

	if input.CPGrid != "" {
		cps, err := parseFloatList(input.CPGrid)
		if err != nil {
			return fmt.Errorf("invalid --cp-grid: %w", err)
		}
		for _, cp := range cps {
			if cp < 0 {
				return fmt.Errorf("cp values must be non-negative (received %g)", cp)
			}
		}
		cfg.CPGrid = cps
	}

	if input.MinSplitGrid != "" {
		minsplits, err := parseIntList(input.MinSplitGrid)
		if err != nil {
			return fmt.Errorf("invalid --minsplit-grid: %w", err)
		}
		for _, ms := range minsplits {
			if ms <= 0 {
				return fmt.Errorf("minsplit values must be positive (received %d)", ms)
			}
		}
		cfg.MinSplitGrid = minsplits
	}

	if input.MaxDepthGrid != "" {
		maxdepths, err := parseIntList(input.MaxDepthGrid)
		if err != nil {
			return fmt.Errorf("invalid --maxdepth-grid: %w", err)
		}
		for _, md := range maxdepths {
			if md < 1 {
				return fmt.Errorf("maxdepth values must be at least 1 (received %d)", md)
			}
		}
		cfg.MaxDepthGrid = maxdepths
	}

	pruned, err := ParseBoolString(input.Pruned)
	if err != nil {
		return fmt.Errorf("invalid --pruned value: %w", err)
	}
	cfg.IncludePruned = pruned

	size := len(cfg.CPGrid) * len(cfg.MinSplitGrid) * len(cfg.MaxDepthGrid)
	if cfg.IncludePruned {
		size *= 2
	}
	if size > MaxGridSize {
		return fmt.Errorf("grid holds %d points, which exceeds the limit of %d", size, MaxGridSize)
	}

	return nil
}

// resolveInputPath absolutizes the dataset path and checks it exists.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	if input.InputPathStr == "" {
		return fmt.Errorf("a dataset path argument is required")
	}
	absPath, err := filepath.Abs(input.InputPathStr)
	if err != nil {
		return err
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot read dataset at %s: %w", absPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("dataset path %s is a directory, expected a CSV file", absPath)
	}

	cfg.InputPath = absPath
	return nil
}

func parseFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s': %w", p, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return values, nil
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer '%s': %w", p, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("list is empty")
	}
	return values, nil
}
