// Package loader reads customer tables from CSV exports and validates the
// schema contract the pipeline depends on.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/huangsam/churnlab/schema"
)

// DataSchemaError reports a malformed customer table: missing columns,
// duplicate identifiers, or empty labels. The loader rejects the whole
// file rather than passing partial data downstream.
type DataSchemaError struct {
	Path   string
	Reason string
}

func (e *DataSchemaError) Error() string {
	return fmt.Sprintf("dataset %s violates the customer schema: %s", e.Path, e.Reason)
}

// CSVLoader loads CustomerRecord tables from disk.
type CSVLoader struct{}

// NewCSVLoader returns a ready loader.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// Load reads the CSV file at path and returns validated records.
func (l *CSVLoader) Load(ctx context.Context, path string) ([]schema.CustomerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []schema.CustomerRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, &DataSchemaError{Path: path, Reason: err.Error()}
	}

	if err := Validate(records); err != nil {
		var schemaErr *DataSchemaError
		if errors.As(err, &schemaErr) {
			schemaErr.Path = path
		}
		return nil, err
	}
	return records, nil
}

// Validate enforces the record invariants: at least one row, unique
// non-empty identifiers, and a non-empty label on every row.
func Validate(records []schema.CustomerRecord) error {
	if len(records) == 0 {
		return &DataSchemaError{Reason: "no records"}
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.CustomerID == "" {
			return &DataSchemaError{Reason: fmt.Sprintf("row %d has an empty customer_id", i+1)}
		}
		if _, dup := seen[r.CustomerID]; dup {
			return &DataSchemaError{Reason: fmt.Sprintf("duplicate customer_id %q", r.CustomerID)}
		}
		seen[r.CustomerID] = struct{}{}

		if r.Status == "" {
			return &DataSchemaError{Reason: fmt.Sprintf("customer %s has an empty status label", r.CustomerID)}
		}
	}
	return nil
}
