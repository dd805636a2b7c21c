package core

import (
	"fmt"

	"github.com/huangsam/churnlab/schema"
)

// NegativeTenureWarning flags a record whose last login precedes its join
// date. The value is passed through unchanged; the correct business
// remediation is an open data-quality question upstream, so the pipeline
// surfaces the case instead of guessing a correction.
type NegativeTenureWarning struct {
	CustomerID string
	TenureDays int
}

func (w *NegativeTenureWarning) Error() string {
	return fmt.Sprintf("customer %s has negative tenure (%d days)", w.CustomerID, w.TenureDays)
}

// UnknownCategoryError means an encoder was applied to a value absent from
// its fitted mapping. The mapping is captured as data at fit time; unseen
// values outside training are a contract violation, not a soft miss.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("column %s: value %q not present in fitted encoding", e.Column, e.Value)
}

// InsufficientNeighborsError means the minority class is too small for the
// requested neighbor count; oversampling cannot proceed.
type InsufficientNeighborsError struct {
	Minority  int
	Neighbors int
}

func (e *InsufficientNeighborsError) Error() string {
	return fmt.Sprintf("minority class has %d records, need at least %d for k=%d neighbors",
		e.Minority, e.Neighbors+1, e.Neighbors)
}

// DegenerateClassError means one class has no members at all, so the
// oversampling ratio is undefined.
type DegenerateClassError struct {
	Label int
}

func (e *DegenerateClassError) Error() string {
	return fmt.Sprintf("class %d has no members; oversampling ratio is undefined", e.Label)
}

// InvalidHyperparameterError rejects a grid point with out-of-range
// hyperparameters. It is fatal only to that point; the rest of the grid
// still runs.
type InvalidHyperparameterError struct {
	Params schema.Hyperparams
	Reason string
}

func (e *InvalidHyperparameterError) Error() string {
	return fmt.Sprintf("invalid hyperparameters (%s): %s", e.Params, e.Reason)
}
