package core

import (
	"fmt"
	"sort"

	"github.com/huangsam/churnlab/schema"
)

// CategoryEncoder maps categorical values (and the label) to integer codes.
// The mappings are fitted once and captured as data, so future records
// encode consistently; applying the encoder to an unseen value is an
// UnknownCategoryError, never a silent re-fit.
type CategoryEncoder struct {
	// Columns maps each categorical column to its value -> code table.
	// Codes are contiguous, assigned in sorted value order for determinism.
	Columns map[string]map[string]int `json:"columns"`

	// Positive is the raw label value encoded as 1; every other observed
	// label value encodes as 0.
	Positive string `json:"positive"`

	labelValues map[string]int
}

// FitEncoder builds an encoder from observed values. The positive label
// value designates which raw status means "churned".
func FitEncoder(records []schema.EngineeredRecord, positive string) (*CategoryEncoder, error) {
	enc := &CategoryEncoder{
		Columns:     make(map[string]map[string]int, len(schema.CategoricalColumns)),
		Positive:    positive,
		labelValues: make(map[string]int),
	}

	for _, col := range schema.CategoricalColumns {
		seen := make(map[string]struct{})
		for i := range records {
			v, ok := records[i].CategoricalValue(col)
			if !ok {
				return nil, fmt.Errorf("unknown categorical column %q", col)
			}
			seen[v] = struct{}{}
		}

		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)

		mapping := make(map[string]int, len(values))
		for i, v := range values {
			mapping[v] = i
		}
		enc.Columns[col] = mapping
	}

	sawPositive := false
	for i := range records {
		v := records[i].Status
		enc.labelValues[v] = enc.encodeLabel(v)
		if v == positive {
			sawPositive = true
		}
	}
	if !sawPositive {
		return nil, fmt.Errorf("positive label %q not observed in any record", positive)
	}

	return enc, nil
}

// encodeLabel maps a raw label value to its binary code.
func (e *CategoryEncoder) encodeLabel(value string) int {
	if value == e.Positive {
		return 1
	}
	return 0
}

// EncodeLabel maps a raw label value to {0,1}, failing on values never
// observed at fit time.
func (e *CategoryEncoder) EncodeLabel(value string) (int, error) {
	if _, ok := e.labelValues[value]; !ok {
		return 0, &UnknownCategoryError{Column: schema.ColStatus, Value: value}
	}
	return e.encodeLabel(value), nil
}

// EncodeValue maps one categorical value to its code.
func (e *CategoryEncoder) EncodeValue(col, value string) (int, error) {
	mapping, ok := e.Columns[col]
	if !ok {
		return 0, fmt.Errorf("column %s has no fitted encoding", col)
	}
	code, ok := mapping[value]
	if !ok {
		return 0, &UnknownCategoryError{Column: col, Value: value}
	}
	return code, nil
}

// Apply encodes a dataset into numeric feature vectors. Column order is
// numeric columns first, then categorical columns, both in declaration
// order. The input records are not modified.
func (e *CategoryEncoder) Apply(records []schema.EngineeredRecord) (*schema.EncodedDataset, error) {
	columns := make([]string, 0, len(schema.NumericColumns)+len(schema.CategoricalColumns))
	columns = append(columns, schema.NumericColumns...)
	columns = append(columns, schema.CategoricalColumns...)

	categorical := make(map[string]bool, len(schema.CategoricalColumns))
	for _, col := range schema.CategoricalColumns {
		categorical[col] = true
	}

	encoded := make([]schema.EncodedRecord, 0, len(records))
	for i := range records {
		r := &records[i]
		features := make([]float64, 0, len(columns))

		for _, col := range schema.NumericColumns {
			v, _ := r.NumericValue(col)
			features = append(features, v)
		}
		for _, col := range schema.CategoricalColumns {
			raw, _ := r.CategoricalValue(col)
			code, err := e.EncodeValue(col, raw)
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", r.CustomerID, err)
			}
			features = append(features, float64(code))
		}

		label, err := e.EncodeLabel(r.Status)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.CustomerID, err)
		}

		encoded = append(encoded, schema.EncodedRecord{
			CustomerID: r.CustomerID,
			Features:   features,
			Label:      label,
		})
	}

	return &schema.EncodedDataset{
		Columns:     columns,
		Categorical: categorical,
		Records:     encoded,
	}, nil
}
