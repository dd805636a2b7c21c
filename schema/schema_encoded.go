package schema

// EncodedRecord is one row after categorical encoding: a dense feature
// vector aligned with EncodedDataset.Columns plus the binary label code.
// Synthetic rows produced by oversampling carry no CustomerID.
type EncodedRecord struct {
	CustomerID string    `json:"customer_id,omitempty"`
	Features   []float64 `json:"features"`
	Label      int       `json:"label"` // 1 = positive (churned), 0 = negative
	Synthetic  bool      `json:"synthetic,omitempty"`
}

// EncodedDataset is an ordered, immutable collection of encoded records.
// Pipeline stages consume one dataset and produce a new one; they never
// mutate records in place.
type EncodedDataset struct {
	Columns     []string        `json:"columns"`
	Categorical map[string]bool `json:"categorical"` // columns holding category codes
	Records     []EncodedRecord `json:"records"`
}

// ColumnIndex returns the position of a feature column, or -1 if absent.
func (d *EncodedDataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// LabelCounts returns the number of negative and positive records.
func (d *EncodedDataset) LabelCounts() (neg, pos int) {
	for _, r := range d.Records {
		if r.Label == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

// WithRecords returns a new dataset sharing this dataset's column layout.
func (d *EncodedDataset) WithRecords(records []EncodedRecord) *EncodedDataset {
	return &EncodedDataset{
		Columns:     d.Columns,
		Categorical: d.Categorical,
		Records:     records,
	}
}

// Len returns the number of records.
func (d *EncodedDataset) Len() int {
	return len(d.Records)
}

// Partition is a disjoint train/test pair whose union is the source dataset.
type Partition struct {
	Train *EncodedDataset
	Test  *EncodedDataset
}

// FeatureScore pairs a feature column with its information gain score.
type FeatureScore struct {
	Name string  `json:"name"`
	Gain float64 `json:"gain"`
}

// FeatureRanking is an ordered sequence of feature scores, descending by
// gain. It is deterministic for a fixed input dataset.
type FeatureRanking []FeatureScore
