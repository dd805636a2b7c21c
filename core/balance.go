package core

import (
	"math"
	"math/rand"
	"slices"
	"sort"

	"github.com/huangsam/churnlab/schema"
)

// DefaultNeighbors is the default SMOTE neighbor count.
const DefaultNeighbors = 5

// Oversample raises minority-class representation toward parity by
// synthesizing interpolated samples (SMOTE). Majority records are never
// removed or modified; the result is a new dataset with the same column
// schema. Randomness comes only from the explicit seed.
func Oversample(d *schema.EncodedDataset, k int, seed int64) (*schema.EncodedDataset, error) {
	neg, pos := d.LabelCounts()

	minorityLabel := 1
	m, majority := pos, neg
	if neg < pos {
		minorityLabel = 0
		m, majority = neg, pos
	}

	if m == 0 {
		return nil, &DegenerateClassError{Label: minorityLabel}
	}
	if m < k+1 {
		return nil, &InsufficientNeighborsError{Minority: m, Neighbors: k}
	}

	dup := (majority - m) / m
	if dup == 0 {
		// Already near parity; nothing to synthesize.
		return d.WithRecords(slices.Clone(d.Records)), nil
	}

	minority := make([]int, 0, m)
	for i, r := range d.Records {
		if r.Label == minorityLabel {
			minority = append(minority, i)
		}
	}

	rnd := rand.New(rand.NewSource(seed))
	out := slices.Clone(d.Records)

	for _, i := range minority {
		base := d.Records[i].Features
		neighbors := nearestNeighbors(d, minority, i, k)

		for range dup {
			n := d.Records[neighbors[rnd.Intn(len(neighbors))]].Features
			gap := rnd.Float64()

			features := make([]float64, len(base))
			for j := range base {
				features[j] = base[j] + gap*(n[j]-base[j])
			}
			out = append(out, schema.EncodedRecord{
				Features:  features,
				Label:     minorityLabel,
				Synthetic: true,
			})
		}
	}

	return d.WithRecords(out), nil
}

// nearestNeighbors returns the k nearest same-class record indices to the
// record at index self, by Euclidean distance in encoded feature space.
func nearestNeighbors(d *schema.EncodedDataset, candidates []int, self, k int) []int {
	type scored struct {
		idx  int
		dist float64
	}

	others := make([]scored, 0, len(candidates)-1)
	base := d.Records[self].Features
	for _, c := range candidates {
		if c == self {
			continue
		}
		others = append(others, scored{idx: c, dist: euclidean(base, d.Records[c].Features)})
	}

	sort.Slice(others, func(a, b int) bool {
		if others[a].dist != others[b].dist {
			return others[a].dist < others[b].dist
		}
		return others[a].idx < others[b].idx
	})

	if len(others) > k {
		others = others[:k]
	}
	out := make([]int, len(others))
	for i, s := range others {
		out[i] = s.idx
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		delta := a[i] - b[i]
		sum += delta * delta
	}
	return math.Sqrt(sum)
}
