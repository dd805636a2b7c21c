package core

import (
	"math"
	"sort"

	"github.com/huangsam/churnlab/schema"
)

// numericBins is the bin count used to discretize continuous columns
// before computing information gain.
const numericBins = 10

// RankFeatures scores every feature column by the information gain it
// provides about the label and returns the ranking in descending order.
// The computation is deterministic for a fixed dataset; ties break by
// column name.
func RankFeatures(d *schema.EncodedDataset) schema.FeatureRanking {
	labelEntropy := entropyOf(labelCountsOf(d.Records))

	ranking := make(schema.FeatureRanking, 0, len(d.Columns))
	for col, name := range d.Columns {
		gain := labelEntropy - conditionalEntropy(d, col)
		if gain < 0 {
			gain = 0 // guard against float noise
		}
		ranking = append(ranking, schema.FeatureScore{Name: name, Gain: gain})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Gain != ranking[j].Gain {
			return ranking[i].Gain > ranking[j].Gain
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// SelectFeatures returns the column names whose gain exceeds minGain.
// Callers apply this policy before training; the ranking itself never
// drops columns.
func SelectFeatures(ranking schema.FeatureRanking, minGain float64) []string {
	out := make([]string, 0, len(ranking))
	for _, fs := range ranking {
		if fs.Gain > minGain {
			out = append(out, fs.Name)
		}
	}
	return out
}

// conditionalEntropy computes the label entropy remaining after splitting
// on the column's value distribution. Continuous columns are discretized
// into equal-width bins; categorical codes group as-is.
func conditionalEntropy(d *schema.EncodedDataset, col int) float64 {
	groups := make(map[float64][2]int)

	categorical := d.Categorical[d.Columns[col]]
	var lo, width float64
	if !categorical {
		lo, width = binWidth(d, col)
	}

	for _, r := range d.Records {
		v := r.Features[col]
		if !categorical && width > 0 {
			b := math.Floor((v - lo) / width)
			if b >= numericBins {
				b = numericBins - 1
			}
			v = b
		}
		counts := groups[v]
		counts[clampLabel(r.Label)]++
		groups[v] = counts
	}

	// Sum in sorted-key order. Float addition is not associative, so map
	// iteration order would leak into the last ulp of each gain and break
	// run-to-run reproducibility.
	keys := make([]float64, 0, len(groups))
	for v := range groups {
		keys = append(keys, v)
	}
	sort.Float64s(keys)

	n := float64(len(d.Records))
	var h float64
	for _, v := range keys {
		counts := groups[v]
		size := float64(counts[0] + counts[1])
		h += (size / n) * entropyOf(counts)
	}
	return h
}

// binWidth returns the lower bound and bin width for a continuous column.
func binWidth(d *schema.EncodedDataset, col int) (lo, width float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range d.Records {
		v := r.Features[col]
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, (hi - lo) / numericBins
}

// entropyOf computes binary Shannon entropy from class counts.
func entropyOf(counts [2]int) float64 {
	n := float64(counts[0] + counts[1])
	if n == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

func labelCountsOf(records []schema.EncodedRecord) [2]int {
	var counts [2]int
	for _, r := range records {
		counts[clampLabel(r.Label)]++
	}
	return counts
}

func clampLabel(label int) int {
	if label == 1 {
		return 1
	}
	return 0
}
