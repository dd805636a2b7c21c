package core

import (
	"sort"

	"github.com/huangsam/churnlab/schema"
)

// ValidateHyperparams rejects out-of-range grid points. Invalid
// configuration is never silently replaced with defaults.
func ValidateHyperparams(hp schema.Hyperparams) error {
	switch {
	case hp.MinSplit <= 0:
		return &InvalidHyperparameterError{Params: hp, Reason: "minsplit must be positive"}
	case hp.MaxDepth < 1:
		return &InvalidHyperparameterError{Params: hp, Reason: "maxdepth must be at least 1"}
	case hp.CP < 0:
		return &InvalidHyperparameterError{Params: hp, Reason: "cp must be non-negative"}
	}
	return nil
}

// Train induces a decision tree from the training partition by recursive
// binary partitioning on Gini impurity. In two-phase mode (Prune set) the
// tree grows unconstrained by cp first and is then cost-complexity pruned
// at the configured cp. The returned model is immutable and independent of
// any other grid point.
func Train(train *schema.EncodedDataset, hp schema.Hyperparams) (*schema.DecisionTreeModel, error) {
	if err := ValidateHyperparams(hp); err != nil {
		return nil, err
	}

	growCP := hp.CP
	if hp.Prune {
		growCP = 0
	}

	idx := make([]int, len(train.Records))
	for i := range idx {
		idx[i] = i
	}

	b := &treeBuilder{data: train, hp: hp, cp: growCP}
	model := &schema.DecisionTreeModel{
		Root:    b.build(idx, 0),
		Params:  hp,
		Columns: train.Columns,
	}

	if hp.Prune {
		model = PruneTree(model, hp.CP)
	}
	return model, nil
}

// treeBuilder holds the induction state for one training run.
type treeBuilder struct {
	data *schema.EncodedDataset
	hp   schema.Hyperparams
	cp   float64 // effective complexity gate while growing
}

// candidate is the best split found for one feature.
type candidate struct {
	col       int
	gain      float64
	threshold float64
	subset    []float64
	left      []int
	right     []int
}

// build grows the subtree over the records at idx.
func (b *treeBuilder) build(idx []int, depth int) *schema.TreeNode {
	counts := b.countLabels(idx)
	node := &schema.TreeNode{Size: len(idx), Counts: counts}

	// Stopping: pure node, too few records, or depth bound.
	if counts[0] == 0 || counts[1] == 0 || len(idx) < b.hp.MinSplit || depth >= b.hp.MaxDepth {
		return node
	}

	parent := giniOf(counts)
	best := candidate{col: -1}
	for col := range b.data.Columns {
		var c candidate
		if b.data.Categorical[b.data.Columns[col]] {
			c = b.bestSubsetSplit(idx, col, parent)
		} else {
			c = b.bestThresholdSplit(idx, col, parent)
		}
		// Strict comparison keeps the first (lowest-index) feature on ties,
		// so induction is deterministic for a fixed dataset.
		if c.col >= 0 && c.gain > best.gain {
			best = c
		}
	}

	// Complexity gate: the winning split must improve impurity by more
	// than cp relative to this node's own impurity.
	if best.col < 0 || best.gain <= b.cp*parent {
		return node
	}

	node.Col = best.col
	node.Feature = b.data.Columns[best.col]
	node.Threshold = best.threshold
	node.Subset = best.subset
	node.Left = b.build(best.left, depth+1)
	node.Right = b.build(best.right, depth+1)
	return node
}

// bestThresholdSplit scans midpoints between distinct sorted values of a
// numeric column.
func (b *treeBuilder) bestThresholdSplit(idx []int, col int, parent float64) candidate {
	type pair struct {
		v float64
		i int
	}
	pairs := make([]pair, 0, len(idx))
	for _, i := range idx {
		pairs = append(pairs, pair{v: b.data.Records[i].Features[col], i: i})
	}
	sort.Slice(pairs, func(a, c int) bool { return pairs[a].v < pairs[c].v })

	best := candidate{col: -1}
	var leftCounts [2]int
	total := b.countLabels(idx)

	for s := 1; s < len(pairs); s++ {
		leftCounts[clampLabel(b.data.Records[pairs[s-1].i].Label)]++
		if pairs[s].v == pairs[s-1].v {
			continue
		}

		rightCounts := [2]int{total[0] - leftCounts[0], total[1] - leftCounts[1]}
		gain := parent - weightedGini(leftCounts, rightCounts, len(idx))
		if gain > best.gain || best.col < 0 {
			left := make([]int, 0, s)
			right := make([]int, 0, len(pairs)-s)
			for _, p := range pairs[:s] {
				left = append(left, p.i)
			}
			for _, p := range pairs[s:] {
				right = append(right, p.i)
			}
			best = candidate{
				col:       col,
				gain:      gain,
				threshold: (pairs[s-1].v + pairs[s].v) / 2,
				left:      left,
				right:     right,
			}
		}
	}
	if best.col >= 0 && best.gain <= 0 {
		return candidate{col: -1}
	}
	return best
}

// bestSubsetSplit finds the best subset-membership split of a categorical
// column. Distinct codes are ordered by positive-class proportion and
// prefix subsets are scanned; for a binary label this covers the optimal
// subset without enumerating all 2^k partitions.
func (b *treeBuilder) bestSubsetSplit(idx []int, col int, parent float64) candidate {
	perValue := make(map[float64][2]int)
	for _, i := range idx {
		r := &b.data.Records[i]
		counts := perValue[r.Features[col]]
		counts[clampLabel(r.Label)]++
		perValue[r.Features[col]] = counts
	}
	if len(perValue) < 2 {
		return candidate{col: -1}
	}

	type valueStat struct {
		v    float64
		frac float64
	}
	stats := make([]valueStat, 0, len(perValue))
	for v, counts := range perValue {
		stats = append(stats, valueStat{
			v:    v,
			frac: float64(counts[1]) / float64(counts[0]+counts[1]),
		})
	}
	sort.Slice(stats, func(a, c int) bool {
		if stats[a].frac != stats[c].frac {
			return stats[a].frac < stats[c].frac
		}
		return stats[a].v < stats[c].v
	})

	total := b.countLabels(idx)
	best := candidate{col: -1}
	var leftCounts [2]int
	inLeft := make(map[float64]bool, len(stats))

	for s := range len(stats) - 1 {
		counts := perValue[stats[s].v]
		leftCounts[0] += counts[0]
		leftCounts[1] += counts[1]
		inLeft[stats[s].v] = true

		rightCounts := [2]int{total[0] - leftCounts[0], total[1] - leftCounts[1]}
		gain := parent - weightedGini(leftCounts, rightCounts, len(idx))
		if gain > best.gain {
			subset := make([]float64, 0, s+1)
			for v := range inLeft {
				subset = append(subset, v)
			}
			sort.Float64s(subset)

			var left, right []int
			for _, i := range idx {
				if inLeft[b.data.Records[i].Features[col]] {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			best = candidate{col: col, gain: gain, subset: subset, left: left, right: right}
		}
	}
	return best
}

func (b *treeBuilder) countLabels(idx []int) [2]int {
	var counts [2]int
	for _, i := range idx {
		counts[clampLabel(b.data.Records[i].Label)]++
	}
	return counts
}

// giniOf computes Gini impurity from binary class counts.
func giniOf(counts [2]int) float64 {
	n := float64(counts[0] + counts[1])
	if n == 0 {
		return 0
	}
	p0 := float64(counts[0]) / n
	p1 := float64(counts[1]) / n
	return 1 - p0*p0 - p1*p1
}

// weightedGini is the size-weighted impurity of a child pair.
func weightedGini(left, right [2]int, n int) float64 {
	nl := float64(left[0] + left[1])
	nr := float64(right[0] + right[1])
	return (nl*giniOf(left) + nr*giniOf(right)) / float64(n)
}
