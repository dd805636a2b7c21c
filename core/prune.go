package core

import (
	"math"

	"github.com/huangsam/churnlab/schema"
)

// PruneTree applies weakest-link cost-complexity pruning. Internal nodes
// whose link strength falls strictly below cp times the root resubstitution
// risk are collapsed to leaves, weakest first, until every remaining split
// pays for itself. cp of zero leaves the tree untouched. The input model is
// not mutated.
func PruneTree(model *schema.DecisionTreeModel, cp float64) *schema.DecisionTreeModel {
	pruned := model.Clone()
	root := pruned.Root
	if root == nil || root.IsLeaf() {
		return pruned
	}

	n := float64(root.Size)
	rootRisk := nodeRisk(root) / n
	if rootRisk == 0 {
		// A separable root means every split is cost-free; nothing to prune.
		return pruned
	}

	for {
		weakest, g := weakestLink(root, n)
		if weakest == nil || g >= cp*rootRisk {
			return pruned
		}
		collapse(weakest)
	}
}

// weakestLink returns the internal node with the smallest link strength
//
//	g(t) = (R(t) - R(T_t)) / (|leaves(T_t)| - 1)
//
// where R is resubstitution risk normalized by the training size. The
// first minimizer in pre-order wins, keeping pruning deterministic.
func weakestLink(root *schema.TreeNode, n float64) (*schema.TreeNode, float64) {
	var weakest *schema.TreeNode
	minG := math.Inf(1)

	var walk func(t *schema.TreeNode)
	walk = func(t *schema.TreeNode) {
		if t == nil || t.IsLeaf() {
			return
		}
		leaves := leafRiskAndCount(t)
		g := (nodeRisk(t)/n - leaves.risk/n) / float64(leaves.count-1)
		if g < minG {
			minG = g
			weakest = t
		}
		walk(t.Left)
		walk(t.Right)
	}
	walk(root)
	return weakest, minG
}

type leafSummary struct {
	risk  float64
	count int
}

func leafRiskAndCount(t *schema.TreeNode) leafSummary {
	if t.IsLeaf() {
		return leafSummary{risk: nodeRisk(t), count: 1}
	}
	left := leafRiskAndCount(t.Left)
	right := leafRiskAndCount(t.Right)
	return leafSummary{risk: left.risk + right.risk, count: left.count + right.count}
}

// nodeRisk is the number of training records a node misclassifies when
// predicting its majority class.
func nodeRisk(t *schema.TreeNode) float64 {
	return float64(min(t.Counts[0], t.Counts[1]))
}

func collapse(t *schema.TreeNode) {
	t.Left = nil
	t.Right = nil
	t.Feature = ""
	t.Col = 0
	t.Threshold = 0
	t.Subset = nil
}
