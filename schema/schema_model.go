package schema

import (
	"fmt"
	"slices"
)

// Hyperparams is one point of the training grid.
type Hyperparams struct {
	CP       float64 `json:"cp"`       // minimum relative impurity improvement to keep a split
	MinSplit int     `json:"minsplit"` // minimum records required to attempt a split
	MaxDepth int     `json:"maxdepth"` // maximum tree depth (root depth = 0)
	Prune    bool    `json:"prune"`    // grow unconstrained (cp=0), then cost-complexity prune at CP
}

// String renders the tuple the way it appears in the comparison table.
func (h Hyperparams) String() string {
	s := fmt.Sprintf("cp=%g minsplit=%d maxdepth=%d", h.CP, h.MinSplit, h.MaxDepth)
	if h.Prune {
		s += " pruned"
	}
	return s
}

// TreeNode is one node of a trained decision tree. Internal nodes carry a
// split predicate; leaves carry the class distribution seen at training.
// The whole structure is JSON-serializable.
type TreeNode struct {
	// Split predicate (internal nodes only).
	Col       int       `json:"col,omitempty"`       // feature index into DecisionTreeModel.Columns
	Feature   string    `json:"feature,omitempty"`   // feature name, for display and export
	Threshold float64   `json:"threshold,omitempty"` // numeric split: x <= threshold goes left
	Subset    []float64 `json:"subset,omitempty"`    // categorical split: codes routed left

	Left  *TreeNode `json:"left,omitempty"`
	Right *TreeNode `json:"right,omitempty"`

	// Training-time class counts, index 0 = negative, 1 = positive.
	// Kept on every node so pruning can recompute subtree costs.
	Size   int    `json:"size"`
	Counts [2]int `json:"counts"`
}

// IsLeaf reports whether the node has no children.
func (n *TreeNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Proba returns the positive-class probability estimate at this node.
func (n *TreeNode) Proba() float64 {
	if n.Size == 0 {
		return 0.5
	}
	return float64(n.Counts[1]) / float64(n.Size)
}

// MajorityClass returns the predicted class at this node, ties to negative.
func (n *TreeNode) MajorityClass() int {
	if n.Counts[1] > n.Counts[0] {
		return 1
	}
	return 0
}

// routeLeft decides which child a feature vector descends to.
func (n *TreeNode) routeLeft(features []float64) bool {
	v := features[n.Col]
	if len(n.Subset) > 0 {
		return slices.Contains(n.Subset, v)
	}
	return v <= n.Threshold
}

// DecisionTreeModel is a rooted binary classification tree. It is immutable
// after training; pruning produces a derivative model, never an in-place
// modification.
type DecisionTreeModel struct {
	Root    *TreeNode   `json:"root"`
	Params  Hyperparams `json:"params"`
	Columns []string    `json:"columns"` // feature order the tree was trained on
}

// leaf walks the tree to the leaf a feature vector lands in.
func (m *DecisionTreeModel) leaf(features []float64) *TreeNode {
	node := m.Root
	for !node.IsLeaf() {
		if node.routeLeft(features) {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// Predict returns the majority class of the leaf the record reaches.
func (m *DecisionTreeModel) Predict(features []float64) int {
	return m.leaf(features).MajorityClass()
}

// PredictProba returns the positive-class probability estimate, taken from
// the class distribution of the leaf the record reaches.
func (m *DecisionTreeModel) PredictProba(features []float64) float64 {
	return m.leaf(features).Proba()
}

// NodeCount returns the total number of nodes in the tree.
func (m *DecisionTreeModel) NodeCount() int {
	return countNodes(m.Root)
}

// LeafCount returns the number of leaves in the tree.
func (m *DecisionTreeModel) LeafCount() int {
	return countLeaves(m.Root)
}

// Depth returns the maximum depth of the tree (root-only tree has depth 0).
func (m *DecisionTreeModel) Depth() int {
	return nodeDepth(m.Root)
}

// Clone deep-copies the model so pruning can derive a new tree without
// touching the original.
func (m *DecisionTreeModel) Clone() *DecisionTreeModel {
	return &DecisionTreeModel{
		Root:    cloneNode(m.Root),
		Params:  m.Params,
		Columns: slices.Clone(m.Columns),
	}
}

func countNodes(n *TreeNode) int {
	if n == nil {
		return 0
	}
	return 1 + countNodes(n.Left) + countNodes(n.Right)
}

func countLeaves(n *TreeNode) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return countLeaves(n.Left) + countLeaves(n.Right)
}

func nodeDepth(n *TreeNode) int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	return 1 + max(nodeDepth(n.Left), nodeDepth(n.Right))
}

func cloneNode(n *TreeNode) *TreeNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Subset = slices.Clone(n.Subset)
	c.Left = cloneNode(n.Left)
	c.Right = cloneNode(n.Right)
	return &c
}
