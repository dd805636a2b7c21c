package core

import (
	"fmt"
	"sort"

	"github.com/huangsam/churnlab/schema"
)

// SelectionPolicy orders grid candidates by business preference. Less
// reports whether a should be chosen over b.
type SelectionPolicy interface {
	Name() string
	Better(a, b *schema.GridResult) bool
}

// RecallFirstPolicy prefers high recall over raw accuracy, on the premise
// that a missed cancellation costs more than a false alarm. Ties break on
// F1, then AUC. Undefined metrics rank below any defined value.
type RecallFirstPolicy struct{}

func (RecallFirstPolicy) Name() string { return "recall-first" }

func (RecallFirstPolicy) Better(a, b *schema.GridResult) bool {
	if c := compareMetric(a.Report.Recall, b.Report.Recall); c != 0 {
		return c > 0
	}
	if c := compareMetric(a.Report.F1, b.Report.F1); c != 0 {
		return c > 0
	}
	return compareMetric(a.Report.AUC, b.Report.AUC) > 0
}

// compareMetric orders two possibly-NaN metric values. A defined value
// always beats an undefined one; two undefined values are equal.
func compareMetric(a, b float64) int {
	switch {
	case schema.Defined(a) && !schema.Defined(b):
		return 1
	case !schema.Defined(a) && schema.Defined(b):
		return -1
	case !schema.Defined(a) && !schema.Defined(b):
		return 0
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// SortByPolicy stably orders grid results from best to worst under the
// policy, so downstream rank numbering reflects the policy's preference.
// Failed grid points sink to the end in their original order.
func SortByPolicy(results []schema.GridResult, policy SelectionPolicy) {
	if policy == nil {
		policy = RecallFirstPolicy{}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		aOK := a.Err == nil && a.Model != nil && a.Report != nil
		bOK := b.Err == nil && b.Model != nil && b.Report != nil
		if aOK != bOK {
			return aOK
		}
		if !aOK {
			return false
		}
		return policy.Better(a, b)
	})
}

// SelectBest picks the winning grid point under the given policy. Failed
// grid points are skipped; they stay in the input slice so callers can
// still render them in the comparison table. Errors out when no grid point
// produced a usable model.
func SelectBest(results []schema.GridResult, policy SelectionPolicy) (*schema.GridResult, error) {
	if policy == nil {
		policy = RecallFirstPolicy{}
	}
	var best *schema.GridResult
	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Model == nil || r.Report == nil {
			continue
		}
		if best == nil || policy.Better(r, best) {
			best = r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("model selection with %s policy: no grid point produced a model", policy.Name())
	}
	return best, nil
}
