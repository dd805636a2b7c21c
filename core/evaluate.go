package core

import (
	"math"
	"sort"

	"github.com/huangsam/churnlab/schema"
)

// waldZ is the critical value for a 95% normal-approximation interval.
const waldZ = 1.96

// Evaluate scores a trained model against a held-out partition. Metrics
// whose denominator is empty are reported as NaN together with a note
// explaining why, never silently coerced to zero.
func Evaluate(model *schema.DecisionTreeModel, test *schema.EncodedDataset) *schema.EvaluationReport {
	report := &schema.EvaluationReport{TestSize: test.Len()}

	probs := make([]float64, test.Len())
	for i := range test.Records {
		r := &test.Records[i]
		probs[i] = model.PredictProba(r.Features)

		predicted := model.Predict(r.Features)
		actual := clampLabel(r.Label)
		switch {
		case predicted == 1 && actual == 1:
			report.Confusion.TP++
		case predicted == 1 && actual == 0:
			report.Confusion.FP++
		case predicted == 0 && actual == 0:
			report.Confusion.TN++
		default:
			report.Confusion.FN++
		}
	}

	cm := report.Confusion
	total := float64(cm.Total())
	if total > 0 {
		report.Accuracy = float64(cm.TP+cm.TN) / total
		half := waldZ * math.Sqrt(report.Accuracy*(1-report.Accuracy)/total)
		report.AccuracyLower = math.Max(0, report.Accuracy-half)
		report.AccuracyUpper = math.Min(1, report.Accuracy+half)
	} else {
		report.Accuracy = math.NaN()
		report.AccuracyLower = math.NaN()
		report.AccuracyUpper = math.NaN()
		report.Notes = append(report.Notes, "accuracy undefined: empty test partition")
	}

	report.Precision = ratioOrNaN(cm.TP, cm.TP+cm.FP, "precision undefined: no positive predictions", report)
	report.Recall = ratioOrNaN(cm.TP, cm.TP+cm.FN, "recall undefined: no positive records in test partition", report)

	if schema.Defined(report.Precision) && schema.Defined(report.Recall) && report.Precision+report.Recall > 0 {
		report.F1 = 2 * report.Precision * report.Recall / (report.Precision + report.Recall)
	} else {
		report.F1 = math.NaN()
		report.Notes = append(report.Notes, "f1 undefined: precision and recall do not support a harmonic mean")
	}

	report.ROC, report.AUC = rocCurve(probs, test)
	if !schema.Defined(report.AUC) {
		report.Notes = append(report.Notes, "auc undefined: test partition holds a single class")
	}
	return report
}

func ratioOrNaN(num, den int, note string, report *schema.EvaluationReport) float64 {
	if den == 0 {
		report.Notes = append(report.Notes, note)
		return math.NaN()
	}
	return float64(num) / float64(den)
}

// rocCurve sweeps a decision threshold across every distinct predicted
// probability and reports (FPR, TPR) points sorted by FPR, plus the
// trapezoidal area under them. Both endpoints (0,0) and (1,1) are always
// included.
func rocCurve(probs []float64, test *schema.EncodedDataset) ([]schema.ROCPoint, float64) {
	var pos, neg int
	for i := range test.Records {
		if clampLabel(test.Records[i].Label) == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, math.NaN()
	}

	distinct := make(map[float64]struct{}, len(probs))
	for _, p := range probs {
		distinct[p] = struct{}{}
	}
	thresholds := make([]float64, 0, len(distinct))
	for p := range distinct {
		thresholds = append(thresholds, p)
	}
	sort.Float64s(thresholds)

	points := []schema.ROCPoint{{FPR: 0, TPR: 0}}
	// Descending thresholds move from the strictest classifier to the most
	// permissive one, so FPR grows monotonically.
	for t := len(thresholds) - 1; t >= 0; t-- {
		var tp, fp int
		for i, p := range probs {
			if p < thresholds[t] {
				continue
			}
			if clampLabel(test.Records[i].Label) == 1 {
				tp++
			} else {
				fp++
			}
		}
		points = append(points, schema.ROCPoint{
			FPR: float64(fp) / float64(neg),
			TPR: float64(tp) / float64(pos),
		})
	}
	if last := points[len(points)-1]; last.FPR != 1 || last.TPR != 1 {
		points = append(points, schema.ROCPoint{FPR: 1, TPR: 1})
	}

	var auc float64
	for i := 1; i < len(points); i++ {
		auc += (points[i].FPR - points[i-1].FPR) * (points[i].TPR + points[i-1].TPR) / 2
	}
	return points, auc
}
