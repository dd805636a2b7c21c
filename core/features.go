// Package core implements the churn-prediction pipeline: feature
// engineering, categorical encoding, class balancing, feature ranking,
// stratified splitting, decision-tree training with cost-complexity
// pruning, evaluation, and model selection.
package core

import (
	"math"
	"time"

	"github.com/huangsam/churnlab/schema"
)

const daysPerMonth = 30.0

// EngineerFeatures derives tenure and revenue attributes for every record.
// It returns a new slice; the input is never mutated. Records whose last
// login precedes their join date are reported as warnings and passed
// through unchanged.
func EngineerFeatures(records []schema.CustomerRecord) ([]schema.EngineeredRecord, []*NegativeTenureWarning) {
	out := make([]schema.EngineeredRecord, 0, len(records))
	var warnings []*NegativeTenureWarning

	for _, r := range records {
		days := tenureDays(r.JoinDate.Time, r.LastLoginDate.Time)
		months := roundTenths(float64(days) / daysPerMonth)

		if days < 0 {
			warnings = append(warnings, &NegativeTenureWarning{
				CustomerID: r.CustomerID,
				TenureDays: days,
			})
		}

		out = append(out, schema.EngineeredRecord{
			CustomerRecord: r,
			TenureDays:     days,
			TenureMonths:   months,
			Revenue:        r.MonthlyFee * months,
		})
	}
	return out, warnings
}

// tenureDays is the whole number of elapsed days between join and last login.
func tenureDays(join, lastLogin time.Time) int {
	return int(lastLogin.Sub(join).Hours() / 24)
}

// roundTenths rounds to one decimal place.
func roundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}
