package core

import (
	"fmt"
	"time"

	"github.com/huangsam/churnlab/schema"
)

// makeDataset builds an encoded dataset from parallel feature rows and
// labels. Columns named in categorical are treated as category codes.
func makeDataset(columns []string, categorical []string, rows [][]float64, labels []int) *schema.EncodedDataset {
	catSet := make(map[string]bool, len(columns))
	for _, c := range categorical {
		catSet[c] = true
	}

	records := make([]schema.EncodedRecord, len(rows))
	for i, row := range rows {
		records[i] = schema.EncodedRecord{
			CustomerID: fmt.Sprintf("cust-%04d", i),
			Features:   row,
			Label:      labels[i],
		}
	}
	return &schema.EncodedDataset{
		Columns:     columns,
		Categorical: catSet,
		Records:     records,
	}
}

// benchmarkDataset builds a 1000-record dataset with one weakly predictive
// binary column and one constant column. The signal split improves Gini by
// roughly 0.9% of the root impurity, which lands between the cp values the
// grid semantics tests exercise.
func benchmarkDataset() *schema.EncodedDataset {
	var rows [][]float64
	var labels []int

	appendGroup := func(signal float64, label, n int) {
		for range n {
			rows = append(rows, []float64{signal, 1.0})
			labels = append(labels, label)
		}
	}
	appendGroup(0, 0, 696)
	appendGroup(0, 1, 274)
	appendGroup(1, 0, 14)
	appendGroup(1, 1, 16)

	return makeDataset([]string{"signal", "noise"}, nil, rows, labels)
}

// twoClassDataset builds a dataset with the requested per-class sizes and
// feature vectors that only vary by index, for splitter tests.
func twoClassDataset(neg, pos int) *schema.EncodedDataset {
	rows := make([][]float64, 0, neg+pos)
	labels := make([]int, 0, neg+pos)
	for i := range neg + pos {
		rows = append(rows, []float64{float64(i)})
		label := 0
		if i >= neg {
			label = 1
		}
		labels = append(labels, label)
	}
	return makeDataset([]string{"f"}, nil, rows, labels)
}

// dateOf builds a schema.Date for test fixtures.
func dateOf(year int, month time.Month, day int) schema.Date {
	return schema.Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// customerFixture builds a minimal valid customer row.
func customerFixture(id string, join, lastLogin schema.Date, fee float64, status string) schema.CustomerRecord {
	return schema.CustomerRecord{
		CustomerID:       id,
		JoinDate:         join,
		LastLoginDate:    lastLogin,
		MonthlyFee:       fee,
		WeeklyLogins:     3,
		SupportTickets:   1,
		PlanTier:         "basic",
		DeviceType:       "mobile",
		PaymentMethod:    "card",
		PaymentFrequency: "monthly",
		ReferralSource:   "organic",
		Region:           "west",
		Country:          "US",
		Gender:           "F",
		AgeGroup:         "25-34",
		Status:           status,
	}
}
