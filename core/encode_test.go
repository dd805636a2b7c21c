package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/churnlab/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engineeredFixtures(t *testing.T) []schema.EngineeredRecord {
	t.Helper()

	records := []schema.CustomerRecord{
		customerFixture("a", dateOf(2024, time.January, 1), dateOf(2024, time.March, 1), 20.0, "active"),
		customerFixture("b", dateOf(2024, time.January, 1), dateOf(2024, time.April, 1), 35.0, "cancelled"),
		customerFixture("c", dateOf(2024, time.February, 1), dateOf(2024, time.May, 1), 15.0, "active"),
	}
	records[1].PlanTier = "premium"
	records[2].PlanTier = "standard"

	engineered, warnings := EngineerFeatures(records)
	require.Empty(t, warnings)
	return engineered
}

// TestFitEncoderSortedCodes verifies codes are assigned in sorted value
// order, so the mapping is deterministic across runs.
func TestFitEncoderSortedCodes(t *testing.T) {
	encoder, err := FitEncoder(engineeredFixtures(t), "cancelled")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"basic": 0, "premium": 1, "standard": 2}, encoder.Columns[schema.ColPlanTier])
	assert.Equal(t, map[string]int{"mobile": 0}, encoder.Columns[schema.ColDeviceType])
}

// TestFitEncoderMissingPositive rejects a positive label nobody carries.
func TestFitEncoderMissingPositive(t *testing.T) {
	_, err := FitEncoder(engineeredFixtures(t), "churned")
	assert.Error(t, err)
}

// TestEncoderApply checks the encoded layout and labels.
func TestEncoderApply(t *testing.T) {
	engineered := engineeredFixtures(t)
	encoder, err := FitEncoder(engineered, "cancelled")
	require.NoError(t, err)

	dataset, err := encoder.Apply(engineered)
	require.NoError(t, err)

	wantColumns := len(schema.NumericColumns) + len(schema.CategoricalColumns)
	assert.Len(t, dataset.Columns, wantColumns)
	require.Len(t, dataset.Records, 3)

	for _, r := range dataset.Records {
		assert.Len(t, r.Features, wantColumns)
	}

	assert.Equal(t, 0, dataset.Records[0].Label)
	assert.Equal(t, 1, dataset.Records[1].Label)

	// plan_tier codes land in the categorical section in fitted order.
	planIdx := dataset.ColumnIndex(schema.ColPlanTier)
	require.GreaterOrEqual(t, planIdx, 0)
	assert.Equal(t, 0.0, dataset.Records[0].Features[planIdx])
	assert.Equal(t, 1.0, dataset.Records[1].Features[planIdx])
	assert.Equal(t, 2.0, dataset.Records[2].Features[planIdx])
	assert.True(t, dataset.Categorical[schema.ColPlanTier])
	assert.False(t, dataset.Categorical[schema.ColRevenue])
}

// TestEncoderUnknownCategory confirms unseen values fail loudly instead of
// extending the fitted mapping.
func TestEncoderUnknownCategory(t *testing.T) {
	engineered := engineeredFixtures(t)
	encoder, err := FitEncoder(engineered, "cancelled")
	require.NoError(t, err)

	stranger := engineered[0]
	stranger.PlanTier = "enterprise"

	_, err = encoder.Apply([]schema.EngineeredRecord{stranger})
	var unknownErr *UnknownCategoryError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, schema.ColPlanTier, unknownErr.Column)
	assert.Equal(t, "enterprise", unknownErr.Value)
}

// TestEncodeLabelUnknown rejects label values never observed at fit time.
func TestEncodeLabelUnknown(t *testing.T) {
	encoder, err := FitEncoder(engineeredFixtures(t), "cancelled")
	require.NoError(t, err)

	_, err = encoder.EncodeLabel("paused")
	var unknownErr *UnknownCategoryError
	assert.True(t, errors.As(err, &unknownErr))

	code, err := encoder.EncodeLabel("cancelled")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = encoder.EncodeLabel("active")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
