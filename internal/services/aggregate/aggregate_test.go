package aggregate

import (
	"testing"
	"time"

	"github.com/peterdir/bedrock-usage/internal/models"
	"github.com/peterdir/bedrock-usage/internal/services/identity"
	"github.com/peterdir/bedrock-usage/internal/services/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngine(
		pricing.NewResolver(nil),
		identity.NewResolver(map[string][]string{"peterdir": {"aider", "dirkcli"}}),
	)
}

func testWindow() models.TimeRange {
	return models.TimeRange{
		Start: time.Date(2026, 1, 19, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC),
	}
}

func haikuRecord() models.RawUsageRecord {
	return models.RawUsageRecord{
		Identity:     "arn:aws:sts::123456789012:assumed-role/bedrock-aider/i-0abc",
		ModelID:      "us.anthropic.claude-3-haiku-20240307-v1:0",
		Day:          "2026-01-20 00:00:00.000",
		Invocations:  10,
		InputTokens:  1000,
		OutputTokens: 500,
	}
}

func TestAggregateSingleRecord(t *testing.T) {
	usage, err := testEngine().Aggregate([]models.RawUsageRecord{haikuRecord()}, testWindow())
	require.NoError(t, err)

	const model = "anthropic.claude-3-haiku-20240307-v1:0"

	assert.Equal(t, int64(10), usage.UserInvocations["peterdir"])
	assert.Equal(t, int64(10), usage.ModelUsage[model])
	assert.Equal(t, int64(10), usage.ModelInvocations[model])
	assert.Equal(t, int64(10), usage.DailyTrend["2026-01-20 00:00:00.000"])
	assert.Equal(t, int64(10), usage.TotalEvents)

	assert.Equal(t, int64(1000), usage.UserTokens["peterdir"].Input)
	assert.Equal(t, int64(500), usage.UserTokens["peterdir"].Output)
	assert.Equal(t, int64(1000), usage.TotalInputTokens)
	assert.Equal(t, int64(500), usage.TotalOutputTokens)

	// 1000 input at $0.25/M plus 500 output at $1.25/M.
	assert.InDelta(t, 0.000875, usage.UserCosts["peterdir"], 1e-12)
	assert.InDelta(t, 0.000875, usage.ModelCosts[model], 1e-12)
	assert.InDelta(t, 0.000875, usage.TotalCost, 1e-12)
	assert.InDelta(t, 0.000875, usage.UserModelCosts["peterdir"][model], 1e-12)
	assert.InDelta(t, 0.000875, usage.UserModelDailyCosts["peterdir"][model]["2026-01-20 00:00:00.000"], 1e-12)

	assert.Equal(t, "Claude 3 Haiku", usage.ModelDisplayNames[model])
	assert.Equal(t, "2026-01-19 to 2026-01-26", usage.DateRange)
	assert.Equal(t, 0, usage.Diagnostics.PricingMisses)
}

func TestAggregateCacheWriteTokensCountAsInput(t *testing.T) {
	record := haikuRecord()
	record.CacheWriteTokens = 200

	usage, err := testEngine().Aggregate([]models.RawUsageRecord{record}, testWindow())
	require.NoError(t, err)

	assert.Equal(t, int64(1200), usage.TotalInputTokens)
	assert.InDelta(t, 1200.0/1e6*0.25+500.0/1e6*1.25, usage.TotalCost, 1e-12)
}

func TestAggregateFoldsAliasesTogether(t *testing.T) {
	a := haikuRecord()
	b := haikuRecord()
	b.Identity = "arn:aws:iam::123456789012:user/bedrock-dirkcli"
	b.Day = "2026-01-21 00:00:00.000"

	usage, err := testEngine().Aggregate([]models.RawUsageRecord{a, b}, testWindow())
	require.NoError(t, err)

	require.Len(t, usage.UserInvocations, 1)
	assert.Equal(t, int64(20), usage.UserInvocations["peterdir"])
	assert.Len(t, usage.UserDailyCosts["peterdir"], 2)
}

func TestAggregateTotalsCrossCheck(t *testing.T) {
	records := []models.RawUsageRecord{
		haikuRecord(),
		{
			Identity:     "arn:aws:iam::123456789012:user/alice",
			ModelID:      "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
			Day:          "2026-01-21 00:00:00.000",
			Invocations:  3,
			InputTokens:  250_000,
			OutputTokens: 40_000,
		},
		{
			Identity:         "arn:aws:iam::123456789012:user/alice",
			ModelID:          "anthropic.claude-3-haiku-20240307-v1:0",
			Day:              "2026-01-22 00:00:00.000",
			Invocations:      5,
			InputTokens:      9_000,
			CacheWriteTokens: 1_000,
			OutputTokens:     2_000,
		},
	}

	usage, err := testEngine().Aggregate(records, testWindow())
	require.NoError(t, err)

	var userCostSum, modelCostSum, dailyCostSum float64
	for _, c := range usage.UserCosts {
		userCostSum += c
	}
	for _, c := range usage.ModelCosts {
		modelCostSum += c
	}
	for _, c := range usage.DailyCosts {
		dailyCostSum += c
	}
	assert.InDelta(t, usage.TotalCost, userCostSum, 1e-9)
	assert.InDelta(t, usage.TotalCost, modelCostSum, 1e-9)
	assert.InDelta(t, usage.TotalCost, dailyCostSum, 1e-9)

	var events int64
	for _, n := range usage.ModelUsage {
		events += n
	}
	assert.Equal(t, usage.TotalEvents, events)
	assert.Equal(t, int64(1_000+250_000+9_000+1_000), usage.TotalInputTokens)
	assert.Equal(t, int64(42_500), usage.TotalOutputTokens)
}

func TestAggregateFiltersUnattributableRecords(t *testing.T) {
	noIdentity := haikuRecord()
	noIdentity.Identity = models.UnknownKey
	noModel := haikuRecord()
	noModel.ModelID = models.UnknownKey

	usage, err := testEngine().Aggregate(
		[]models.RawUsageRecord{haikuRecord(), noIdentity, noModel}, testWindow())
	require.NoError(t, err)

	assert.Equal(t, int64(10), usage.TotalEvents)
	assert.Equal(t, 2, usage.Diagnostics.UnknownFiltered)
}

func TestAggregateEmptyResult(t *testing.T) {
	_, err := testEngine().Aggregate(nil, testWindow())
	require.Error(t, err)

	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.True(t, appErr.IsEmptyResult())
	assert.Equal(t, 200, appErr.GetStatusCode())
	assert.Contains(t, appErr.Message, "2026-01-19 to 2026-01-26")
}

func TestAggregatePricingMiss(t *testing.T) {
	record := haikuRecord()
	record.ModelID = "mistral.mystery-model-v9"

	usage, err := testEngine().Aggregate([]models.RawUsageRecord{record}, testWindow())
	require.NoError(t, err)

	// Unpriced usage still aggregates; only its cost is zero.
	assert.Equal(t, int64(10), usage.ModelUsage["mistral.mystery-model-v9"])
	assert.Equal(t, 0.0, usage.TotalCost)
	assert.Equal(t, 1, usage.Diagnostics.PricingMisses)
}
