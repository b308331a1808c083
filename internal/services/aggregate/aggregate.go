// Package aggregate folds pre-grouped usage records into the nested cost and
// usage summaries the dashboard renders, and projects them into the dense
// user x model cost matrix.
package aggregate

import (
	"github.com/peterdir/bedrock-usage/internal/models"
	"github.com/peterdir/bedrock-usage/internal/services/identity"
	"github.com/peterdir/bedrock-usage/internal/services/pricing"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const tokensPerMillion = 1_000_000

// Engine aggregates raw grouped records using the identity and pricing
// resolvers. Aggregation is a pure, single-pass computation over the caller's
// own input snapshot; no locking is required.
type Engine struct {
	pricing *pricing.Resolver
	users   *identity.Resolver
}

// NewEngine creates an aggregation engine.
func NewEngine(priceResolver *pricing.Resolver, userResolver *identity.Resolver) *Engine {
	return &Engine{
		pricing: priceResolver,
		users:   userResolver,
	}
}

// Aggregate folds the records into a full usage summary for the window.
// Records with an unknown identity or model are excluded and counted in the
// diagnostics. An empty post-filter result yields the benign EmptyResult
// error, distinguishing "nothing happened" from "something failed".
func (e *Engine) Aggregate(records []models.RawUsageRecord, window models.TimeRange) (*models.AggregatedUsage, error) {
	usage := &models.AggregatedUsage{
		UserInvocations:     map[string]int64{},
		DailyTrend:          map[string]int64{},
		ModelUsage:          map[string]int64{},
		UserTokens:          map[string]models.TokenTotals{},
		UserCosts:           map[string]float64{},
		ModelTokens:         map[string]models.TokenTotals{},
		ModelCosts:          map[string]float64{},
		ModelInvocations:    map[string]int64{},
		DailyCosts:          map[string]float64{},
		UserDailyCosts:      map[string]map[string]float64{},
		UserModelCosts:      map[string]map[string]float64{},
		UserModelDailyCosts: map[string]map[string]map[string]float64{},
		ModelDisplayNames:   map[string]string{},
		DateRange:           window.String(),
	}

	pricingMissesBefore := e.pricing.Misses()

	for _, record := range records {
		// Rows missing their identity or model cannot be attributed.
		if record.Identity == models.UnknownKey || record.ModelID == models.UnknownKey {
			usage.Diagnostics.UnknownFiltered++
			continue
		}

		user := e.users.Canonicalize(record.Identity)
		model := pricing.Canonicalize(record.ModelID)

		totalInput := record.InputTokens + record.CacheWriteTokens
		totalOutput := record.OutputTokens

		price, _ := e.pricing.Price(record.ModelID)
		cost := float64(totalInput)/tokensPerMillion*price.Input +
			float64(totalOutput)/tokensPerMillion*price.Output

		usage.UserInvocations[user] += record.Invocations
		usage.ModelUsage[model] += record.Invocations
		usage.DailyTrend[record.Day] += record.Invocations

		userTokens := usage.UserTokens[user]
		userTokens.Input += totalInput
		userTokens.Output += totalOutput
		usage.UserTokens[user] = userTokens
		usage.UserCosts[user] += cost

		modelTokens := usage.ModelTokens[model]
		modelTokens.Input += totalInput
		modelTokens.Output += totalOutput
		usage.ModelTokens[model] = modelTokens
		usage.ModelCosts[model] += cost
		usage.ModelInvocations[model] += record.Invocations

		usage.DailyCosts[record.Day] += cost

		addNested(usage.UserModelCosts, user, model, cost)
		addNested(usage.UserDailyCosts, user, record.Day, cost)
		addNested2(usage.UserModelDailyCosts, user, model, record.Day, cost)

		usage.TotalEvents += record.Invocations
	}

	if len(usage.UserInvocations) == 0 {
		return nil, models.NewEmptyResultError(window.String())
	}

	for model := range usage.ModelCosts {
		usage.ModelDisplayNames[model] = pricing.DisplayName(model)
	}

	// Grand totals recomputed from the per-user maps; cross-checks the
	// incremental folding above.
	for _, tokens := range usage.UserTokens {
		usage.TotalInputTokens += tokens.Input
		usage.TotalOutputTokens += tokens.Output
	}
	for _, cost := range usage.UserCosts {
		usage.TotalCost += cost
	}

	usage.Diagnostics.PricingMisses = int(e.pricing.Misses() - pricingMissesBefore)
	if usage.Diagnostics.UnknownFiltered > 0 {
		fiberlog.Debugf("aggregation excluded %d unattributable records", usage.Diagnostics.UnknownFiltered)
	}

	return usage, nil
}

func addNested(m map[string]map[string]float64, outer, inner string, v float64) {
	if m[outer] == nil {
		m[outer] = map[string]float64{}
	}
	m[outer][inner] += v
}

func addNested2(m map[string]map[string]map[string]float64, outer, middle, inner string, v float64) {
	if m[outer] == nil {
		m[outer] = map[string]map[string]float64{}
	}
	addNested(m[outer], middle, inner, v)
}
