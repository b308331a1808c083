package aggregate

import (
	"math"
	"sort"

	"github.com/peterdir/bedrock-usage/internal/models"
)

// BuildCostMatrix projects the per-user per-model costs into a dense, sorted
// matrix with row and column totals. Every cell is rounded before the totals
// are computed, so the totals agree exactly with what is rendered.
func BuildCostMatrix(usage *models.AggregatedUsage) *models.CostMatrix {
	users := make([]string, 0, len(usage.UserModelCosts))
	modelSet := map[string]struct{}{}
	for user, costs := range usage.UserModelCosts {
		users = append(users, user)
		for model := range costs {
			modelSet[model] = struct{}{}
		}
	}
	sort.Strings(users)

	modelIDs := make([]string, 0, len(modelSet))
	for model := range modelSet {
		modelIDs = append(modelIDs, model)
	}
	sort.Strings(modelIDs)

	matrix := &models.CostMatrix{
		Users:             users,
		Models:            modelIDs,
		ModelDisplayNames: make(map[string]string, len(modelIDs)),
		Cells:             make([][]float64, len(users)),
		UserTotals:        make(map[string]float64, len(users)),
		ModelTotals:       make(map[string]float64, len(modelIDs)),
		DateRange:         usage.DateRange,
		TotalCost:         usage.TotalCost,
	}

	for _, model := range modelIDs {
		if name, ok := usage.ModelDisplayNames[model]; ok {
			matrix.ModelDisplayNames[model] = name
		}
	}

	for i, user := range users {
		row := make([]float64, len(modelIDs))
		var rowTotal float64
		for j, model := range modelIDs {
			cell := roundCost(usage.UserModelCosts[user][model])
			row[j] = cell
			rowTotal += cell
		}
		matrix.Cells[i] = row
		matrix.UserTotals[user] = roundCost(rowTotal)
	}

	for j, model := range modelIDs {
		var columnTotal float64
		for i := range users {
			columnTotal += matrix.Cells[i][j]
		}
		matrix.ModelTotals[model] = roundCost(columnTotal)
	}

	return matrix
}

// roundCost rounds to the matrix rendering precision (4 decimal places).
func roundCost(v float64) float64 {
	shift := math.Pow10(models.MatrixPrecision)
	return math.Round(v*shift) / shift
}
