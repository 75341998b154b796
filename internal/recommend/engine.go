// Package recommend maps a parsed intent onto the snack catalog and sizes the
// suggested portions for the user's goal.
package recommend

import (
	"fmt"
	"math"
	"math/big"

	"github.com/vbonduro/nutribot/internal/catalog"
	"github.com/vbonduro/nutribot/internal/domain"
)

const (
	// DefaultWeightKg is assumed when the user did not mention a weight.
	DefaultWeightKg = 70

	baselineProteinPerKg = 0.8
	activeProteinPerKg   = 1.4
)

// Engine is safe for concurrent use; it only reads the catalog.
type Engine struct {
	catalog *catalog.Catalog
}

func New(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Recommend builds a recommendation for in. It never fails; missing fields fall
// back to a 70 kg weight, the maintain goal and the default suggestions.
func (e *Engine) Recommend(in domain.Intent) domain.Recommendation {
	weight, defaulted := DefaultWeightKg, true
	if in.Weight != nil {
		weight, defaulted = *in.Weight, false
	}

	goal := in.Goal
	if goal == "" {
		goal = domain.GoalMaintain
	}

	candidates, match := selectCandidates(e.catalog.All(), in.Craving)
	multiplier := goal.Multiplier()
	note := fmt.Sprintf("Portion adjusted for goal: %s", goal)

	items := make([]domain.Suggestion, 0, len(candidates))
	for _, s := range candidates {
		items = append(items, domain.Suggestion{
			SnackID: s.ID,
			Name:    s.Name,
			Kcal:    int(math.Round(float64(s.Kcal) * multiplier)),
			Protein: roundTenth(s.Protein * multiplier),
			Note:    note,
		})
	}

	return domain.Recommendation{
		Weight:          weight,
		WeightDefaulted: defaulted,
		BaselineProtein: int(math.Round(float64(weight) * baselineProteinPerKg)),
		ActiveProtein:   int(math.Round(float64(weight) * activeProteinPerKg)),
		Goal:            goal,
		Craving:         in.Craving,
		Match:           match,
		Items:           items,
	}
}

// roundTenth rounds the exact value of v to one decimal, halves rounding up.
// v*10 is computed without float rounding, so 3.4499999999999997 gives 3.4.
func roundTenth(v float64) float64 {
	x := new(big.Float).SetPrec(256).SetFloat64(math.Abs(v))
	x.Mul(x, big.NewFloat(10))
	x.Add(x, big.NewFloat(0.5))
	n, _ := x.Int64()
	return math.Copysign(float64(n)/10, v)
}
