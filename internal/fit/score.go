package fit

import (
	"math"

	"careermatch/internal/types"
)

// Weight split between the two requirement groups.
const (
	mustHaveTotal   = 70.0
	niceToHaveTotal = 30.0
)

// ComputeFitScore derives the fit score deterministically from the match
// statuses, overriding whatever number the model proposed. Each group's
// weight is split evenly across its requirements; a partial match earns half
// weight.
func ComputeFitScore(mustHave, niceToHave []types.RequirementMatch) int {
	score := sectionScore(mustHave, mustHaveTotal) + sectionScore(niceToHave, niceToHaveTotal)

	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func sectionScore(items []types.RequirementMatch, total float64) float64 {
	if len(items) == 0 {
		return 0
	}
	weight := total / float64(len(items))
	var sum float64
	for _, item := range items {
		switch item.Status {
		case types.StatusMatch:
			sum += weight
		case types.StatusPartial:
			sum += 0.5 * weight
		}
	}
	return sum
}
