package optimizer

import (
	"math"

	"github.com/kilianp07/procsched/core/model"
)

// unscheduledPenaltyWeight scales the priority penalty against the
// scheduling rate.
const unscheduledPenaltyWeight = 0.2

// Score rates a run with total filtered procedures of which unscheduled
// received no slot:
//
//	rate    = (total - len(unscheduled)) / total
//	penalty = sum(1/priority over unscheduled) / total
//	score   = clamp(rate - 0.2*penalty, 0, 1)
//
// A run with no procedures scores 0.
func Score(total int, unscheduled []model.ProcedureRequest) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(total-len(unscheduled)) / float64(total)
	var penalty float64
	for _, p := range unscheduled {
		penalty += 1 / float64(p.Priority)
	}
	penalty /= float64(total)
	score := rate - unscheduledPenaltyWeight*penalty
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}
