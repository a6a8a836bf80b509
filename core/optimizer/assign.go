package optimizer

import (
	"sort"

	"github.com/kilianp07/procsched/core/model"
	"gonum.org/v1/gonum/mat"
)

// Problem is the input handed to an Assigner.
type Problem struct {
	// Procedures in processing order, most urgent first.
	Procedures []model.ProcedureRequest
	// Rows maps each procedure to its row in Similarity, -1 when the
	// procedure has no known CPT code.
	Rows  []int
	Slots []model.TimeSlot
	// Similarity is nil when no procedure could be encoded.
	Similarity *mat.Dense
	CPT        map[int64]model.CPTCode
	// SpecialistCapable reports whether a resource may host specialist
	// procedures.
	SpecialistCapable func(resourceID int64) bool
}

// Assignment maps each procedure index to a slot index, -1 when unplaced.
type Assignment []int

// Assigner decides which slot, if any, every procedure receives. Returned
// assignments never reuse a slot and only contain feasible pairs.
type Assigner interface {
	Assign(p Problem) Assignment
}

// Feasible reports whether slot j can host procedure i, ignoring claims.
func (p Problem) Feasible(i, j int) bool {
	code, ok := p.CPT[p.Procedures[i].CPTCodeID]
	if !ok {
		return false
	}
	s := p.Slots[j]
	if s.DurationMinutes() < code.DurationMinutes {
		return false
	}
	if code.RequiresSpecialist && !p.SpecialistCapable(s.ResourceID) {
		return false
	}
	return true
}

func unplaced(n int) Assignment {
	a := make(Assignment, n)
	for i := range a {
		a[i] = -1
	}
	return a
}

// GreedyAssigner walks procedures in order and gives each the most similar
// feasible slot not claimed by an earlier procedure. Claims are final.
type GreedyAssigner struct{}

// Assign implements Assigner.
func (GreedyAssigner) Assign(p Problem) Assignment {
	out := unplaced(len(p.Procedures))
	claimed := make([]bool, len(p.Slots))
	for i := range p.Procedures {
		if p.Rows[i] < 0 {
			continue
		}
		for _, j := range rankSlots(p.Similarity, p.Rows[i]) {
			if claimed[j] || !p.Feasible(i, j) {
				continue
			}
			claimed[j] = true
			out[i] = j
			break
		}
	}
	return out
}

// rankSlots orders slot indices by descending similarity for one row. Ties
// keep slot order.
func rankSlots(sim *mat.Dense, row int) []int {
	scores := sim.RawRowView(row)
	idx := make([]int, len(scores))
	for j := range idx {
		idx[j] = j
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx
}
