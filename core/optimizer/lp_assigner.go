package optimizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Errors returned by LPAssigner.AssignStrict.
var (
	ErrProblemTooLarge = errors.New("assignment problem exceeds lp_max_pairs")
	ErrFractional      = errors.New("lp solution is not integral")
)

// similarityBudget bounds the total similarity bonus of a solution. It is
// below the smallest score gap between two placements with priorities in
// [1,5], so similarity only breaks ties.
const similarityBudget = 1e-3

// LPAssigner solves the request/slot matching exactly as a linear program
// whose objective is the run score, using similarity to break ties. It
// falls back to GreedyAssigner when the solver fails.
type LPAssigner struct {
	MaxPairs int
	Fallback Assigner
}

// NewLPAssigner returns an LP assigner falling back to the greedy one.
func NewLPAssigner(maxPairs int) LPAssigner {
	return LPAssigner{MaxPairs: maxPairs, Fallback: GreedyAssigner{}}
}

type pair struct{ proc, slot int }

// pairWeight is the score gain of placing a procedure of the given
// priority, up to the common 1/total factor, plus a similarity bonus.
func pairWeight(priority int, sim, simWeight float64) float64 {
	p := float64(priority)
	if p < 1 {
		p = 1
	}
	return 1 + unscheduledPenaltyWeight/p + simWeight*sim
}

// solveAssignmentLP maximises the total weight of chosen pairs with every
// procedure and slot used at most once. The problem is passed in standard
// form with one slack column per constraint.
func solveAssignmentLP(weights []float64, procRow, slotRow []int, nProc, nSlot int) ([]float64, error) {
	m := nProc + nSlot
	n := len(weights) + m
	c := make([]float64, n)
	A := mat.NewDense(m, n, nil)
	for k, w := range weights {
		c[k] = -w
		A.Set(procRow[k], k, 1)
		A.Set(nProc+slotRow[k], k, 1)
	}
	b := make([]float64, m)
	basic := make([]int, m)
	for r := 0; r < m; r++ {
		A.Set(r, len(weights)+r, 1)
		b[r] = 1
		basic[r] = len(weights) + r
	}
	_, x, err := lp.Simplex(c, A, b, 1e-10, basic)
	if err != nil {
		return nil, err
	}
	return x[:len(weights)], nil
}

// lpSolve can be replaced in tests to simulate solver failures.
var lpSolve = solveAssignmentLP

// AssignStrict solves the LP without falling back.
func (a LPAssigner) AssignStrict(p Problem) (Assignment, error) {
	out := unplaced(len(p.Procedures))
	var pairs []pair
	for i := range p.Procedures {
		if p.Rows[i] < 0 {
			continue
		}
		for j := range p.Slots {
			if p.Feasible(i, j) {
				pairs = append(pairs, pair{i, j})
			}
		}
	}
	if len(pairs) == 0 {
		return out, nil
	}
	if a.MaxPairs > 0 && len(pairs) > a.MaxPairs {
		return nil, fmt.Errorf("%w: %d pairs", ErrProblemTooLarge, len(pairs))
	}

	procIdx := map[int]int{}
	slotIdx := map[int]int{}
	for _, pr := range pairs {
		if _, ok := procIdx[pr.proc]; !ok {
			procIdx[pr.proc] = len(procIdx)
		}
		if _, ok := slotIdx[pr.slot]; !ok {
			slotIdx[pr.slot] = len(slotIdx)
		}
	}
	// At most min(procedures, slots) pairs are chosen, each with |sim| <= 1.
	simWeight := similarityBudget / float64(2*min(len(procIdx), len(slotIdx)))
	weights := make([]float64, len(pairs))
	procRow := make([]int, len(pairs))
	slotRow := make([]int, len(pairs))
	for k, pr := range pairs {
		procRow[k] = procIdx[pr.proc]
		slotRow[k] = slotIdx[pr.slot]
		weights[k] = pairWeight(p.Procedures[pr.proc].Priority, p.Similarity.At(p.Rows[pr.proc], pr.slot), simWeight)
	}

	x, err := lpSolve(weights, procRow, slotRow, len(procIdx), len(slotIdx))
	if err != nil {
		return nil, err
	}
	used := make([]bool, len(p.Slots))
	for k, v := range x {
		if v > 1e-6 && v < 1-1e-6 {
			return nil, ErrFractional
		}
		if math.Round(v) != 1 {
			continue
		}
		pr := pairs[k]
		if out[pr.proc] >= 0 || used[pr.slot] {
			return nil, ErrFractional
		}
		out[pr.proc] = pr.slot
		used[pr.slot] = true
	}
	return out, nil
}

// Assign implements Assigner.
func (a LPAssigner) Assign(p Problem) Assignment {
	out, err := a.AssignStrict(p)
	if err != nil {
		fb := a.Fallback
		if fb == nil {
			fb = GreedyAssigner{}
		}
		return fb.Assign(p)
	}
	return out
}
