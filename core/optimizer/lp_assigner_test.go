package optimizer

import (
	"errors"
	"testing"

	"github.com/kilianp07/procsched/core/model"
)

// specialistClash has a greedy trap: the urgent routine procedure takes the
// only specialist room, leaving the specialist procedure without a slot.
func specialistClash() Problem {
	return problem(
		[]model.ProcedureRequest{
			{ID: 1, CPTCodeID: 1, Priority: 1},
			{ID: 2, CPTCodeID: 2, Priority: 2},
		},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 30), slot(2, 2, day(0), 8, 0, 30)},
		[]float64{0.9, 0.1, 0.5, 0.5},
		[]model.CPTCode{{ID: 1, DurationMinutes: 30}, {ID: 2, DurationMinutes: 30, RequiresSpecialist: true}},
		map[int64]bool{1: true},
	)
}

func TestLPAssigner_BeatsGreedyOnClash(t *testing.T) {
	p := specialistClash()
	if g := (GreedyAssigner{}).Assign(p); g[1] != -1 {
		t.Fatalf("expected greedy to miss procedure 2, got %v", g)
	}
	got, err := NewLPAssigner(0).AssignStrict(p)
	if err != nil {
		t.Fatalf("AssignStrict: %v", err)
	}
	if got[0] != 1 || got[1] != 0 {
		t.Fatalf("unexpected assignment %v", got)
	}
}

func TestLPAssigner_NoFeasiblePairs(t *testing.T) {
	p := problem(
		[]model.ProcedureRequest{{ID: 1, CPTCodeID: 1, Priority: 1}},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 15)},
		[]float64{1},
		[]model.CPTCode{{ID: 1, DurationMinutes: 60}},
		nil,
	)
	got, err := NewLPAssigner(0).AssignStrict(p)
	if err != nil || got[0] != -1 {
		t.Fatalf("expected unplaced without error, got %v %v", got, err)
	}
}

func TestLPAssigner_SolverErrorFallback(t *testing.T) {
	old := lpSolve
	lpSolve = func([]float64, []int, []int, int, int) ([]float64, error) { return nil, errors.New("fail") }
	defer func() { lpSolve = old }()

	p := specialistClash()
	got := NewLPAssigner(0).Assign(p)
	want := GreedyAssigner{}.Assign(p)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected greedy fallback %v got %v", want, got)
		}
	}
}

func TestLPAssigner_FractionalRejected(t *testing.T) {
	old := lpSolve
	lpSolve = func(w []float64, _, _ []int, _, _ int) ([]float64, error) {
		x := make([]float64, len(w))
		for i := range x {
			x[i] = 0.5
		}
		return x, nil
	}
	defer func() { lpSolve = old }()

	if _, err := NewLPAssigner(0).AssignStrict(specialistClash()); !errors.Is(err, ErrFractional) {
		t.Fatalf("expected ErrFractional got %v", err)
	}
}

func TestLPAssigner_TooLarge(t *testing.T) {
	_, err := NewLPAssigner(1).AssignStrict(specialistClash())
	if !errors.Is(err, ErrProblemTooLarge) {
		t.Fatalf("expected ErrProblemTooLarge got %v", err)
	}
}

func TestPairWeight(t *testing.T) {
	if got := pairWeight(2, 0.5, 0.01); got != 1+0.2/2+0.01*0.5 {
		t.Fatalf("pairWeight(2) = %v", got)
	}
	if got := pairWeight(0, 0, 0); got != 1.2 {
		t.Fatalf("priority below 1 not clamped: %v", got)
	}
}
