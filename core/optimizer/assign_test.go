package optimizer

import (
	"testing"

	"github.com/kilianp07/procsched/core/model"
	"gonum.org/v1/gonum/mat"
)

func problem(procs []model.ProcedureRequest, slots []model.TimeSlot, sim []float64, codes []model.CPTCode, specialist map[int64]bool) Problem {
	rows := make([]int, len(procs))
	cpt := map[int64]model.CPTCode{}
	for _, c := range codes {
		cpt[c.ID] = c
	}
	n := 0
	for i, p := range procs {
		if _, ok := cpt[p.CPTCodeID]; ok {
			rows[i] = n
			n++
		} else {
			rows[i] = -1
		}
	}
	var m *mat.Dense
	if n > 0 {
		m = mat.NewDense(n, len(slots), sim)
	}
	return Problem{
		Procedures:        procs,
		Rows:              rows,
		Slots:             slots,
		Similarity:        m,
		CPT:               cpt,
		SpecialistCapable: func(id int64) bool { return specialist[id] },
	}
}

func TestGreedyAssigner_PrefersMostSimilar(t *testing.T) {
	p := problem(
		[]model.ProcedureRequest{{ID: 1, CPTCodeID: 1, Priority: 1}},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 30), slot(2, 1, day(0), 9, 0, 30)},
		[]float64{0.2, 0.9},
		[]model.CPTCode{{ID: 1, DurationMinutes: 30}},
		nil,
	)
	got := GreedyAssigner{}.Assign(p)
	if got[0] != 1 {
		t.Fatalf("expected slot index 1 got %d", got[0])
	}
}

func TestGreedyAssigner_TiesKeepSlotOrder(t *testing.T) {
	p := problem(
		[]model.ProcedureRequest{{ID: 1, CPTCodeID: 1, Priority: 1}},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 30), slot(2, 1, day(0), 9, 0, 30), slot(3, 1, day(0), 10, 0, 30)},
		[]float64{0.5, 0.7, 0.7},
		[]model.CPTCode{{ID: 1, DurationMinutes: 30}},
		nil,
	)
	if got := (GreedyAssigner{}).Assign(p); got[0] != 1 {
		t.Fatalf("expected slot index 1 got %d", got[0])
	}
}

func TestGreedyAssigner_SkipsShortSlot(t *testing.T) {
	p := problem(
		[]model.ProcedureRequest{{ID: 1, CPTCodeID: 1, Priority: 1}},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 15), slot(2, 1, day(0), 9, 0, 60)},
		[]float64{1, 0.1},
		[]model.CPTCode{{ID: 1, DurationMinutes: 45}},
		nil,
	)
	if got := (GreedyAssigner{}).Assign(p); got[0] != 1 {
		t.Fatalf("short slot selected: %v", got)
	}
}

func TestGreedyAssigner_SpecialistOnlyNonSpecialistSlots(t *testing.T) {
	p := problem(
		[]model.ProcedureRequest{{ID: 1, CPTCodeID: 1, Priority: 1}},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 60), slot(2, 2, day(0), 9, 0, 60)},
		[]float64{1, 1},
		[]model.CPTCode{{ID: 1, DurationMinutes: 30, RequiresSpecialist: true}},
		map[int64]bool{},
	)
	if got := (GreedyAssigner{}).Assign(p); got[0] != -1 {
		t.Fatalf("expected unplaced got %v", got)
	}
}

func TestGreedyAssigner_ClaimsAreFinal(t *testing.T) {
	p := problem(
		[]model.ProcedureRequest{
			{ID: 1, CPTCodeID: 1, Priority: 1},
			{ID: 2, CPTCodeID: 9, Priority: 2},
			{ID: 3, CPTCodeID: 1, Priority: 3},
		},
		[]model.TimeSlot{slot(1, 1, day(0), 8, 0, 30), slot(2, 1, day(0), 9, 0, 30)},
		[]float64{0.9, 0.8, 0.9, 0.8},
		[]model.CPTCode{{ID: 1, DurationMinutes: 30}},
		nil,
	)
	got := GreedyAssigner{}.Assign(p)
	if got[0] != 0 || got[1] != -1 || got[2] != 1 {
		t.Fatalf("unexpected assignment %v", got)
	}
}
