package optimizer

import (
	"math"
	"testing"
	"time"

	"github.com/kilianp07/procsched/core/model"
	"gonum.org/v1/gonum/mat"
)

func TestEncodeProcedures(t *testing.T) {
	diag := int64(7)
	missingDiag := int64(99)
	snap := model.Snapshot{
		CPTCodes:  []model.CPTCode{{ID: 1, DurationMinutes: 45, RequiresSpecialist: true}},
		Diagnoses: []model.Diagnosis{{ID: 7, Severity: 5}},
		Patients:  []model.Patient{{ID: 1, DateOfBirth: testNow.AddDate(0, 0, -36525)}},
	}
	procs := []model.ProcedureRequest{
		{ID: 1, PatientID: 1, CPTCodeID: 1, DiagnosisID: &diag, Priority: 2, OrderedAt: testNow.Add(-47 * time.Hour)},
		{ID: 2, PatientID: 1, CPTCodeID: 42, Priority: 1},
		{ID: 3, PatientID: 2, CPTCodeID: 1, DiagnosisID: &missingDiag, Priority: 4, OrderedAt: testNow.Add(-72 * time.Hour)},
	}
	m, rows := encodeProcedures(procs, newCatalog(snap, model.NewCategorySet()), testNow)
	if rows[0] != 0 || rows[1] != -1 || rows[2] != 1 {
		t.Fatalf("unexpected rows %v", rows)
	}
	if r, _ := m.Dims(); r != 2 {
		t.Fatalf("expected 2 encoded rows got %d", r)
	}
	first := mat.Row(nil, 0, m)
	want := []float64{2, 45, 1, 5, 100, 1}
	for i := range want {
		if math.Abs(first[i]-want[i]) > 1e-9 {
			t.Fatalf("dim %d: expected %v got %v", i, want[i], first[i])
		}
	}
	second := mat.Row(nil, 1, m)
	if second[dimSeverity] != defaultSeverity || second[dimAge] != 0 || second[dimRecency] != 3 {
		t.Fatalf("unexpected defaults %v", second)
	}
}

func TestEncodeProcedures_NoKnownCPT(t *testing.T) {
	m, rows := encodeProcedures([]model.ProcedureRequest{{ID: 1, CPTCodeID: 5}}, newCatalog(model.Snapshot{}, nil), testNow)
	if m != nil || rows[0] != -1 {
		t.Fatalf("expected nil matrix, got %v %v", m, rows)
	}
}

func TestEncodeSlots(t *testing.T) {
	snap := model.Snapshot{Resources: []model.Resource{{ID: 1, Type: "X-Ray Room"}, {ID: 2, Type: "Lab"}}}
	c := newCatalog(snap, model.NewCategorySet(model.DefaultSpecialistCategories...))
	slots := []model.TimeSlot{slot(1, 1, day(2), 9, 0, 60), slot(2, 2, day(0), 9, 0, 15), slot(3, 9, day(1), 9, 0, 30)}
	m := encodeSlots(slots, c, testNow)
	want := [][]float64{
		{3, 60, 1, 3, 50, 2},
		{3, 15, 0, 3, 50, 0},
		{3, 30, 0, 3, 50, 1},
	}
	for i, row := range want {
		got := mat.Row(nil, i, m)
		for j := range row {
			if got[j] != row[j] {
				t.Fatalf("slot %d dim %d: expected %v got %v", i, j, row[j], got[j])
			}
		}
	}
}
