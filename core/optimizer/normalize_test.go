package optimizer

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNormalize_FitsOnFirstMatrix(t *testing.T) {
	procs := mat.NewDense(2, 2, []float64{
		1, 5,
		3, 5,
	})
	slots := mat.NewDense(2, 2, []float64{
		2, 9,
		7, 5,
	})
	pn, sn := Normalize(procs, slots)
	want := mat.NewDense(2, 2, []float64{0, 0, 1, 0})
	if !mat.EqualApprox(pn, want, 1e-12) {
		t.Fatalf("unexpected procedures %v", mat.Formatted(pn))
	}
	wantSlots := mat.NewDense(2, 2, []float64{0.5, 4, 3, 0})
	if !mat.EqualApprox(sn, wantSlots, 1e-12) {
		t.Fatalf("unexpected slots %v", mat.Formatted(sn))
	}
	if procs.At(1, 0) != 3 || slots.At(1, 0) != 7 {
		t.Fatalf("inputs modified")
	}
}

func TestNormalize_FlatColumnKeepsOffset(t *testing.T) {
	procs := mat.NewDense(2, 2, []float64{
		1, 30,
		2, 30,
	})
	slots := mat.NewDense(1, 2, []float64{3, 60})
	pn, sn := Normalize(procs, slots)
	if got := mat.Col(nil, 1, pn); got[0] != 0 || got[1] != 0 {
		t.Fatalf("flat column not zeroed on fitted side: %v", got)
	}
	want := mat.NewDense(1, 2, []float64{2, 30})
	if !mat.EqualApprox(sn, want, 1e-12) {
		t.Fatalf("unexpected slots %v", mat.Formatted(sn))
	}
}
