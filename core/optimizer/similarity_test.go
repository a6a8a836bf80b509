package optimizer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSimilarity_Cosine(t *testing.T) {
	procs := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 0,
	})
	slots := mat.NewDense(3, 2, []float64{
		2, 0,
		1, 1,
		0, 0,
	})
	sim := Similarity(procs, slots, 1)
	want := []float64{1, 1 / math.Sqrt2, 0, 0, 0, 0}
	got := mat.NewDense(2, 3, want)
	if !mat.EqualApprox(sim, got, 1e-12) {
		t.Fatalf("unexpected similarity %v", mat.Formatted(sim))
	}
}

func TestSimilarity_ParallelMatchesSequential(t *testing.T) {
	snap := randomSnapshot(3, 60, 80)
	cat := newCatalog(snap, nil)
	pm, _ := encodeProcedures(snap.Procedures, cat, testNow)
	pn, sn := Normalize(pm, encodeSlots(snap.Slots, cat, testNow))
	seq := Similarity(pn, sn, 1)
	par := Similarity(pn, sn, 8)
	if !mat.Equal(seq, par) {
		t.Fatalf("parallel similarity differs from sequential")
	}
}
