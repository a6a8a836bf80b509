package optimizer

import (
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Similarity returns the cosine similarity of every row of procs against
// every row of slots. Pairs involving a zero vector score 0. With workers
// above 1 rows are computed concurrently; each row is written by a single
// goroutine so the result does not depend on scheduling.
func Similarity(procs, slots *mat.Dense, workers int) *mat.Dense {
	np, _ := procs.Dims()
	ns, _ := slots.Dims()
	slotNorms := make([]float64, ns)
	for j := range slotNorms {
		slotNorms[j] = mat.Norm(slots.RowView(j), 2)
	}
	out := mat.NewDense(np, ns, nil)
	row := func(i int) {
		p := procs.RowView(i)
		pn := mat.Norm(p, 2)
		if pn == 0 {
			return
		}
		for j := 0; j < ns; j++ {
			if slotNorms[j] == 0 {
				continue
			}
			out.Set(i, j, mat.Dot(p, slots.RowView(j))/(pn*slotNorms[j]))
		}
	}

	if workers < 2 || np < 2 {
		for i := 0; i < np; i++ {
			row(i)
		}
		return out
	}
	if workers > np {
		workers = np
	}
	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				row(i)
			}
		}()
	}
	for i := 0; i < np; i++ {
		rows <- i
	}
	close(rows)
	wg.Wait()
	return out
}
