package optimizer

import "gonum.org/v1/gonum/mat"

// Normalize fits a per-column min-max scale on fit and applies it to both
// fit and other, returning new matrices. A column with no spread in fit
// keeps a unit scale: it maps to 0 in fit and to its offset from the fitted
// value in other. Values of other outside the fitted range are not clipped.
func Normalize(fit, other *mat.Dense) (*mat.Dense, *mat.Dense) {
	_, cols := fit.Dims()
	lo := make([]float64, cols)
	span := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, fit)
		lo[j] = col[0]
		hi := col[0]
		for _, v := range col[1:] {
			if v < lo[j] {
				lo[j] = v
			}
			if v > hi {
				hi = v
			}
		}
		span[j] = hi - lo[j]
	}
	return applyScale(fit, lo, span), applyScale(other, lo, span)
}

func applyScale(m *mat.Dense, lo, span []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(_, j int, v float64) float64 {
		if span[j] == 0 {
			return v - lo[j]
		}
		return (v - lo[j]) / span[j]
	}, m)
	return out
}
