package filters

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tkarjala/radproc/internal/polar"
)

// SavGol builds a Savitzky-Golay polynomial smoother along the range axis:
// each gate is replaced by the value of a least-squares polynomial of the
// given order fitted over a centered window of the given length. The window
// shrinks asymmetrically at the ends of the ray, so any window length >=
// order+1 is accepted. Cells whose window holds too few valid samples come
// out NaN.
func SavGol(window, order int) Func {
	if window < order+1 {
		window = order + 1
	}
	lo, hi := windowSpan(window)
	return func(g *polar.Grid2) *polar.Grid2 {
		out := polar.NewGrid2(g.Rays, g.Gates)
		// Weights depend only on the gate position and the NaN pattern of
		// the window. Cache the common gap-free case per gate index.
		weightCache := make(map[int][]float64)
		offsets := make([]float64, 0, window)
		values := make([]float64, 0, window)
		for r := 0; r < g.Rays; r++ {
			for c := 0; c < g.Gates; c++ {
				start := c - lo
				if start < 0 {
					start = 0
				}
				end := c + hi
				if end > g.Gates-1 {
					end = g.Gates - 1
				}
				offsets = offsets[:0]
				values = values[:0]
				gapFree := true
				for j := start; j <= end; j++ {
					v := g.Raw(r, j)
					if math.IsNaN(v) {
						gapFree = false
						continue
					}
					offsets = append(offsets, float64(j-c))
					values = append(values, v)
				}
				if len(values) <= order {
					out.Set(r, c, math.NaN())
					continue
				}
				var w []float64
				if gapFree {
					if cached, ok := weightCache[c]; ok {
						w = cached
					} else {
						w = fitWeights(offsets, order)
						weightCache[c] = append([]float64(nil), w...)
					}
				} else {
					w = fitWeights(offsets, order)
				}
				if w == nil {
					out.Set(r, c, math.NaN())
					continue
				}
				sum := 0.0
				for i, wi := range w {
					sum += wi * values[i]
				}
				out.Set(r, c, sum)
			}
		}
		return out
	}
}

// fitWeights returns w such that dot(w, y) is the value at offset zero of
// the least-squares polynomial of the given order through (offsets, y).
func fitWeights(offsets []float64, order int) []float64 {
	n := len(offsets)
	cols := order + 1
	x := mat.NewDense(n, cols, nil)
	for i, t := range offsets {
		p := 1.0
		for j := 0; j < cols; j++ {
			x.Set(i, j, p)
			p *= t
		}
	}
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil
	}
	var pinv mat.Dense
	pinv.Mul(&inv, x.T())
	// Row zero evaluates the fitted polynomial at the window center.
	return mat.Row(nil, 0, &pinv)
}
