// Package filters provides mask-aware spatial filters over polar grids and
// NaN-aware filtering of 1D profiles.
//
// 2D filters follow the sweep geometry: the azimuth axis wraps (rays are
// circular), the range axis clamps to the nearest edge gate. Filters never
// run across sweep boundaries; FilterField applies them sweep by sweep.
package filters

import (
	"fmt"
	"math"
	"sort"

	"github.com/tkarjala/radproc/internal/polar"
)

// Func is a numeric 2D filter. Input grids carry NaN at invalid cells;
// implementations skip NaN samples and emit NaN where no estimate exists.
type Func func(g *polar.Grid2) *polar.Grid2

// ShapeError reports a filter whose output shape diverged from its input.
type ShapeError struct {
	WantRays, WantGates int
	GotRays, GotGates   int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("filter output shape %dx%d, want %dx%d",
		e.GotRays, e.GotGates, e.WantRays, e.WantGates)
}

// Options control mask handling around a filter invocation.
type Options struct {
	// Fill replaces masked cells with a constant before filtering, so the
	// filter sees gap-free input. Without it masked cells enter as NaN.
	Fill *float64
	// NullMask, when set, becomes the output mask instead of the input's
	// own mask. Length must match the grid. This mirrors filtering one
	// moment under another moment's validity mask.
	NullMask []bool
}

// Apply runs fn over g and restores the mask on the result. The output mask
// is the null mask (input mask by default) plus any cell the filter could
// not estimate. A fully masked grid is returned as-is without filtering.
func Apply(g *polar.Grid2, fn Func, opts Options) (*polar.Grid2, error) {
	if g.AllMasked() {
		return g.Clone(), nil
	}
	work := g.Clone()
	for i, m := range work.Mask {
		if m {
			if opts.Fill != nil {
				work.Data[i] = *opts.Fill
			} else {
				work.Data[i] = math.NaN()
			}
			work.Mask[i] = false
		}
	}
	out := fn(work)
	if out == nil || !g.SameShape(out) {
		gr, gg := -1, -1
		if out != nil {
			gr, gg = out.Rays, out.Gates
		}
		return nil, &ShapeError{WantRays: g.Rays, WantGates: g.Gates, GotRays: gr, GotGates: gg}
	}
	null := opts.NullMask
	if null == nil {
		null = g.Mask
	}
	if len(null) != len(out.Mask) {
		return nil, fmt.Errorf("null mask has %d cells, grid has %d", len(null), len(out.Mask))
	}
	res := out.Clone()
	for i := range res.Data {
		if null[i] || math.IsNaN(res.Data[i]) {
			res.Mask[i] = true
		}
	}
	return res, nil
}

// window spans lo cells before and hi cells after the center, lo+hi+1 == w.
func windowSpan(w int) (lo, hi int) {
	if w < 1 {
		w = 1
	}
	return (w - 1) / 2, w / 2
}

func wrapRay(ray, n int) int {
	ray %= n
	if ray < 0 {
		ray += n
	}
	return ray
}

func clampGate(gate, n int) int {
	if gate < 0 {
		return 0
	}
	if gate >= n {
		return n - 1
	}
	return gate
}

// Median builds a median filter with a window of rangeBins gates by rays
// rays. NaN samples are skipped; an all-NaN window yields NaN.
func Median(rangeBins, rays int) Func {
	loG, hiG := windowSpan(rangeBins)
	loR, hiR := windowSpan(rays)
	return func(g *polar.Grid2) *polar.Grid2 {
		out := polar.NewGrid2(g.Rays, g.Gates)
		buf := make([]float64, 0, (loG+hiG+1)*(loR+hiR+1))
		for r := 0; r < g.Rays; r++ {
			for c := 0; c < g.Gates; c++ {
				buf = buf[:0]
				for dr := -loR; dr <= hiR; dr++ {
					rr := wrapRay(r+dr, g.Rays)
					for dc := -loG; dc <= hiG; dc++ {
						v := g.Raw(rr, clampGate(c+dc, g.Gates))
						if !math.IsNaN(v) {
							buf = append(buf, v)
						}
					}
				}
				if len(buf) == 0 {
					out.Set(r, c, math.NaN())
					continue
				}
				sort.Float64s(buf)
				out.Set(r, c, buf[len(buf)/2])
			}
		}
		return out
	}
}

// Uniform builds a moving-average filter with a window of rangeBins gates
// by rays rays. NaN samples are skipped.
func Uniform(rangeBins, rays int) Func {
	loG, hiG := windowSpan(rangeBins)
	loR, hiR := windowSpan(rays)
	return func(g *polar.Grid2) *polar.Grid2 {
		out := polar.NewGrid2(g.Rays, g.Gates)
		for r := 0; r < g.Rays; r++ {
			for c := 0; c < g.Gates; c++ {
				sum, n := 0.0, 0
				for dr := -loR; dr <= hiR; dr++ {
					rr := wrapRay(r+dr, g.Rays)
					for dc := -loG; dc <= hiG; dc++ {
						v := g.Raw(rr, clampGate(c+dc, g.Gates))
						if !math.IsNaN(v) {
							sum += v
							n++
						}
					}
				}
				if n == 0 {
					out.Set(r, c, math.NaN())
					continue
				}
				out.Set(r, c, sum/float64(n))
			}
		}
		return out
	}
}
