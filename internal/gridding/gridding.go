// Package gridding interpolates scattered melting layer edge points onto a
// regular Cartesian grid with a thin-plate spline, the minimal bending
// energy surface through the points. Best-effort visualization aid: the
// only contract is shape and domain conformance.
package gridding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Config describes the target grid.
type Config struct {
	// ExtentKm is the half-width of the square domain.
	ExtentKm float64
	// StepKm is the grid resolution.
	StepKm float64
	// CornerValue anchors the four domain corners so the spline stays
	// bounded away from the data.
	CornerValue float64
}

// DefaultConfig returns a [-100, 100] km domain at 2 km resolution.
func DefaultConfig() Config {
	return Config{ExtentKm: 100, StepKm: 2, CornerValue: 0}
}

// Surface is a height field on a regular x-y grid. Z is indexed [yi][xi].
type Surface struct {
	X []float64
	Y []float64
	Z [][]float64
}

type spline struct {
	px, py  []float64
	weights []float64 // n radial weights then 1, x, y affine terms
}

// thin-plate radial basis.
func tps(r2 float64) float64 {
	if r2 <= 0 {
		return 0
	}
	return r2 * math.Log(math.Sqrt(r2))
}

func fitSpline(xs, ys, vs []float64) (*spline, error) {
	n := len(xs)
	if n < 3 {
		return nil, fmt.Errorf("thin-plate spline needs at least 3 points, got %d", n)
	}
	size := n + 3
	a := mat.NewDense(size, size, nil)
	b := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := xs[i] - xs[j]
			dy := ys[i] - ys[j]
			a.Set(i, j, tps(dx*dx+dy*dy))
		}
		a.Set(i, n, 1)
		a.Set(i, n+1, xs[i])
		a.Set(i, n+2, ys[i])
		a.Set(n, i, 1)
		a.Set(n+1, i, xs[i])
		a.Set(n+2, i, ys[i])
		b.SetVec(i, vs[i])
	}
	w := mat.NewVecDense(size, nil)
	if err := w.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("thin-plate spline system: %w", err)
	}
	return &spline{
		px:      xs,
		py:      ys,
		weights: w.RawVector().Data,
	}, nil
}

func (s *spline) at(x, y float64) float64 {
	n := len(s.px)
	v := s.weights[n] + s.weights[n+1]*x + s.weights[n+2]*y
	for i := 0; i < n; i++ {
		dx := x - s.px[i]
		dy := y - s.py[i]
		v += s.weights[i] * tps(dx*dx+dy*dy)
	}
	return v
}

// Interpolate fits a thin-plate spline through the edge points (xs, ys in
// kilometers, hs heights) plus the four anchored domain corners, and
// evaluates it over the configured grid. NaN points are excluded; exact
// duplicate positions keep their first occurrence.
func Interpolate(xs, ys, hs []float64, cfg Config) (*Surface, error) {
	if len(xs) != len(ys) || len(xs) != len(hs) {
		return nil, fmt.Errorf("point slices differ in length: %d, %d, %d", len(xs), len(ys), len(hs))
	}
	type key struct{ x, y float64 }
	seen := make(map[key]bool)
	var px, py, pv []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) || math.IsNaN(hs[i]) {
			continue
		}
		k := key{xs[i], ys[i]}
		if seen[k] {
			continue
		}
		seen[k] = true
		px = append(px, xs[i])
		py = append(py, ys[i])
		pv = append(pv, hs[i])
	}
	e := cfg.ExtentKm
	for _, c := range [][2]float64{{-e, -e}, {-e, e}, {e, -e}, {e, e}} {
		k := key{c[0], c[1]}
		if seen[k] {
			continue
		}
		px = append(px, c[0])
		py = append(py, c[1])
		pv = append(pv, cfg.CornerValue)
	}
	sp, err := fitSpline(px, py, pv)
	if err != nil {
		return nil, err
	}
	if cfg.StepKm <= 0 {
		return nil, fmt.Errorf("grid step must be positive, got %g", cfg.StepKm)
	}
	var axis []float64
	for v := -e; v <= e+1e-9; v += cfg.StepKm {
		axis = append(axis, v)
	}
	out := &Surface{
		X: axis,
		Y: append([]float64(nil), axis...),
		Z: make([][]float64, len(axis)),
	}
	for yi, y := range out.Y {
		row := make([]float64, len(out.X))
		for xi, x := range out.X {
			row[xi] = sp.at(x, y)
		}
		out.Z[yi] = row
	}
	return out, nil
}
