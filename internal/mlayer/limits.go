package mlayer

import (
	"math"

	"github.com/tkarjala/radproc/internal/polar"
)

// Find returns the index of the value in v closest to target, skipping NaN
// entries. Ties resolve to the first such index. The vector need not be
// sorted; beam geometry can make height vectors non-monotonic. Returns -1
// when v holds no valid value.
func Find(v []float64, target float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, x := range v {
		if math.IsNaN(x) {
			continue
		}
		d := math.Abs(x - target)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// LimitsConfig holds the per-gate boundary condition and the edge
// post-processing parameters.
type LimitsConfig struct {
	// MLILevel is the indicator level a gate must exceed.
	MLILevel float64
	// RhoLevel is the companion correlation ceiling.
	RhoLevel float64
	// HydroRhoLevel and HydroMinGates define the no-hydrometeor test: a ray
	// with fewer than HydroMinGates gates of RHO above HydroRhoLevel gets
	// no edge.
	HydroRhoLevel float64
	HydroMinGates int
	// OutlierM is the deviation-over-MAD cutoff for edge outliers.
	OutlierM float64
	// SmoothWindow is the uniform window for edge altitude re-smoothing.
	SmoothWindow int
}

// DefaultLimitsConfig returns the operational edge extraction parameters.
func DefaultLimitsConfig() LimitsConfig {
	return LimitsConfig{
		MLILevel:      2.0,
		RhoLevel:      0.975,
		HydroRhoLevel: 0.97,
		HydroMinGates: 2,
		OutlierM:      2.0,
		SmoothWindow:  30,
	}
}

// Profile is a melting layer boundary over the rays of one sweep: a gate
// index and an altitude per ray, NaN where the ray has no boundary.
type Profile struct {
	Gate []float64
	Alt  []float64
}

// NewProfile allocates an all-NaN profile over rays rays.
func NewProfile(rays int) Profile {
	p := Profile{Gate: make([]float64, rays), Alt: make([]float64, rays)}
	for i := range p.Gate {
		p.Gate[i] = math.NaN()
		p.Alt[i] = math.NaN()
	}
	return p
}

// Valid counts rays with a boundary.
func (p Profile) Valid() int {
	n := 0
	for _, g := range p.Gate {
		if !math.IsNaN(g) {
			n++
		}
	}
	return n
}

// Limits scans each ray of the indicator for gates satisfying the boundary
// condition mli > MLILevel && rho < RhoLevel. The bottom edge is the first
// qualifying gate from the ground, the top edge the last; rays without a
// qualifying gate get NaN. Pass the smoothed indicator and filtered RHO for
// refined limits, or the raw fields for raw limits; the scan is the same.
func Limits(mli, rho *polar.Grid2, heights []float64, cfg LimitsConfig) (bottom, top Profile) {
	bottom = NewProfile(mli.Rays)
	top = NewProfile(mli.Rays)
	for r := 0; r < mli.Rays; r++ {
		first, last := -1, -1
		for c := 0; c < mli.Gates; c++ {
			if mli.IsMasked(r, c) || rho.IsMasked(r, c) {
				continue
			}
			if mli.Raw(r, c) > cfg.MLILevel && rho.Raw(r, c) < cfg.RhoLevel {
				if first < 0 {
					first = c
				}
				last = c
			}
		}
		if first < 0 {
			continue
		}
		bottom.Gate[r] = float64(first)
		top.Gate[r] = float64(last)
		if first < len(heights) {
			bottom.Alt[r] = heights[first]
		}
		if last < len(heights) {
			top.Alt[r] = heights[last]
		}
	}
	return bottom, top
}

// DropNoHydrometeors clears the edge on rays whose RHO profile never
// reaches HydroRhoLevel on at least HydroMinGates gates: without
// hydrometeors there is no melting layer to bound.
func DropNoHydrometeors(p Profile, rho *polar.Grid2, cfg LimitsConfig) Profile {
	out := cloneProfile(p)
	for r := 0; r < rho.Rays; r++ {
		n := 0
		for c := 0; c < rho.Gates; c++ {
			if !rho.IsMasked(r, c) && rho.Raw(r, c) > cfg.HydroRhoLevel {
				n++
			}
		}
		if n < cfg.HydroMinGates {
			out.Gate[r] = math.NaN()
			out.Alt[r] = math.NaN()
		}
	}
	return out
}

func cloneProfile(p Profile) Profile {
	return Profile{
		Gate: append([]float64(nil), p.Gate...),
		Alt:  append([]float64(nil), p.Alt...),
	}
}
