// Package polar holds the in-memory polar volume model: masked 2D grids per
// sweep, sweep geometry, and a typed field registry on the volume.
package polar

import "math"

// Grid2 is a masked 2D field over a single sweep, indexed (ray, gate).
// Mask shape always equals data shape; a true mask cell is invalid/missing.
type Grid2 struct {
	Rays  int
	Gates int
	Data  []float64
	Mask  []bool
}

// NewGrid2 allocates an unmasked zero grid.
func NewGrid2(rays, gates int) *Grid2 {
	return &Grid2{
		Rays:  rays,
		Gates: gates,
		Data:  make([]float64, rays*gates),
		Mask:  make([]bool, rays*gates),
	}
}

func (g *Grid2) idx(ray, gate int) int { return ray*g.Gates + gate }

// At returns the value at (ray, gate). Masked cells return NaN.
func (g *Grid2) At(ray, gate int) float64 {
	i := g.idx(ray, gate)
	if g.Mask[i] {
		return math.NaN()
	}
	return g.Data[i]
}

// Raw returns the stored value at (ray, gate) ignoring the mask.
func (g *Grid2) Raw(ray, gate int) float64 { return g.Data[g.idx(ray, gate)] }

// IsMasked reports whether (ray, gate) is invalid.
func (g *Grid2) IsMasked(ray, gate int) bool { return g.Mask[g.idx(ray, gate)] }

// Set stores v at (ray, gate) and clears the mask there.
func (g *Grid2) Set(ray, gate int, v float64) {
	i := g.idx(ray, gate)
	g.Data[i] = v
	g.Mask[i] = false
}

// SetMasked marks (ray, gate) invalid.
func (g *Grid2) SetMasked(ray, gate int) { g.Mask[g.idx(ray, gate)] = true }

// Clone deep-copies the grid.
func (g *Grid2) Clone() *Grid2 {
	out := &Grid2{Rays: g.Rays, Gates: g.Gates}
	out.Data = append([]float64(nil), g.Data...)
	out.Mask = append([]bool(nil), g.Mask...)
	return out
}

// SameShape reports whether o has identical dimensions.
func (g *Grid2) SameShape(o *Grid2) bool {
	return o != nil && g.Rays == o.Rays && g.Gates == o.Gates
}

// AllMasked reports whether every cell is invalid.
func (g *Grid2) AllMasked() bool {
	for _, m := range g.Mask {
		if !m {
			return false
		}
	}
	return true
}

// MaskAll marks the whole grid invalid.
func (g *Grid2) MaskAll() {
	for i := range g.Mask {
		g.Mask[i] = true
	}
}

// Filled returns a data copy with masked cells replaced by fill.
func (g *Grid2) Filled(fill float64) []float64 {
	out := append([]float64(nil), g.Data...)
	for i, m := range g.Mask {
		if m {
			out[i] = fill
		}
	}
	return out
}

// ApplyMask ORs mask into the grid mask. The slice length must match.
func (g *Grid2) ApplyMask(mask []bool) {
	for i, m := range mask {
		if m {
			g.Mask[i] = true
		}
	}
}

// Ray returns the (value, masked) profile of one ray as a NaN-coded slice.
func (g *Grid2) Ray(ray int) []float64 {
	out := make([]float64, g.Gates)
	for j := 0; j < g.Gates; j++ {
		out[j] = g.At(ray, j)
	}
	return out
}
