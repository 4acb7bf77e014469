package polar

import "math"

const (
	earthRadiusM = 6371000.0
	// Standard refraction model: beams bend as if the earth had 4/3 its
	// actual radius.
	keFactor = 4.0 / 3.0
)

// Sweep is one elevation scan. Azimuths has one entry per ray, Ranges one
// entry per gate center; gate counts may differ between sweeps.
type Sweep struct {
	Number       int
	ElevationDeg float64
	Azimuths     []float64 // degrees clockwise from north
	Ranges       []float64 // meters from the radar
}

// NumRays returns the ray count of the sweep.
func (s *Sweep) NumRays() int { return len(s.Azimuths) }

// NumGates returns the gate count of the sweep.
func (s *Sweep) NumGates() int { return len(s.Ranges) }

// GateAltitudes returns the altitude above sea level of each gate center
// along a ray. For a PPI sweep the vector is shared by all rays.
func (s *Sweep) GateAltitudes(siteAltM float64) []float64 {
	out := make([]float64, len(s.Ranges))
	sinEl := math.Sin(s.ElevationDeg * math.Pi / 180)
	re := keFactor * earthRadiusM
	for i, r := range s.Ranges {
		h := math.Sqrt(r*r+re*re+2*r*re*sinEl) - re
		out[i] = h + siteAltM
	}
	return out
}

// GateXY returns the Cartesian gate positions of one ray in meters east and
// north of the radar, projected along the refracted beam.
func (s *Sweep) GateXY(ray int, siteAltM float64) (xs, ys []float64) {
	az := s.Azimuths[ray] * math.Pi / 180
	sinAz, cosAz := math.Sin(az), math.Cos(az)
	cosEl := math.Cos(s.ElevationDeg * math.Pi / 180)
	alts := s.GateAltitudes(siteAltM)
	re := keFactor * earthRadiusM
	xs = make([]float64, len(s.Ranges))
	ys = make([]float64, len(s.Ranges))
	for i, r := range s.Ranges {
		h := alts[i] - siteAltM
		// Great-circle ground distance to the gate.
		arg := r * cosEl / (re + h)
		if arg > 1 {
			arg = 1
		}
		ground := re * math.Asin(arg)
		xs[i] = ground * sinAz
		ys[i] = ground * cosAz
	}
	return xs, ys
}
