// Package synth builds synthetic polar volumes with a designed melting
// layer band, for development and end-to-end testing without real scan
// files.
package synth

import (
	"math/rand"

	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
)

// Params describe the synthetic scan.
type Params struct {
	Sweeps    int
	Rays      int
	Gates     int
	GateStepM float64
	// BandBottomM and BandTopM bound the melting layer in altitude.
	BandBottomM float64
	BandTopM    float64
	SiteAltM    float64
	Seed        int64
	// Clutter adds near-ground ZDR spikes on every 37th ray.
	Clutter bool
}

// DefaultParams returns a compact two-sweep scan with a band at 1.5-3 km.
func DefaultParams() Params {
	return Params{
		Sweeps:      2,
		Rays:        360,
		Gates:       120,
		GateStepM:   120,
		BandBottomM: 1500,
		BandTopM:    3000,
		SiteAltM:    100,
		Seed:        1,
		Clutter:     true,
	}
}

// Steep elevations keep the altitude resolution per gate coarse enough for
// the band to span a workable number of gates on short rays.
var elevations = []float64{30, 45, 20, 60, 12}

// Volume generates the scan: dry snow above the band, rain below, and the
// classic bright band signature inside it (enhanced ZH and ZDR, depressed
// RHO).
func Volume(p Params) *polar.Volume {
	rng := rand.New(rand.NewSource(p.Seed))
	sweeps := make([]*polar.Sweep, p.Sweeps)
	for i := range sweeps {
		az := make([]float64, p.Rays)
		for r := range az {
			az[r] = float64(r) * 360 / float64(p.Rays)
		}
		rg := make([]float64, p.Gates)
		for g := range rg {
			rg[g] = float64(g+1) * p.GateStepM
		}
		sweeps[i] = &polar.Sweep{
			Number:       i,
			ElevationDeg: elevations[i%len(elevations)],
			Azimuths:     az,
			Ranges:       rg,
		}
	}
	vol := polar.NewVolume(polar.Site{Lat: 60.0, Lon: 25.0, AltM: p.SiteAltM}, sweeps)

	fields := map[moment.Type]*polar.Field{
		moment.ZH:  {Units: "dBZ", Sweeps: make([]*polar.Grid2, p.Sweeps)},
		moment.ZDR: {Units: "dB", Sweeps: make([]*polar.Grid2, p.Sweeps)},
		moment.RHO: {Units: "1", Sweeps: make([]*polar.Grid2, p.Sweeps)},
	}
	for si, s := range vol.Sweeps {
		alts := s.GateAltitudes(p.SiteAltM)
		zh := polar.NewGrid2(p.Rays, p.Gates)
		zdr := polar.NewGrid2(p.Rays, p.Gates)
		rho := polar.NewGrid2(p.Rays, p.Gates)
		for r := 0; r < p.Rays; r++ {
			for g := 0; g < p.Gates; g++ {
				alt := alts[g]
				inBand := alt >= p.BandBottomM && alt <= p.BandTopM
				zhV := 24 - 6*alt/5000 + rng.NormFloat64()*0.3
				zdrV := 0.5 + rng.NormFloat64()*0.05
				rhoV := 0.99 + rng.NormFloat64()*0.002
				if inBand {
					zhV += 5
					zdrV = 2.7 + rng.NormFloat64()*0.05
					rhoV = 0.92 + rng.NormFloat64()*0.002
				}
				if p.Clutter && r%37 == 0 && g < 6 {
					zdrV += 5
				}
				if rhoV > 1 {
					rhoV = 1
				}
				zh.Set(r, g, zhV)
				zdr.Set(r, g, zdrV)
				rho.Set(r, g, rhoV)
			}
		}
		// A small blind sector, as produced by beam blockage.
		for r := 100; r < 103 && r < p.Rays; r++ {
			for g := 0; g < 4 && g < p.Gates; g++ {
				zh.SetMasked(r, g)
				zdr.SetMasked(r, g)
				rho.SetMasked(r, g)
			}
		}
		fields[moment.ZH].Sweeps[si] = zh
		fields[moment.ZDR].Sweeps[si] = zdr
		fields[moment.RHO].Sweeps[si] = rho
	}
	for t, f := range fields {
		// Sweep shapes are constructed to match; the registry re-checks.
		if err := vol.AddField(polar.Raw(t), f, true); err != nil {
			panic(err)
		}
	}
	return vol
}
