// Package mlayer computes the melting layer indicator and extracts the
// melting layer top and bottom boundaries from it.
package mlayer

import (
	"fmt"

	"github.com/tkarjala/radproc/internal/filters"
	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
	"github.com/tkarjala/radproc/internal/scaling"
)

// Indicator combines scaled differential reflectivity, scaled reflectivity
// and the correlation coefficient into the per-gate melting layer score
//
//	mli = 100 * zdr * zh * (1 - rho)
//
// element-wise. The output is masked wherever any input is masked.
func Indicator(zdrScaled, zhScaled, rho *polar.Grid2) (*polar.Grid2, error) {
	if !zdrScaled.SameShape(zhScaled) || !zdrScaled.SameShape(rho) {
		return nil, &filters.ShapeError{
			WantRays: zdrScaled.Rays, WantGates: zdrScaled.Gates,
			GotRays: rho.Rays, GotGates: rho.Gates,
		}
	}
	out := polar.NewGrid2(zdrScaled.Rays, zdrScaled.Gates)
	for i := range out.Data {
		if zdrScaled.Mask[i] || zhScaled.Mask[i] || rho.Mask[i] {
			out.Mask[i] = true
			continue
		}
		out.Data[i] = 100 * zdrScaled.Data[i] * zhScaled.Data[i] * (1 - rho.Data[i])
	}
	return out, nil
}

// AddIndicator computes the indicator for every sweep and registers it as
// the MLI field. The filtered ZDR and filtered RHO must already exist: the
// indicator is never derived from unfiltered inputs.
func AddIndicator(vol *polar.Volume, mc moment.Config) error {
	zdrID := polar.Filtered(moment.ZDR)
	rhoID := polar.Filtered(moment.RHO)
	for _, id := range []polar.FieldID{zdrID, rhoID} {
		if !vol.HasField(id) {
			return fmt.Errorf("indicator needs %s: median-filter the volume first", id)
		}
	}
	rho, err := vol.Field(rhoID)
	if err != nil {
		return err
	}
	grids := make([]*polar.Grid2, len(vol.Sweeps))
	for si := range vol.Sweeps {
		zhScaled, err := scaling.ScaleField(vol, si, polar.Raw(moment.ZH), mc)
		if err != nil {
			return err
		}
		zdrScaled, err := scaling.ScaleField(vol, si, zdrID, mc)
		if err != nil {
			return err
		}
		grids[si], err = Indicator(zdrScaled, zhScaled, rho.Sweeps[si])
		if err != nil {
			return fmt.Errorf("indicator sweep %d: %w", si, err)
		}
	}
	return vol.AddField(polar.Raw(moment.MLI), &polar.Field{
		Units:    "1",
		LongName: "Melting layer indicator",
		Sweeps:   grids,
	}, true)
}
