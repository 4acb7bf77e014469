// Package clutter removes ground clutter and non-meteorological echoes from
// polar volume moments. Both policies write into the filtered variants of
// the affected moments, creating them from the raw fields when absent.
package clutter

import (
	"fmt"

	"github.com/tkarjala/radproc/internal/filters"
	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
)

// Config holds the geometry of the threshold+median ground clutter filter.
type Config struct {
	// HeightBins is how many near-ground range bins the median filter sees.
	HeightBins int
	// CropBins limits replacement to the lowest bins. The bin at index
	// CropBins is treated as known-good and never replaced.
	CropBins int
	// Window is the median filter window (range bins by rays).
	Window moment.Window
	// RhoLimit is the correlation floor for non-met rejection.
	RhoLimit float64
}

// DefaultConfig returns the operational ground clutter parameters.
func DefaultConfig() Config {
	return Config{
		HeightBins: 35,
		CropBins:   20,
		Window:     moment.Window{RangeBins: 22, Rays: 2},
		RhoLimit:   0.8,
	}
}

// clutterMoments are the moments the threshold+median filter operates on.
var clutterMoments = []moment.Type{moment.ZDR, moment.KDP}

// MedianThreshold runs the threshold+median ground clutter filter: the
// near-ground bins are median filtered under the ZH validity mask, and only
// cells whose original value exceeds the per-moment clutter threshold are
// replaced with the filtered value. Bin 0 is always replaced; bins at or
// beyond CropBins never are.
func MedianThreshold(vol *polar.Volume, mc moment.Config, cfg Config) error {
	zh, err := vol.Field(polar.Raw(moment.ZH))
	if err != nil {
		return fmt.Errorf("ground clutter filter needs ZH: %w", err)
	}
	med := filters.Median(cfg.Window.RangeBins, cfg.Window.Rays)
	for _, t := range clutterMoments {
		if !vol.HasField(polar.Raw(t)) {
			continue
		}
		threshold, err := mc.ClutterThreshold(t)
		if err != nil {
			return err
		}
		fill, err := mc.Fill(t)
		if err != nil {
			return err
		}
		id, err := vol.EnsureFiltered(t)
		if err != nil {
			return err
		}
		f, err := vol.Field(id)
		if err != nil {
			return err
		}
		out := make([]*polar.Grid2, len(f.Sweeps))
		for si, g := range f.Sweeps {
			view := headGates(g, cfg.HeightBins)
			nullmask := headGates(zh.Sweeps[si], cfg.HeightBins)
			fltrd, err := filters.Apply(view, med, filters.Options{
				Fill:     &fill,
				NullMask: nullmask.Mask,
			})
			if err != nil {
				return fmt.Errorf("clutter filter %s sweep %d: %w", t, si, err)
			}
			res := g.Clone()
			crop := cfg.CropBins
			if crop > g.Gates {
				crop = g.Gates
			}
			for r := 0; r < g.Rays; r++ {
				for c := 0; c < crop; c++ {
					replace := c == 0 || (!g.IsMasked(r, c) && g.Raw(r, c) > threshold)
					if !replace || fltrd.IsMasked(r, c) {
						continue
					}
					res.Set(r, c, fltrd.Raw(r, c))
				}
			}
			out[si] = res
		}
		if err := vol.AddFieldLike(id, id, out, true); err != nil {
			return err
		}
	}
	return nil
}

// nonMetMoments are masked wherever the correlation coefficient is low.
var nonMetMoments = []moment.Type{moment.ZH, moment.ZDR, moment.KDP}

// RejectNonMet masks the filtered variants of ZH, ZDR and KDP wherever RHO
// falls below rhoLimit. The filtered RHO is preferred when present.
func RejectNonMet(vol *polar.Volume, rhoLimit float64) error {
	rhoID := polar.Filtered(moment.RHO)
	if !vol.HasField(rhoID) {
		rhoID = polar.Raw(moment.RHO)
	}
	rho, err := vol.Field(rhoID)
	if err != nil {
		return fmt.Errorf("non-met rejection needs RHO: %w", err)
	}
	for _, t := range nonMetMoments {
		if !vol.HasField(polar.Raw(t)) {
			continue
		}
		id, err := vol.EnsureFiltered(t)
		if err != nil {
			return err
		}
		f, err := vol.Field(id)
		if err != nil {
			return err
		}
		out := make([]*polar.Grid2, len(f.Sweeps))
		for si, g := range f.Sweeps {
			res := g.Clone()
			rg := rho.Sweeps[si]
			for i, v := range rg.Data {
				if !rg.Mask[i] && v < rhoLimit {
					res.Mask[i] = true
				}
			}
			out[si] = res
		}
		if err := vol.AddFieldLike(id, id, out, true); err != nil {
			return err
		}
	}
	return nil
}

// MedianFields median-filters each moment that has a configured window into
// its filtered variant, under the raw ZH validity mask.
func MedianFields(vol *polar.Volume, mc moment.Config) error {
	zhID := polar.Raw(moment.ZH)
	if !vol.HasField(zhID) {
		return fmt.Errorf("median filtering needs ZH for its validity mask")
	}
	for t, w := range mc.MedianWindows {
		if !vol.HasField(polar.Raw(t)) {
			continue
		}
		fill, err := mc.Fill(t)
		if err != nil {
			return err
		}
		id, err := vol.EnsureFiltered(t)
		if err != nil {
			return err
		}
		err = filters.FilterField(vol, id, id, filters.Median(w.RangeBins, w.Rays),
			filters.FieldOptions{Fill: &fill, NullMaskFrom: &zhID})
		if err != nil {
			return err
		}
	}
	return nil
}

// headGates views the first n range bins of g as an independent grid copy.
func headGates(g *polar.Grid2, n int) *polar.Grid2 {
	if n > g.Gates {
		n = g.Gates
	}
	out := polar.NewGrid2(g.Rays, n)
	for r := 0; r < g.Rays; r++ {
		for c := 0; c < n; c++ {
			if g.IsMasked(r, c) {
				out.SetMasked(r, c)
			} else {
				out.Set(r, c, g.Raw(r, c))
			}
		}
	}
	return out
}
