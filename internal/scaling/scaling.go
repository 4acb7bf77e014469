// Package scaling normalizes raw radar moments into the unit interval so
// that different moments can be combined.
package scaling

import (
	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
)

// Scale maps g onto [0, 1] using the clipping limits configured for t. The
// output has identical shape and exactly the input mask.
func Scale(g *polar.Grid2, t moment.Type, cfg moment.Config) (*polar.Grid2, error) {
	lim, err := cfg.Limits(t)
	if err != nil {
		return nil, err
	}
	span := lim.Max - lim.Min
	out := g.Clone()
	for i, v := range out.Data {
		if out.Mask[i] {
			continue
		}
		s := (v - lim.Min) / span
		if s < 0 {
			s = 0
		} else if s > 1 {
			s = 1
		}
		out.Data[i] = s
	}
	return out, nil
}

// ScaleField scales one sweep of the named raw or filtered field.
func ScaleField(vol *polar.Volume, sweep int, id polar.FieldID, cfg moment.Config) (*polar.Grid2, error) {
	g, err := vol.SweepField(sweep, id)
	if err != nil {
		return nil, err
	}
	return Scale(g, id.Moment, cfg)
}
