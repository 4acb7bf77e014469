package filters

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tkarjala/radproc/internal/polar"
)

// FieldOptions control volume-level filtering.
type FieldOptions struct {
	// Fill replaces masked cells before filtering (see Options.Fill).
	Fill *float64
	// NullMaskFrom takes the output mask from another field, sweep by
	// sweep, instead of the source field's own mask.
	NullMaskFrom *polar.FieldID
}

// FilterField applies fn to the src field sweep by sweep and stores the
// result under dst with metadata copied from src. Sweeps are independent,
// so they are filtered in parallel; reassembly order is fixed by sweep
// number.
func FilterField(vol *polar.Volume, src, dst polar.FieldID, fn Func, opts FieldOptions) error {
	f, err := vol.Field(src)
	if err != nil {
		return err
	}
	var nullField *polar.Field
	if opts.NullMaskFrom != nil {
		nullField, err = vol.Field(*opts.NullMaskFrom)
		if err != nil {
			return fmt.Errorf("null mask source: %w", err)
		}
	}
	grids := make([]*polar.Grid2, len(f.Sweeps))
	var eg errgroup.Group
	for i := range f.Sweeps {
		i := i
		eg.Go(func() error {
			o := Options{Fill: opts.Fill}
			if nullField != nil {
				o.NullMask = nullField.Sweeps[i].Mask
			}
			out, err := Apply(f.Sweeps[i], fn, o)
			if err != nil {
				return fmt.Errorf("sweep %d: %w", i, err)
			}
			grids[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("filter %s: %w", src, err)
	}
	return vol.AddFieldLike(src, dst, grids, true)
}
