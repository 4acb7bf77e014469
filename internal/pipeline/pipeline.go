// Package pipeline runs the full melting layer detection workflow over a
// polar volume: clutter removal, moment filtering, indicator derivation,
// indicator smoothing, edge extraction and edge refinement.
package pipeline

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/tkarjala/radproc/internal/clutter"
	"github.com/tkarjala/radproc/internal/filters"
	"github.com/tkarjala/radproc/internal/gridding"
	"github.com/tkarjala/radproc/internal/mlayer"
	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
)

// Config collects every stage's parameters. Call order inside Run is part
// of the contract: the indicator requires filtered ZDR and RHO, smoothing
// requires the indicator, limits require the smoothed indicator.
type Config struct {
	Moments moment.Config
	Clutter clutter.Config
	Limits  mlayer.LimitsConfig

	// MedianSize is the square median window for pre-indicator ZDR/RHO
	// filtering.
	MedianSize int
	// SmoothRangeBins is the moving-average window along range applied to
	// the fresh indicator (single-ray window, azimuthal wrap).
	SmoothRangeBins int
	// SavGolWindow and SavGolOrder control the polynomial smoothing pass
	// along range.
	SavGolWindow int
	SavGolOrder  int

	// Grid, when set, also interpolates each refined edge onto a Cartesian
	// surface.
	Grid *gridding.Config
}

// DefaultConfig returns the operational detection parameters.
func DefaultConfig() Config {
	return Config{
		Moments:         moment.DefaultConfig(),
		Clutter:         clutter.DefaultConfig(),
		Limits:          mlayer.DefaultLimitsConfig(),
		MedianSize:      10,
		SmoothRangeBins: 30,
		SavGolWindow:    60,
		SavGolOrder:     3,
	}
}

// SweepEdges is the detection result for one sweep.
type SweepEdges struct {
	Sweep  int
	Bottom mlayer.Profile
	Top    mlayer.Profile

	BottomSurface *gridding.Surface
	TopSurface    *gridding.Surface
}

// Result is the detection result for a volume.
type Result struct {
	VolumeID string
	Sweeps   []SweepEdges
}

// Detector runs the workflow.
type Detector struct {
	cfg Config
	log *zap.SugaredLogger
}

// New creates a Detector.
func New(cfg Config, logger *zap.SugaredLogger) *Detector {
	return &Detector{cfg: cfg, log: logger}
}

// Run detects the melting layer in vol. The volume is cloned first; the
// caller's fields are left untouched and all derived fields live on the
// clone only.
func (d *Detector) Run(vol *polar.Volume) (*Result, error) {
	v := vol.Clone()
	cfg := d.cfg

	if err := clutter.MedianThreshold(v, cfg.Moments, cfg.Clutter); err != nil {
		return nil, fmt.Errorf("ground clutter filtering: %w", err)
	}
	if err := clutter.RejectNonMet(v, cfg.Clutter.RhoLimit); err != nil {
		return nil, fmt.Errorf("non-met rejection: %w", err)
	}
	d.log.Debugf("clutter filtering done for volume %s", v.ID)

	med := filters.Median(cfg.MedianSize, cfg.MedianSize)
	zhID := polar.Raw(moment.ZH)
	for _, t := range []moment.Type{moment.ZDR, moment.RHO} {
		src, err := v.EnsureFiltered(t)
		if err != nil {
			return nil, err
		}
		fill, err := cfg.Moments.Fill(t)
		if err != nil {
			return nil, err
		}
		err = filters.FilterField(v, src, src, med,
			filters.FieldOptions{Fill: &fill, NullMaskFrom: &zhID})
		if err != nil {
			return nil, fmt.Errorf("median filtering %s: %w", t, err)
		}
	}

	if err := mlayer.AddIndicator(v, cfg.Moments); err != nil {
		return nil, fmt.Errorf("indicator: %w", err)
	}
	mliID := polar.Raw(moment.MLI)
	mliSmoothID := polar.Filtered(moment.MLI)
	err := filters.FilterField(v, mliID, mliSmoothID,
		filters.Uniform(cfg.SmoothRangeBins, 1), filters.FieldOptions{})
	if err != nil {
		return nil, fmt.Errorf("indicator smoothing: %w", err)
	}
	err = filters.FilterField(v, mliSmoothID, mliSmoothID,
		filters.SavGol(cfg.SavGolWindow, cfg.SavGolOrder), filters.FieldOptions{})
	if err != nil {
		return nil, fmt.Errorf("indicator polynomial smoothing: %w", err)
	}
	d.log.Debugf("indicator ready for volume %s", v.ID)

	res := &Result{VolumeID: v.ID.String()}
	for si, sweep := range v.Sweeps {
		edges, err := d.extractSweep(v, si, sweep)
		if err != nil {
			return nil, fmt.Errorf("sweep %d: %w", si, err)
		}
		res.Sweeps = append(res.Sweeps, edges)
		d.log.Infof("sweep %d: bottom edge on %d/%d rays, top edge on %d/%d rays",
			si, edges.Bottom.Valid(), sweep.NumRays(), edges.Top.Valid(), sweep.NumRays())
	}
	return res, nil
}

func (d *Detector) extractSweep(v *polar.Volume, si int, sweep *polar.Sweep) (SweepEdges, error) {
	cfg := d.cfg
	mli, err := v.SweepField(si, polar.Filtered(moment.MLI))
	if err != nil {
		return SweepEdges{}, err
	}
	rho, err := v.SweepField(si, polar.Filtered(moment.RHO))
	if err != nil {
		return SweepEdges{}, err
	}
	heights := sweep.GateAltitudes(v.Site.AltM)

	bottom, top := mlayer.Limits(mli, rho, heights, cfg.Limits)
	bottom = mlayer.DropNoHydrometeors(bottom, rho, cfg.Limits)
	top = mlayer.DropNoHydrometeors(top, rho, cfg.Limits)
	bottom = mlayer.Refine(bottom, heights, cfg.Limits)
	top = mlayer.Refine(top, heights, cfg.Limits)

	out := SweepEdges{Sweep: si, Bottom: bottom, Top: top}
	if cfg.Grid != nil {
		out.BottomSurface, err = d.gridEdge(v, sweep, bottom)
		if err != nil {
			return SweepEdges{}, fmt.Errorf("bottom surface: %w", err)
		}
		out.TopSurface, err = d.gridEdge(v, sweep, top)
		if err != nil {
			return SweepEdges{}, fmt.Errorf("top surface: %w", err)
		}
	}
	return out, nil
}

// gridEdge projects the edge gates to Cartesian kilometers and interpolates
// the height surface.
func (d *Detector) gridEdge(v *polar.Volume, sweep *polar.Sweep, p mlayer.Profile) (*gridding.Surface, error) {
	var xs, ys, hs []float64
	for r, gf := range p.Gate {
		if math.IsNaN(gf) {
			continue
		}
		g := int(gf)
		gx, gy := sweep.GateXY(r, v.Site.AltM)
		xs = append(xs, gx[g]/1000)
		ys = append(ys, gy[g]/1000)
		hs = append(hs, p.Alt[r])
	}
	if len(xs) < 3 {
		return nil, nil
	}
	return gridding.Interpolate(xs, ys, hs, *d.cfg.Grid)
}
