package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tkarjala/radproc/internal/gridding"
	"github.com/tkarjala/radproc/internal/mlayer"
	"github.com/tkarjala/radproc/internal/moment"
	"github.com/tkarjala/radproc/internal/polar"
	"github.com/tkarjala/radproc/internal/synth"
)

// hitRate is the fraction of rays whose detected edge lies within tol gates
// of the gate nearest to the designed band altitude.
func hitRate(p mlayer.Profile, trueGate, tol int) float64 {
	hits := 0
	for _, g := range p.Gate {
		if !math.IsNaN(g) && math.Abs(g-float64(trueGate)) <= float64(tol) {
			hits++
		}
	}
	return float64(hits) / float64(len(p.Gate))
}

func TestDetectSyntheticBand(t *testing.T) {
	params := synth.DefaultParams()
	vol := synth.Volume(params)
	det := New(DefaultConfig(), zap.NewNop().Sugar())

	res, err := det.Run(vol)
	require.NoError(t, err)
	assert.Equal(t, vol.ID.String(), res.VolumeID)
	require.Len(t, res.Sweeps, params.Sweeps)

	for si, edges := range res.Sweeps {
		heights := vol.Sweeps[si].GateAltitudes(params.SiteAltM)
		trueBottom := mlayer.Find(heights, params.BandBottomM)
		trueTop := mlayer.Find(heights, params.BandTopM)
		require.GreaterOrEqual(t, trueBottom, 0)
		require.Greater(t, trueTop, trueBottom)

		assert.GreaterOrEqual(t, hitRate(edges.Bottom, trueBottom, 1), 0.9,
			"sweep %d bottom edge near gate %d", si, trueBottom)
		assert.GreaterOrEqual(t, hitRate(edges.Top, trueTop, 1), 0.9,
			"sweep %d top edge near gate %d", si, trueTop)
	}
}

func TestRunLeavesInputUntouched(t *testing.T) {
	params := synth.DefaultParams()
	params.Sweeps = 1
	params.Rays = 90
	vol := synth.Volume(params)
	before := vol.FieldIDs()

	_, err := New(DefaultConfig(), zap.NewNop().Sugar()).Run(vol)
	require.NoError(t, err)

	assert.Equal(t, before, vol.FieldIDs(), "derived fields live on the clone only")
	assert.False(t, vol.HasField(polar.Raw(moment.MLI)))
}

func TestRunGridsEdges(t *testing.T) {
	params := synth.DefaultParams()
	params.Sweeps = 1
	params.Rays = 60
	vol := synth.Volume(params)

	cfg := DefaultConfig()
	gc := gridding.DefaultConfig()
	cfg.Grid = &gc

	res, err := New(cfg, zap.NewNop().Sugar()).Run(vol)
	require.NoError(t, err)
	require.Len(t, res.Sweeps, 1)

	bs := res.Sweeps[0].BottomSurface
	ts := res.Sweeps[0].TopSurface
	require.NotNil(t, bs)
	require.NotNil(t, ts)
	assert.Equal(t, len(bs.Y), len(bs.Z))
	assert.Equal(t, len(bs.X), len(bs.Z[0]))

	// Surface heights over the scanned area sit in the band's neighborhood.
	mid := len(ts.Y) / 2
	assert.Greater(t, ts.Z[mid][mid], bs.Z[mid][mid])
}

func TestRunRequiresMoments(t *testing.T) {
	vol := polar.NewVolume(polar.Site{}, []*polar.Sweep{{
		Azimuths: []float64{0, 90}, Ranges: []float64{500, 1000},
	}})
	_, err := New(DefaultConfig(), zap.NewNop().Sugar()).Run(vol)
	assert.Error(t, err)
}
