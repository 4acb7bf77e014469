package filters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarjala/radproc/internal/polar"
)

func rayGrid(values ...float64) *polar.Grid2 {
	g := polar.NewGrid2(1, len(values))
	for i, v := range values {
		g.Set(0, i, v)
	}
	return g
}

func TestMedianAlongRange(t *testing.T) {
	g := rayGrid(1, 2, 3, 4, 100)
	out, err := Apply(g, Median(3, 1), Options{})
	require.NoError(t, err)

	// Range axis clamps, so edge windows resample the edge gate.
	assert.Equal(t, []float64{1, 2, 3, 4, 100}, out.Data)
	assert.True(t, g.SameShape(out))
}

func TestMedianSuppressesSpike(t *testing.T) {
	g := rayGrid(1, 1, 50, 1, 1)
	out, err := Apply(g, Median(3, 1), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.At(0, 2))
}

func TestUniformWrapsAzimuth(t *testing.T) {
	g := polar.NewGrid2(4, 1)
	for r, v := range []float64{0, 10, 20, 30} {
		g.Set(r, 0, v)
	}
	out, err := Apply(g, Uniform(1, 3), Options{})
	require.NoError(t, err)
	assert.InDelta(t, (30+0+10)/3.0, out.At(0, 0), 1e-12)
	assert.InDelta(t, (20+30+0)/3.0, out.At(3, 0), 1e-12)
}

func TestApplyPreservesMask(t *testing.T) {
	g := polar.NewGrid2(2, 4)
	for r := 0; r < 2; r++ {
		for c := 0; c < 4; c++ {
			g.Set(r, c, float64(c))
		}
	}
	g.SetMasked(0, 1)

	t.Run("without fill", func(t *testing.T) {
		out, err := Apply(g, Median(3, 1), Options{})
		require.NoError(t, err)
		assert.True(t, out.IsMasked(0, 1))
		assert.False(t, out.IsMasked(0, 0))
	})

	t.Run("with fill the mask is still a superset of the input mask", func(t *testing.T) {
		fill := 0.0
		out, err := Apply(g, Median(3, 1), Options{Fill: &fill})
		require.NoError(t, err)
		assert.True(t, out.IsMasked(0, 1))
	})

	t.Run("explicit null mask wins", func(t *testing.T) {
		null := make([]bool, 8)
		null[2] = true
		fill := 0.0
		out, err := Apply(g, Median(3, 1), Options{Fill: &fill, NullMask: null})
		require.NoError(t, err)
		assert.True(t, out.IsMasked(0, 2))
		assert.False(t, out.IsMasked(0, 1), "fill released the cell under the new mask")
	})
}

func TestApplyFullyMasked(t *testing.T) {
	g := polar.NewGrid2(3, 5)
	g.MaskAll()
	for _, fn := range []Func{Median(3, 3), Uniform(5, 1), SavGol(7, 2)} {
		out, err := Apply(g, fn, Options{})
		require.NoError(t, err)
		assert.True(t, g.SameShape(out))
		assert.True(t, out.AllMasked())
	}
}

func TestApplyShapeError(t *testing.T) {
	g := polar.NewGrid2(2, 3)
	bad := func(*polar.Grid2) *polar.Grid2 { return polar.NewGrid2(2, 2) }
	_, err := Apply(g, bad, Options{})
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, 3, shapeErr.WantGates)
	assert.Equal(t, 2, shapeErr.GotGates)
}

func TestMedianSkipsNaNNeighborhood(t *testing.T) {
	g := rayGrid(1, 2, 3)
	g.SetMasked(0, 1)
	out, err := Apply(g, Median(3, 1), Options{})
	require.NoError(t, err)
	// Center cell sees {1, 3} after the masked neighbor drops out.
	assert.Equal(t, 3.0, out.At(0, 2))
	assert.True(t, out.IsMasked(0, 1))
}
