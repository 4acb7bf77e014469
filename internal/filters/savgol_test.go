package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarjala/radproc/internal/polar"
)

func TestSavGolReproducesPolynomial(t *testing.T) {
	// A polynomial of the filter's own order passes through unchanged,
	// including at the ray ends where the window shrinks.
	g := polar.NewGrid2(2, 30)
	poly := func(x float64) float64 { return 2 + 0.5*x - 0.02*x*x + 0.001*x*x*x }
	for r := 0; r < 2; r++ {
		for c := 0; c < 30; c++ {
			g.Set(r, c, poly(float64(c)))
		}
	}
	out, err := Apply(g, SavGol(9, 3), Options{})
	require.NoError(t, err)
	for c := 0; c < 30; c++ {
		assert.InDelta(t, poly(float64(c)), out.At(0, c), 1e-9, "gate %d", c)
	}
}

func TestSavGolSmoothsNoise(t *testing.T) {
	g := polar.NewGrid2(1, 61)
	for c := 0; c < 61; c++ {
		v := 5.0
		if c%2 == 0 {
			v = 7.0
		}
		g.Set(0, c, v)
	}
	out, err := Apply(g, SavGol(21, 2), Options{})
	require.NoError(t, err)
	// The alternating series averages out near 6 away from the ends.
	for c := 15; c < 46; c++ {
		assert.InDelta(t, 6.0, out.At(0, c), 0.35)
	}
}

func TestSavGolHandlesGaps(t *testing.T) {
	g := polar.NewGrid2(1, 20)
	for c := 0; c < 20; c++ {
		g.Set(0, c, float64(c))
	}
	g.SetMasked(0, 10)
	out, err := Apply(g, SavGol(7, 1), Options{})
	require.NoError(t, err)
	assert.True(t, out.IsMasked(0, 10))
	// Linear data fits exactly even around the gap.
	assert.InDelta(t, 9.0, out.At(0, 9), 1e-9)
	assert.InDelta(t, 11.0, out.At(0, 11), 1e-9)
}

func TestSavGolTooFewSamples(t *testing.T) {
	g := polar.NewGrid2(1, 3)
	g.Set(0, 0, 1)
	g.SetMasked(0, 1)
	g.SetMasked(0, 2)
	out, err := Apply(g, SavGol(5, 3), Options{})
	require.NoError(t, err)
	// One valid sample cannot support a cubic fit anywhere.
	for c := 0; c < 3; c++ {
		assert.True(t, out.IsMasked(0, c) || math.IsNaN(out.At(0, c)))
	}
}
