package gridding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolatePassesThroughDataPoints(t *testing.T) {
	cfg := Config{ExtentKm: 10, StepKm: 2, CornerValue: 0}
	xs := []float64{-4, 0, 4, 2}
	ys := []float64{0, 4, 0, -4}
	hs := []float64{1500, 1800, 1600, 1400}

	s, err := Interpolate(xs, ys, hs, cfg)
	require.NoError(t, err)

	// Axis runs -10..10 at step 2, so the data points land on grid nodes.
	require.Len(t, s.X, 11)
	require.Len(t, s.Y, 11)
	require.Len(t, s.Z, 11)

	at := func(x, y float64) float64 {
		xi := int((x + cfg.ExtentKm) / cfg.StepKm)
		yi := int((y + cfg.ExtentKm) / cfg.StepKm)
		return s.Z[yi][xi]
	}
	for i := range xs {
		assert.InDelta(t, hs[i], at(xs[i], ys[i]), 1e-6, "point %d", i)
	}
	assert.InDelta(t, 0, at(-10, -10), 1e-6, "corner anchored")
}

func TestInterpolateSkipsNaNPoints(t *testing.T) {
	cfg := Config{ExtentKm: 10, StepKm: 5, CornerValue: 0}
	xs := []float64{-4, math.NaN(), 4}
	ys := []float64{0, 4, 0}
	hs := []float64{1500, 1800, math.NaN()}

	s, err := Interpolate(xs, ys, hs, cfg)
	require.NoError(t, err)
	for _, row := range s.Z {
		for _, v := range row {
			assert.False(t, math.IsNaN(v))
		}
	}
}

func TestInterpolateDeduplicates(t *testing.T) {
	cfg := Config{ExtentKm: 10, StepKm: 10, CornerValue: 0}
	// Same position twice with conflicting heights: a singular system unless
	// the duplicate is dropped.
	xs := []float64{1, 1, -3}
	ys := []float64{2, 2, 0}
	hs := []float64{1500, 1200, 1400}
	_, err := Interpolate(xs, ys, hs, cfg)
	assert.NoError(t, err)
}

func TestInterpolateAllNaN(t *testing.T) {
	// Only the four corners remain, which still supports a fit.
	cfg := Config{ExtentKm: 10, StepKm: 10, CornerValue: 500}
	nan := math.NaN()
	s, err := Interpolate([]float64{nan}, []float64{nan}, []float64{nan}, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 500, s.Z[0][0], 1e-6)
}

func TestInterpolateErrors(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := Interpolate([]float64{1}, []float64{1, 2}, []float64{1}, DefaultConfig())
		assert.Error(t, err)
	})
	t.Run("bad step", func(t *testing.T) {
		_, err := Interpolate([]float64{1}, []float64{2}, []float64{3},
			Config{ExtentKm: 10, StepKm: 0})
		assert.Error(t, err)
	})
}
