package mlayer

import (
	"math"
	"sort"

	"github.com/tkarjala/radproc/internal/filters"
)

// RejectOutliers masks values whose absolute deviation from the profile
// median exceeds m times the median absolute deviation. A degenerate MAD of
// zero masks nothing beyond exact-median holds.
func RejectOutliers(s []float64, m float64) []float64 {
	med := nanMedian(s)
	if math.IsNaN(med) {
		return append([]float64(nil), s...)
	}
	dev := make([]float64, len(s))
	for i, v := range s {
		if math.IsNaN(v) {
			dev[i] = math.NaN()
		} else {
			dev[i] = math.Abs(v - med)
		}
	}
	mdev := nanMedian(dev)
	out := append([]float64(nil), s...)
	for i, d := range dev {
		if math.IsNaN(d) {
			continue
		}
		score := 0.0
		if mdev > 0 {
			score = d / mdev
		}
		if score >= m {
			out[i] = math.NaN()
		}
	}
	return out
}

// Refine post-processes an edge: reject outlier altitudes, re-smooth the
// altitude profile NaN-aware with an azimuthally wrapping moving average,
// and re-derive the nearest gate for each smoothed altitude.
func Refine(p Profile, heights []float64, cfg LimitsConfig) Profile {
	alt := RejectOutliers(p.Alt, cfg.OutlierM)
	smooth := filters.FilterSeriesSkipNA(alt, func(s []float64) []float64 {
		return filters.Uniform1D(s, cfg.SmoothWindow, true)
	})
	out := NewProfile(len(p.Gate))
	for r, h := range smooth {
		if math.IsNaN(h) {
			continue
		}
		g := Find(heights, h)
		if g < 0 {
			continue
		}
		out.Gate[r] = float64(g)
		out.Alt[r] = h
	}
	return out
}

func nanMedian(s []float64) float64 {
	buf := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) {
			buf = append(buf, v)
		}
	}
	if len(buf) == 0 {
		return math.NaN()
	}
	sort.Float64s(buf)
	n := len(buf)
	if n%2 == 1 {
		return buf[n/2]
	}
	return (buf[n/2-1] + buf[n/2]) / 2
}
