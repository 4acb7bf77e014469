package filters

import (
	"math"
	"sort"
)

// 1D profile helpers. Profiles use NaN as the missing-value marker.

// RollingMean returns the centered rolling mean of s. Positions with fewer
// than minPeriods valid samples in the window come out NaN.
func RollingMean(s []float64, window, minPeriods int) []float64 {
	lo, hi := windowSpan(window)
	out := make([]float64, len(s))
	for i := range s {
		sum, n := 0.0, 0
		for j := i - lo; j <= i+hi; j++ {
			if j < 0 || j >= len(s) {
				continue
			}
			if v := s[j]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n < minPeriods || n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// RollingMedian returns the centered rolling median of s with the same
// window and minimum-count semantics as RollingMean.
func RollingMedian(s []float64, window, minPeriods int) []float64 {
	lo, hi := windowSpan(window)
	out := make([]float64, len(s))
	buf := make([]float64, 0, window)
	for i := range s {
		buf = buf[:0]
		for j := i - lo; j <= i+hi; j++ {
			if j < 0 || j >= len(s) {
				continue
			}
			if v := s[j]; !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) < minPeriods || len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		sort.Float64s(buf)
		m := len(buf)
		if m%2 == 1 {
			out[i] = buf[m/2]
		} else {
			out[i] = (buf[m/2-1] + buf[m/2]) / 2
		}
	}
	return out
}

// Uniform1D returns the centered moving average of s, skipping NaN samples.
// With wrap the profile is treated as circular (azimuth axis).
func Uniform1D(s []float64, window int, wrap bool) []float64 {
	lo, hi := windowSpan(window)
	out := make([]float64, len(s))
	n := len(s)
	for i := range s {
		sum, cnt := 0.0, 0
		for d := -lo; d <= hi; d++ {
			j := i + d
			if wrap {
				j = ((j % n) + n) % n
			} else if j < 0 || j >= n {
				continue
			}
			if v := s[j]; !math.IsNaN(v) {
				sum += v
				cnt++
			}
		}
		if cnt == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(cnt)
	}
	return out
}

// Gap-fill parameters for FilterSeriesSkipNA: a centered rolling mean over
// 40 samples with at least 5 valid ones estimates values inside gaps.
const (
	gapFillWindow     = 40
	gapFillMinPeriods = 5
)

// FilterSeriesSkipNA filters a profile with missing values: gaps are first
// filled with a local rolling-mean estimate, the filter runs over the valid
// samples only, and the result is re-masked at the original missing
// positions. Gaps with no local estimate stay out of the filter input, so
// artifacts from neighboring gaps do not propagate.
func FilterSeriesSkipNA(s []float64, fn func([]float64) []float64) []float64 {
	filler := RollingMean(s, gapFillWindow, gapFillMinPeriods)
	filled := make([]float64, len(s))
	for i, v := range s {
		if math.IsNaN(v) {
			filled[i] = filler[i]
		} else {
			filled[i] = v
		}
	}
	idx := make([]int, 0, len(s))
	compact := make([]float64, 0, len(s))
	for i, v := range filled {
		if !math.IsNaN(v) {
			idx = append(idx, i)
			compact = append(compact, v)
		}
	}
	out := make([]float64, len(s))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(compact) > 0 {
		data := fn(compact)
		for k, i := range idx {
			if k < len(data) {
				out[i] = data[k]
			}
		}
	}
	for i, v := range s {
		if math.IsNaN(v) {
			out[i] = math.NaN()
		}
	}
	return out
}

// ReplaceWhere returns a copy of s with replacement written wherever cond
// is true.
func ReplaceWhere(s []float64, cond []bool, replacement float64) []float64 {
	out := append([]float64(nil), s...)
	for i, c := range cond {
		if c {
			out[i] = replacement
		}
	}
	return out
}

// RollingMedianThreshold masks values deviating from the centered rolling
// median by more than threshold.
func RollingMedianThreshold(s []float64, window int, threshold float64) []float64 {
	med := RollingMedian(s, window, 1)
	out := append([]float64(nil), s...)
	for i, v := range s {
		if math.IsNaN(v) || math.IsNaN(med[i]) {
			continue
		}
		if math.Abs(v-med[i]) > threshold {
			out[i] = math.NaN()
		}
	}
	return out
}
