package features

import "math"

// NaNs returns a slice of n NaN values.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// RollingMean returns the trailing unweighted mean over window values.
// A position is NaN until the window is full or while it contains a NaN.
func RollingMean(xs []float64, window int) []float64 {
	out := NaNs(len(xs))
	if window < 1 {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		sum := 0.0
		ok := true
		for _, v := range xs[i-window+1 : i+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd returns the trailing sample standard deviation (ddof = 1).
func RollingStd(xs []float64, window int) []float64 {
	out := NaNs(len(xs))
	if window < 2 {
		return out
	}
	means := RollingMean(xs, window)
	for i := window - 1; i < len(xs); i++ {
		m := means[i]
		if math.IsNaN(m) {
			continue
		}
		ss := 0.0
		for _, v := range xs[i-window+1 : i+1] {
			d := v - m
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}
