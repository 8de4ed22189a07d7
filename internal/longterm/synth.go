package longterm

import "github.com/go-sla/sla/internal/sdsp"

// Predict applies the long-term FIR to residual x[0:n], writing the
// filtered output into out[0:n]. The filter is centered on n-period with L
// taps spanning [n-period-L/2 .. n-period-L/2+L-1]; samples too close to the
// start of the block for the full tap window to fit are passed through
// unfiltered, since there is no cross-block predictor memory, matching
// PARCOR's per-block reset.
func Predict(x []int32, n int, coefQ31 []int32, order, period int, out []int32) {
	half := order / 2
	for i := 0; i < n; i++ {
		lo := i - period - half
		if lo < 0 {
			out[i] = x[i]
			continue
		}
		var pred int32
		for j := 0; j < order; j++ {
			pred += sdsp.MulQ31(x[lo+j], coefQ31[j])
		}
		out[i] = x[i] - pred
	}
}

// Reconstruct inverts Predict. Because every tap references a sample
// strictly before i (period is always well above order in practice), it can
// run forward, using its own already-reconstructed output in place of the
// original residual. Used by tests to verify losslessness; a decoder is not
// otherwise part of this package.
func Reconstruct(residual []int32, n int, coefQ31 []int32, order, period int, x []int32) {
	half := order / 2
	for i := 0; i < n; i++ {
		lo := i - period - half
		if lo < 0 {
			x[i] = residual[i]
			continue
		}
		var pred int32
		for j := 0; j < order; j++ {
			pred += sdsp.MulQ31(x[lo+j], coefQ31[j])
		}
		x[i] = residual[i] + pred
	}
}
