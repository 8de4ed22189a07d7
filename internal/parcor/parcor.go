// Package parcor computes PARCOR (reflection) coefficients of a windowed
// frame via the autocorrelation method and Levinson-Durbin recursion, and
// applies them as an integer lattice predictor.
package parcor

import (
	"math"

	"github.com/go-sla/sla/internal/sdsp"
	"github.com/mewkiz/pkg/errutil"
)

// ErrFailedToCalculateCoef is returned when the Levinson-Durbin recursion
// hits a non-positive prediction error (numerical breakdown).
var ErrFailedToCalculateCoef = errutil.Newf("parcor: failed to calculate coefficients")

// Analyze computes order+1 reflection coefficients from the windowed double
// samples x[0:n]. coef[0] is always 0 (invariant I1); coef[1:order+1] are
// the reflection coefficients, nominally in (-1, 1).
func Analyze(x []float64, n int, coef []float64, order int) error {
	for i := range coef[:order+1] {
		coef[i] = 0
	}
	if order == 0 || n == 0 {
		return nil
	}

	autocorr := make([]float64, order+1)
	for lag := 0; lag <= order; lag++ {
		var sum float64
		for i := lag; i < n; i++ {
			sum += x[i] * x[i-lag]
		}
		autocorr[lag] = sum
	}

	if autocorr[0] <= 0 {
		// Silence or degenerate frame: no predictive structure, all
		// reflection coefficients are exactly zero.
		return nil
	}

	// Levinson-Durbin recursion, retaining the reflection coefficient at
	// each stage (the "k" value), which is exactly what PARCOR is.
	err := autocorr[0]
	a := make([]float64, order+1) // a[0] is implicitly 1, stored from a[1]
	for m := 1; m <= order; m++ {
		acc := autocorr[m]
		for i := 1; i < m; i++ {
			acc -= a[i] * autocorr[m-i]
		}
		if err <= 0 {
			return ErrFailedToCalculateCoef
		}
		k := acc / err
		if k <= -1 || k >= 1 {
			// Clamp to keep the lattice stable; this is a degenerate but
			// recoverable case rather than a hard numerical failure.
			k = math.Max(-0.999999, math.Min(0.999999, k))
		}
		coef[m] = k

		newA := make([]float64, order+1)
		newA[m] = k
		for i := 1; i < m; i++ {
			newA[i] = a[i] - k*a[m-i]
		}
		copy(a, newA)

		err *= 1 - k*k
		if err <= 0 && m < order {
			return ErrFailedToCalculateCoef
		}
	}
	return nil
}

// LowOrderQBits is the order boundary (exclusive) under which coefficients
// are quantized to 16 bits; at and above it, 8 bits.
const LowOrderQBits = 4

// QBitsForOrder returns the quantization width for reflection coefficient
// order (1-indexed).
func QBitsForOrder(order int) uint {
	if order < LowOrderQBits {
		return 16
	}
	return 8
}

// Quantize converts a double reflection coefficient into its Q31-promoted
// int32 wire form (invariant I2): round(k * 2^(qbits-1)), left-shifted by
// 32-qbits so the synthesizer can always use a single 31-bit shift.
func Quantize(k float64, qbits uint) int32 {
	scaled := sdsp.Round(k * float64(int64(1)<<(qbits-1)))
	q := int32(scaled) << (32 - qbits)
	return q
}

// Dequantize recovers the qbits-wide signed coefficient actually carried on
// the wire from its Q31-promoted int32 form.
func Dequantize(q int32, qbits uint) int32 {
	return q >> (32 - qbits)
}
