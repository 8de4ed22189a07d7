package sdsp

// PreEmphasisDouble applies a first-order high-pass filter in the double
// domain: y[n] = x[n] - coef*x[n-1], with coef = 1 - 2^-shift, history
// primed with x[-1] = 0. Operates in place.
func PreEmphasisDouble(x []float64, n int, shift uint) {
	coef := 1.0 - 1.0/float64(int64(1)<<shift)
	prev := 0.0
	for i := 0; i < n; i++ {
		cur := x[i]
		x[i] = cur - coef*prev
		prev = cur
	}
}

// PreEmphasisInt32 applies the bit-exact integer counterpart of
// PreEmphasisDouble, using the same Q31-style fixed-point convention as the
// PARCOR/long-term coefficients: coef is represented by the integer
// multiplier (1<<31 - 1<<(31-shift)), and every product is taken at 64 bits
// and rounded back down with MulQ31. Encoder and decoder must reproduce this
// arithmetic identically for exact de-emphasis.
func PreEmphasisInt32(x []int32, n int, shift uint) {
	coefQ31 := int32((int64(1) << 31) - (int64(1) << (31 - shift)))
	var prev int32
	for i := 0; i < n; i++ {
		cur := x[i]
		x[i] = cur - MulQ31(prev, coefQ31)
		prev = cur
	}
}

// MulQ31 multiplies a plain int32 sample by a Q31 fixed-point coefficient
// (i.e. a coefficient whose integer value approximates coefficient*2^31),
// taking the product at 64 bits and rounding the result back down with a
// round-half-up arithmetic right shift of 31 bits. This is the single fixed
// shift used uniformly by every integer predictor in the codec (PARCOR
// lattice, long-term FIR, pre-emphasis), regardless of the coefficient's
// original quantization width, because every quantized coefficient is stored
// promoted to the top of its 32-bit container (see Round, parcor.Quantize
// and longterm.Quantize).
func MulQ31(sample, coefQ31 int32) int32 {
	const half = int64(1) << 30
	product := int64(sample)*int64(coefQ31) + half
	return int32(product >> 31)
}

// Round implements round-half-away-from-zero, matching the plain
// round()-then-truncate semantics of the reference encoder's coefficient
// quantization (no ties-to-even branch).
func Round(x float64) int64 {
	if x >= 0 {
		return int64(x + 0.5)
	}
	return int64(x - 0.5)
}
