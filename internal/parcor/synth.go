package parcor

import "github.com/go-sla/sla/internal/sdsp"

// Predict runs the integer PARCOR lattice filter over x[0:n] using the
// Q31-promoted reflection coefficients coefQ31[0:order+1] (coefQ31[0] is
// always 0 and contributes nothing), writing the resulting residual into
// residual[0:n]. The lattice's backward-error delay line starts at zero, so
// this call has no memory of any previous block: coefficients are
// recomputed fresh from each block's windowed frame.
//
// All arithmetic is performed with sdsp.MulQ31, the single round-to-nearest
// shift-by-31 multiply shared by every integer predictor in the codec, so
// results are bit-exact and reproducible by a mirror-image decoder.
func Predict(x []int32, n int, coefQ31 []int32, order int, residual []int32) {
	prevB := make([]int32, order+1)
	curB := make([]int32, order+1)
	for i := 0; i < n; i++ {
		f := x[i]
		curB[0] = x[i]
		for m := 1; m <= order; m++ {
			k := coefQ31[m]
			bPrev := prevB[m-1]
			newF := f - sdsp.MulQ31(bPrev, k)
			newB := bPrev - sdsp.MulQ31(f, k)
			f = newF
			curB[m] = newB
		}
		residual[i] = f
		prevB, curB = curB, prevB
	}
}

// Reconstruct inverts Predict: given the residual and the same
// Q31-promoted coefficients, it recovers the original integer samples. It is
// used by tests to verify the lattice filter's losslessness; a full
// mirror-image decoder is not otherwise part of this module.
func Reconstruct(residual []int32, n int, coefQ31 []int32, order int, x []int32) {
	prevB := make([]int32, order+1)
	curB := make([]int32, order+1)
	fStage := make([]int32, order+1)
	for i := 0; i < n; i++ {
		fStage[order] = residual[i]
		for m := order; m >= 1; m-- {
			k := coefQ31[m]
			bPrev := prevB[m-1]
			fStage[m-1] = fStage[m] + sdsp.MulQ31(bPrev, k)
			curB[m] = bPrev - sdsp.MulQ31(fStage[m-1], k)
		}
		curB[0] = fStage[0]
		x[i] = fStage[0]
		prevB, curB = curB, prevB
	}
}
