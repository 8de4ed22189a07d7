// Package longterm implements the long-term (pitch) predictor: given a
// residual sequence, it searches for a dominant pitch period and fits a
// short FIR in the residual domain. Pitch estimation and least-squares
// fitting are implemented directly against stdlib math.
package longterm

import (
	"math"
	"sort"

	"github.com/go-sla/sla/internal/sdsp"
	"github.com/mewkiz/pkg/errutil"
)

// Pinned constants governing pitch search.
const (
	MinPitchThreshold = 32
	MaxPeriod         = 1024
	NumPitchCandidates = 8
)

// ErrFailedToCalculate is returned when no usable pitch period can be found
// (e.g. the frame is too short, or every candidate is numerically
// degenerate). The block encoder treats this as "disable long-term for this
// channel" rather than as a fatal error.
var ErrFailedToCalculate = errutil.Newf("longterm: failed to calculate coefficients")

// Analyze searches x[0:n] for the best pitch period in
// [minPeriod, maxPeriod) among at most numCandidates coarse matches, fits L
// least-squares FIR coefficients for each candidate, and returns the period
// and coefficients of whichever candidate yields the lowest residual energy.
// A returned period of 0 (with ErrFailedToCalculate) means the caller should
// disable long-term prediction for this channel.
func Analyze(x []float64, n, order, minPeriod, maxPeriod, numCandidates int) (int, []float64, error) {
	if n <= minPeriod+order || order <= 0 {
		return 0, nil, ErrFailedToCalculate
	}
	if maxPeriod > n {
		maxPeriod = n
	}
	if maxPeriod <= minPeriod {
		return 0, nil, ErrFailedToCalculate
	}

	type candidate struct {
		period int
		score  float64
	}
	var energy float64
	for i := 0; i < n; i++ {
		energy += x[i] * x[i]
	}
	if energy <= 0 {
		return 0, nil, ErrFailedToCalculate
	}

	candidates := make([]candidate, 0, maxPeriod-minPeriod)
	for period := minPeriod; period < maxPeriod; period++ {
		var cross, tailEnergy float64
		for i := period; i < n; i++ {
			cross += x[i] * x[i-period]
			tailEnergy += x[i-period] * x[i-period]
		}
		if tailEnergy <= 0 {
			continue
		}
		score := (cross * cross) / tailEnergy
		candidates = append(candidates, candidate{period: period, score: score})
	}
	if len(candidates) == 0 {
		return 0, nil, ErrFailedToCalculate
	}

	// Coarse pass: keep the numCandidates periods with the strongest
	// normalized correlation score.
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > numCandidates {
		candidates = candidates[:numCandidates]
	}
	top := candidates

	// Fine pass: fit L coefficients for each coarse candidate, keep the
	// fit with the lowest residual energy.
	bestResidual := math.Inf(1)
	bestPeriod := 0
	var bestCoef []float64
	for _, c := range top {
		coef, residual, ok := fitLeastSquares(x, n, c.period, order)
		if !ok {
			continue
		}
		if residual < bestResidual {
			bestResidual = residual
			bestPeriod = c.period
			bestCoef = coef
		}
	}
	if bestCoef == nil {
		return 0, nil, ErrFailedToCalculate
	}
	return bestPeriod, bestCoef, nil
}

// fitLeastSquares fits order coefficients c[0..order) minimizing
// sum_i (x[i] - sum_j c[j]*x[i-period-half+j])^2 over the valid range of i,
// via the normal equations solved by Gaussian elimination.
func fitLeastSquares(x []float64, n, period, order int) ([]float64, float64, bool) {
	half := order / 2
	lo := period + half
	if lo >= n {
		return nil, 0, false
	}

	a := make([][]float64, order)
	for i := range a {
		a[i] = make([]float64, order+1)
	}
	for i := lo; i < n; i++ {
		for r := 0; r < order; r++ {
			xr := x[i-period-half+r]
			for c := 0; c < order; c++ {
				xc := x[i-period-half+c]
				a[r][c] += xr * xc
			}
			a[r][order] += xr * x[i]
		}
	}

	coef, ok := solve(a, order)
	if !ok {
		return nil, 0, false
	}

	var residual float64
	for i := lo; i < n; i++ {
		var pred float64
		for j := 0; j < order; j++ {
			pred += coef[j] * x[i-period-half+j]
		}
		d := x[i] - pred
		residual += d * d
	}
	return coef, residual, true
}

// solve runs Gaussian elimination with partial pivoting on the augmented
// matrix a (order rows, order+1 columns), returning the solution vector.
func solve(a [][]float64, order int) ([]float64, bool) {
	for col := 0; col < order; col++ {
		pivot := col
		for r := col + 1; r < order; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		if math.Abs(a[col][col]) < 1e-12 {
			return nil, false
		}
		for r := col + 1; r < order; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= order; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}
	x := make([]float64, order)
	for r := order - 1; r >= 0; r-- {
		sum := a[r][order]
		for c := r + 1; c < order; c++ {
			sum -= a[r][c] * x[c]
		}
		x[r] = sum / a[r][r]
	}
	return x, true
}

// Quantize converts a double long-term coefficient into its Q31-promoted
// int32 wire form: round(c * 2^15) << 16.
func Quantize(c float64) int32 {
	return int32(sdsp.Round(c*32768)) << 16
}

// Dequantize recovers the 16-bit signed coefficient carried on the wire.
func Dequantize(q int32) int32 {
	return q >> 16
}
