// Package lms implements the cascaded adaptive residual filter: C sequential
// sign-sign LMS stages of order M, re-initialized at the start of every
// block. Integer sign-sign LMS is the standard bit-exact adaptive scheme
// used by lossless codecs that must have a decoder reproduce the encoder's
// filter state exactly from the bitstream alone.
package lms

import "github.com/mewkiz/pkg/errutil"

// WeightShift is the fixed-point scale of filter weights: a weight of
// 1<<WeightShift represents a tap gain of 1.0.
const WeightShift = 12

// StepSize is the per-sample sign-sign adaptation step applied to each tap
// weight.
const StepSize = 2

// ErrFailedToPredict is returned when a filter of non-positive order is
// requested.
var ErrFailedToPredict = errutil.Newf("lms: failed to predict")

// Filter is a single sign-sign LMS adaptive predictor of fixed order. Its
// state (tap weights and input history) is local to one instance, matching
// the "state re-initialized per block" rule: callers construct a fresh
// Filter for every block and every cascade stage.
type Filter struct {
	order   int
	weights []int32
	history []int32
}

// New allocates a Filter of the given order with all weights and history
// initialized to zero.
func New(order int) (*Filter, error) {
	if order <= 0 {
		return nil, ErrFailedToPredict
	}
	return &Filter{
		order:   order,
		weights: make([]int32, order),
		history: make([]int32, order),
	}, nil
}

// sign returns -1, 0, or 1.
func sign(x int32) int32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// predict computes the filter's current prediction from its history.
func (f *Filter) predict() int32 {
	var sum int64
	for k := 0; k < f.order; k++ {
		sum += int64(f.weights[k]) * int64(f.history[k])
	}
	return int32(sum >> WeightShift)
}

// adapt updates tap weights by the sign-sign rule and slides x into history.
func (f *Filter) adapt(x, errSignal int32) {
	es := sign(errSignal)
	if es != 0 {
		for k := 0; k < f.order; k++ {
			f.weights[k] += es * sign(f.history[k]) * StepSize
		}
	}
	copy(f.history[1:], f.history[:f.order-1])
	f.history[0] = x
}

// Forward runs the filter across x[0:n], writing residual = x - prediction
// into out[0:n]. Equivalent to the encoder's forward pass for one cascade
// stage.
func (f *Filter) Forward(x []int32, n int, out []int32) {
	for i := 0; i < n; i++ {
		pred := f.predict()
		e := x[i] - pred
		out[i] = e
		f.adapt(x[i], e)
	}
}

// Inverse inverts Forward: given the residual stream produced by Forward and
// a filter with the same initial state, it reconstructs the original
// samples. Used to verify losslessness; a full decoder is not otherwise
// part of this package.
func (f *Filter) Inverse(residual []int32, n int, out []int32) {
	for i := 0; i < n; i++ {
		pred := f.predict()
		x := residual[i] + pred
		out[i] = x
		f.adapt(x, residual[i])
	}
}

// Cascade runs count independent Filter stages of the given order in
// sequence over x[0:n], each stage's residual feeding the next. It returns
// the final residual. A fresh Cascade (and fresh Filters within it) must be
// used per block, since filter state is re-initialized per block.
func Cascade(x []int32, n, order, count int) ([]int32, error) {
	cur := append([]int32(nil), x[:n]...)
	for c := 0; c < count; c++ {
		f, err := New(order)
		if err != nil {
			return nil, err
		}
		next := make([]int32, n)
		f.Forward(cur, n, next)
		cur = next
	}
	return cur, nil
}

// InverseCascade inverts Cascade: it constructs count freshly initialized
// filters of the given order and runs their inverses in reverse stage order.
func InverseCascade(residual []int32, n, order, count int) ([]int32, error) {
	cur := append([]int32(nil), residual[:n]...)
	filters := make([]*Filter, count)
	for c := 0; c < count; c++ {
		f, err := New(order)
		if err != nil {
			return nil, err
		}
		filters[c] = f
	}
	for c := count - 1; c >= 0; c-- {
		next := make([]int32, n)
		filters[c].Inverse(cur, n, next)
		cur = next
	}
	return cur, nil
}
