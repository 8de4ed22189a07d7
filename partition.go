package sla

import (
	"sort"

	"github.com/go-sla/sla/internal/rice"
	"github.com/go-sla/sla/internal/sdsp"
	"github.com/mewkiz/pkg/errutil"
)

// blockOverheadBits is a fixed per-block estimate (sync, offset, CRC16,
// sample count, coefficient flags) added to every candidate segment's
// entropy-coding estimate, so the partition search does not over-fragment
// chasing marginal entropy-coding gains that a block header would erase.
const blockOverheadBits = 96

// SearchOptimalBlockPartitions searches for how to split windowLen samples
// of in (one slice per channel, each at least windowLen long) into blocks:
// it returns an ordered list of block lengths summing to windowLen, each in
// [minBlock, maxBlock], minimizing an estimated total coded size. Every
// segment length except possibly the last is taken from {minBlock,
// minBlock+delta, minBlock+2*delta, ..., maxBlock}. When the window starts
// with a silent run of at least minBlock samples, it instead returns that
// run alone (capped at maxBlock), which may be shorter than windowLen.
func (e *Encoder) SearchOptimalBlockPartitions(in [][]int32, windowLen, minBlock, maxBlock, delta int) ([]int, error) {
	if minBlock <= 0 || maxBlock < minBlock || windowLen < minBlock || windowLen > maxBlock {
		return nil, errutil.Err(InvalidArgument)
	}

	if run := e.silentRunLength(in, windowLen); run >= minBlock {
		if run > maxBlock {
			run = maxBlock
		}
		return []int{run}, nil
	}

	numChannels := len(in)
	bitPerSample := e.waveFormat.BitPerSample
	stereoMS := e.encodeParameter.ChProcessMethod == ChProcessStereoMS && numChannels == 2

	shifted := make([][]int32, numChannels)
	for ch := 0; ch < numChannels; ch++ {
		shifted[ch] = make([]int32, windowLen)
		for i := 0; i < windowLen; i++ {
			shifted[ch][i] = in[ch][i] >> (32 - bitPerSample)
		}
	}
	if stereoMS {
		sdsp.LRtoMSInt32(shifted[:2], 2, windowLen)
	}

	residual := make([][]int32, numChannels)
	for ch := 0; ch < numChannels; ch++ {
		residual[ch] = fixedOrder2Residual(shifted[ch])
	}

	// segmentCost estimates a candidate segment's coded size from the cheap
	// order-2 fixed-difference residual rather than a full PARCOR analysis;
	// PARCOR's autocorrelation/Levinson-Durbin pass is too expensive to rerun
	// per candidate length, so it is intentionally left out of this estimate.
	segmentCost := func(start, length int) int {
		total := blockOverheadBits
		for ch := 0; ch < numChannels; ch++ {
			total += rice.EstimateBits(residual[ch][start : start+length])
		}
		return total
	}

	candidates := gridLengths(minBlock, maxBlock, delta)

	const inf = int(^uint(0) >> 1)
	dp := make([]int, windowLen+1)
	chosen := make([]int, windowLen+1)
	for i := range dp {
		dp[i] = inf
	}
	dp[0] = 0

	for p := 0; p < windowLen; p++ {
		if dp[p] == inf {
			continue
		}
		for _, L := range candidates {
			if p+L > windowLen {
				continue
			}
			c := dp[p] + segmentCost(p, L)
			if c < dp[p+L] {
				dp[p+L] = c
				chosen[p+L] = L
			}
		}
		remainder := windowLen - p
		if remainder > 0 && remainder >= minBlock && remainder <= maxBlock {
			c := dp[p] + segmentCost(p, remainder)
			if c < dp[windowLen] {
				dp[windowLen] = c
				chosen[windowLen] = remainder
			}
		}
	}

	if dp[windowLen] == inf {
		// windowLen itself is always a valid single-segment candidate
		// (minBlock <= windowLen <= maxBlock), so this should not happen;
		// fall back to it defensively.
		return []int{windowLen}, nil
	}

	var lengths []int
	for pos := windowLen; pos > 0; {
		L := chosen[pos]
		lengths = append(lengths, L)
		pos -= L
	}
	for i, j := 0, len(lengths)-1; i < j; i, j = i+1, j-1 {
		lengths[i], lengths[j] = lengths[j], lengths[i]
	}
	return lengths, nil
}

// silentRunLength returns the number of consecutive samples from the start
// of in whose channel-processed (downshifted, then MS if applicable)
// values are all zero, capped at total. Silence is judged on the processed
// samples, not the raw input, so it reflects what the block encoder itself
// will see once MS decorrelation and bit alignment are applied.
func (e *Encoder) silentRunLength(in [][]int32, total int) int {
	numChannels := len(in)
	bitPerSample := e.waveFormat.BitPerSample
	stereoMS := e.encodeParameter.ChProcessMethod == ChProcessStereoMS && numChannels == 2

	for i := 0; i < total; i++ {
		if stereoMS {
			l := in[0][i] >> (32 - bitPerSample)
			r := in[1][i] >> (32 - bitPerSample)
			mid := (l + r) >> 1
			side := l - r
			if mid != 0 || side != 0 {
				return i
			}
			continue
		}
		for ch := 0; ch < numChannels; ch++ {
			if in[ch][i]>>(32-bitPerSample) != 0 {
				return i
			}
		}
	}
	return total
}

// fixedOrder2Residual computes a cheap order-2 fixed-difference residual
// (x[i] - (2*x[i-1] - x[i-2])), used as a low-cost proxy to rank candidate
// block lengths without running a full PARCOR analysis on each one.
func fixedOrder2Residual(x []int32) []int32 {
	n := len(x)
	res := make([]int32, n)
	for i := 0; i < n; i++ {
		switch {
		case i == 0:
			res[i] = x[i]
		case i == 1:
			res[i] = x[i] - x[i-1]
		default:
			res[i] = x[i] - (2*x[i-1] - x[i-2])
		}
	}
	return res
}

// gridLengths returns candidate segment lengths minBlock, minBlock+delta,
// minBlock+2*delta, ... up to maxBlock (maxBlock itself is always included),
// in descending order. The order does not decide ties: the partition DP
// keeps the first update seen for a position and visits start positions in
// ascending order, so for equal cost the longest final segment wins, which
// leans toward fewer partitions.
func gridLengths(minBlock, maxBlock, delta int) []int {
	var lens []int
	for L := minBlock; L <= maxBlock; L += delta {
		lens = append(lens, L)
	}
	if len(lens) == 0 || lens[len(lens)-1] != maxBlock {
		lens = append(lens, maxBlock)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lens)))
	return lens
}
