// Package rice implements partition-adaptive entropy coding: Rice/Golomb
// coding of zig-zag-mapped signed residuals, with the Rice parameter chosen
// per partition by brute-force cost search and written inline so a decoder
// needs no side information.
package rice

import (
	"github.com/go-sla/sla/internal/bitio"
	"github.com/go-sla/sla/internal/sdsp"
)

// PartitionSamples is the number of residual values sharing one Rice
// parameter. A larger array is split into ceil(N/PartitionSamples)
// partitions, each with its own independently chosen parameter.
const PartitionSamples = 128

// KBits is the field width of an inline Rice parameter.
const KBits = 5

// MaxK is the largest representable Rice parameter (KBits wide).
const MaxK = (1 << KBits) - 1

// bestK returns the Rice parameter k in [0, MaxK] minimizing the coded size
// of values, and that size in bits.
func bestK(values []int32) (uint, int) {
	bestBits := int(^uint(0) >> 1)
	var bestParam uint
	for k := uint(0); k <= MaxK; k++ {
		bits := partitionCostBits(k, values)
		if bits < bestBits {
			bestBits = bits
			bestParam = k
		}
	}
	return bestParam, bestBits
}

// partitionCostBits returns the number of bits needed to Rice-code values at
// parameter k: an unary quotient plus stop bit, plus k remainder bits, per
// value.
func partitionCostBits(k uint, values []int32) int {
	bits := 0
	for _, v := range values {
		u := sdsp.ZigZagEncode(v)
		quo := u >> k
		bits += int(quo) + 1 + int(k)
	}
	return bits
}

// EstimateBits returns the estimated coded size, in bits, of values under
// this package's partitioning scheme, without writing anything. Used by the
// block partition estimator as the dominant cost term.
func EstimateBits(values []int32) int {
	total := 0
	for start := 0; start < len(values); start += PartitionSamples {
		end := start + PartitionSamples
		if end > len(values) {
			end = len(values)
		}
		_, bits := bestK(values[start:end])
		total += KBits + bits
	}
	return total
}

// WriteArray emits values to bw as a sequence of partitions, each preceded
// by its KBits-wide Rice parameter.
func WriteArray(bw *bitio.Writer, values []int32) error {
	for start := 0; start < len(values); start += PartitionSamples {
		end := start + PartitionSamples
		if end > len(values) {
			end = len(values)
		}
		part := values[start:end]
		k, _ := bestK(part)
		if err := bw.PutBits(KBits, uint32(k)); err != nil {
			return err
		}
		for _, v := range part {
			if err := writeOne(bw, v, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeOne Rice-codes a single signed value at parameter k: zig-zag map,
// unary-coded quotient (that many zero bits then a one bit), then k
// remainder bits MSB-first.
func writeOne(bw *bitio.Writer, v int32, k uint) error {
	u := sdsp.ZigZagEncode(v)
	quo := u >> k
	for i := uint32(0); i < quo; i++ {
		if err := bw.PutBit(0); err != nil {
			return err
		}
	}
	if err := bw.PutBit(1); err != nil {
		return err
	}
	if k > 0 {
		rem := u & ((1 << k) - 1)
		if err := bw.PutBits(k, rem); err != nil {
			return err
		}
	}
	return nil
}
