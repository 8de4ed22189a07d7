package sla

import (
	"github.com/go-sla/sla/internal/bitio"
	"github.com/go-sla/sla/internal/crc16"
	"github.com/go-sla/sla/internal/lms"
	"github.com/go-sla/sla/internal/longterm"
	"github.com/go-sla/sla/internal/parcor"
	"github.com/go-sla/sla/internal/rice"
	"github.com/go-sla/sla/internal/sdsp"
	"github.com/mewkiz/pkg/errutil"
)

// blockSyncWord is the 16-bit sync code every block begins with.
const blockSyncWord = 0xFFFF

// EncodeBlock encodes numSamples samples of in (one slice per channel) into
// buf, following the per-channel pipeline and bit layout of a single block.
// Preconditions: numSamples must not exceed the configured
// max_num_block_samples, and len(in) must equal the configured channel
// count.
func (e *Encoder) EncodeBlock(in [][]int32, numSamples int, buf []byte) (int, error) {
	if !e.waveFormatSet || !e.encodeParameterSet {
		return 0, errutil.Err(InvalidArgument)
	}
	if numSamples > int(e.encodeParameter.MaxNumBlockSamples) {
		return 0, errutil.Err(ExceedHandleCapacity)
	}
	numChannels := int(e.waveFormat.NumChannels)
	if len(in) != numChannels {
		return 0, errutil.Err(InvalidArgument)
	}
	if e.encodeParameter.ChProcessMethod == ChProcessStereoMS && numChannels != 2 {
		return 0, errutil.Err(InvalidChProcessMethod)
	}

	bitPerSample := e.waveFormat.BitPerSample
	parcorOrder := int(e.encodeParameter.ParcorOrder)
	longtermOrder := int(e.encodeParameter.LongtermOrder)
	lmsOrder := int(e.encodeParameter.LMSOrderPerFilter)
	lmsCascade := int(e.encodeParameter.NumLMSFilterCascade)

	windowType, ok := e.encodeParameter.WindowFunctionType.toSDSP()
	if !ok {
		return 0, errutil.Err(InvalidWindowFunctionType)
	}
	if err := sdsp.MakeWindow(windowType, e.window[:numSamples], numSamples); err != nil {
		return 0, errutil.Err(err)
	}

	// Normalize/downshift.
	for ch := 0; ch < numChannels; ch++ {
		for i := 0; i < numSamples; i++ {
			e.inputDouble[ch][i] = float64(in[ch][i]) * pow2Neg31
			e.inputInt32[ch][i] = in[ch][i] >> (32 - bitPerSample)
		}
	}

	// Channel process.
	if e.encodeParameter.ChProcessMethod == ChProcessStereoMS {
		sdsp.LRtoMSDouble(e.inputDouble[:2], 2, numSamples)
		sdsp.LRtoMSInt32(e.inputInt32[:2], 2, numSamples)
	}

	// Silence detect.
	for ch := 0; ch < numChannels; ch++ {
		e.isSilenceBlock[ch] = allZero(e.inputInt32[ch][:numSamples])
	}

	for ch := 0; ch < numChannels; ch++ {
		if e.isSilenceBlock[ch] {
			continue
		}

		sdsp.ApplyWindow(e.window[:numSamples], e.inputDouble[ch][:numSamples], numSamples)
		sdsp.PreEmphasisDouble(e.inputDouble[ch][:numSamples], numSamples, PreEmphasisCoefficientShift)
		sdsp.PreEmphasisInt32(e.inputInt32[ch][:numSamples], numSamples, PreEmphasisCoefficientShift)

		if err := parcor.Analyze(e.inputDouble[ch][:numSamples], numSamples, e.parcorCoefD[ch], parcorOrder); err != nil {
			return 0, errutil.Err(FailedToCalculateCoef)
		}
		e.parcorCoefQ31[ch][0] = 0
		for ord := 1; ord <= parcorOrder; ord++ {
			qbits := parcor.QBitsForOrder(ord)
			e.parcorCoefQ31[ch][ord] = parcor.Quantize(e.parcorCoefD[ch][ord], qbits)
		}
		parcor.Predict(e.inputInt32[ch][:numSamples], numSamples, e.parcorCoefQ31[ch], parcorOrder, e.residual[ch][:numSamples])

		e.pitchPeriod[ch] = 0
		if longtermOrder > 0 {
			for i := 0; i < numSamples; i++ {
				e.residualDouble[ch][i] = float64(e.residual[ch][i])
			}
			period, coef, err := longterm.Analyze(e.residualDouble[ch][:numSamples], numSamples, longtermOrder,
				LongtermMinPitchThreshold, LongtermMaxPeriod, NumPitchCandidates)
			if err == nil && period < LongtermMaxPeriod {
				e.pitchPeriod[ch] = period
				copy(e.longtermCoefD[ch], coef)
			}
			for ord := 0; ord < longtermOrder; ord++ {
				e.longtermCoefQ31[ch][ord] = longterm.Quantize(e.longtermCoefD[ch][ord])
			}
			if e.pitchPeriod[ch] >= LongtermMinPitchThreshold {
				longterm.Predict(e.residual[ch][:numSamples], numSamples, e.longtermCoefQ31[ch], longtermOrder,
					e.pitchPeriod[ch], e.tmpResidual[ch][:numSamples])
				copy(e.residual[ch][:numSamples], e.tmpResidual[ch][:numSamples])
			}
		}

		for pass := 0; pass < lmsCascade; pass++ {
			if lmsOrder <= 0 {
				return 0, errutil.Err(FailedToPredict)
			}
			f, err := lms.New(lmsOrder)
			if err != nil {
				return 0, errutil.Err(FailedToPredict)
			}
			f.Forward(e.residual[ch][:numSamples], numSamples, e.tmpResidual[ch][:numSamples])
			copy(e.residual[ch][:numSamples], e.tmpResidual[ch][:numSamples])
		}
	}

	bw := bitio.NewWriter(buf)
	if err := bw.PutBits(16, blockSyncWord); err != nil {
		return 0, errutil.Err(InsufficientBufferSize)
	}
	if err := bw.PutBits(32, 0); err != nil { // next-block offset, patched below
		return 0, errutil.Err(InsufficientBufferSize)
	}
	if err := bw.PutBits(16, 0); err != nil { // block CRC16, patched below
		return 0, errutil.Err(InsufficientBufferSize)
	}
	if err := bw.PutBits(16, uint32(numSamples)); err != nil {
		return 0, errutil.Err(InsufficientBufferSize)
	}

	for ch := 0; ch < numChannels; ch++ {
		if e.isSilenceBlock[ch] {
			if err := bw.PutBit(1); err != nil {
				return 0, errutil.Err(InsufficientBufferSize)
			}
			continue
		}
		if err := bw.PutBit(0); err != nil {
			return 0, errutil.Err(InsufficientBufferSize)
		}
		for ord := 1; ord <= parcorOrder; ord++ {
			qbits := parcor.QBitsForOrder(ord)
			narrow := parcor.Dequantize(e.parcorCoefQ31[ch][ord], qbits)
			if err := bw.PutBits(qbits, sdsp.ZigZagEncode(narrow)); err != nil {
				return 0, errutil.Err(InsufficientBufferSize)
			}
		}
		if e.pitchPeriod[ch] >= LongtermMinPitchThreshold {
			if err := bw.PutBit(1); err != nil {
				return 0, errutil.Err(InsufficientBufferSize)
			}
			if err := bw.PutBits(10, uint32(e.pitchPeriod[ch])); err != nil {
				return 0, errutil.Err(InsufficientBufferSize)
			}
			for ord := 0; ord < longtermOrder; ord++ {
				narrow := longterm.Dequantize(e.longtermCoefQ31[ch][ord])
				if err := bw.PutBits(16, sdsp.ZigZagEncode(narrow)); err != nil {
					return 0, errutil.Err(InsufficientBufferSize)
				}
			}
		} else {
			if err := bw.PutBit(0); err != nil {
				return 0, errutil.Err(InsufficientBufferSize)
			}
		}
	}

	for ch := 0; ch < numChannels; ch++ {
		if e.isSilenceBlock[ch] {
			continue
		}
		if err := rice.WriteArray(bw, e.residual[ch][:numSamples]); err != nil {
			return 0, errutil.Err(InsufficientBufferSize)
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, errutil.Err(InsufficientBufferSize)
	}
	outputSize := int(bw.Tell())

	sum := crc16.Checksum(buf[BlockCRC16CalcStartOffset:outputSize])

	if err := bw.Seek(bitio.SeekSet, BlockCRC16CalcStartOffset-6); err != nil {
		return 0, errutil.Err(err)
	}
	if err := bw.PutBits(32, uint32(outputSize-6)); err != nil {
		return 0, errutil.Err(err)
	}
	if err := bw.PutBits(16, uint32(sum)); err != nil {
		return 0, errutil.Err(err)
	}

	return outputSize, nil
}

// pow2Neg31 is 2^-31, the normalization factor turning a full-range int32
// sample into a double in [-1, 1).
const pow2Neg31 = 1.0 / (1 << 31)

func allZero(x []int32) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}
