package sla

import "github.com/mewkiz/pkg/errutil"

// EncodeWhole writes a complete stream: a provisional header, every block
// discovered by the partition search, then a final header rewrite carrying
// the discovered num_blocks and max_block_size.
func (e *Encoder) EncodeWhole(in [][]int32, numSamples int, buf []byte) (int, error) {
	if !e.waveFormatSet || !e.encodeParameterSet {
		return 0, errutil.Err(InvalidArgument)
	}
	if len(in) != int(e.waveFormat.NumChannels) {
		return 0, errutil.Err(InvalidArgument)
	}

	header := HeaderInfo{
		WaveFormat:      e.waveFormat,
		EncodeParameter: e.encodeParameter,
		NumSamples:      uint32(numSamples),
		NumBlocks:       0,
		MaxBlockSize:    InvalidSentinel,
	}
	if _, err := EncodeHeader(header, buf); err != nil {
		return 0, err
	}

	curOutputSize := HeaderSize
	maxBlockSize := 0
	numBlocks := 0
	offset := 0

	for offset < numSamples {
		if curOutputSize > len(buf) {
			return 0, errutil.Err(InsufficientBufferSize)
		}

		remaining := numSamples - offset
		maxBlock := minInt(int(e.encodeParameter.MaxNumBlockSamples), remaining)
		minBlock := minInt(MinBlockNumSamples, remaining)

		window := sliceChannelsAt(in, offset)
		lengths, err := e.SearchOptimalBlockPartitions(window, maxBlock, minBlock, maxBlock, SearchBlockNumSamplesDelta)
		if err != nil {
			return 0, err
		}

		for _, length := range lengths {
			blockInput := sliceChannelsAt(in, offset)
			blockSize, err := e.EncodeBlock(blockInput, length, buf[curOutputSize:])
			if err != nil {
				return 0, err
			}
			curOutputSize += blockSize
			offset += length
			if blockSize > maxBlockSize {
				maxBlockSize = blockSize
			}
			numBlocks++
		}

		if e.Logger != nil {
			e.Logger.Printf("sample:%d / %d", offset, numSamples)
		}
	}

	header.NumBlocks = uint32(numBlocks)
	header.MaxBlockSize = uint32(maxBlockSize)
	if _, err := EncodeHeader(header, buf); err != nil {
		return 0, err
	}

	return curOutputSize, nil
}

func sliceChannelsAt(in [][]int32, offset int) [][]int32 {
	out := make([][]int32, len(in))
	for ch := range in {
		out[ch] = in[ch][offset:]
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
