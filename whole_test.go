package sla

import (
	"math"
	"testing"
)

func TestEncodeWholeRewritesHeaderTotals(t *testing.T) {
	e, err := Create(testCapacity())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetWaveFormat(WaveFormat{NumChannels: 1, SamplingRate: 44100, BitPerSample: 16}); err != nil {
		t.Fatal(err)
	}
	ep := EncodeParameter{
		ParcorOrder:        4,
		MaxNumBlockSamples: 4096,
		ChProcessMethod:    ChProcessRaw,
		WindowFunctionType: WindowHann,
	}
	if err := e.SetEncodeParameter(ep); err != nil {
		t.Fatal(err)
	}

	const n = 4096
	in := [][]int32{make([]int32, n)}
	buf := make([]byte, 1<<16)

	size, err := e.EncodeWhole(in, n, buf)
	if err != nil {
		t.Fatal(err)
	}
	if size <= HeaderSize {
		t.Fatalf("encoded size %d should exceed header alone", size)
	}

	decoded, err := decodeHeaderForTest(buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.NumSamples != n {
		t.Fatalf("num_samples = %d, want %d", decoded.NumSamples, n)
	}
	if decoded.NumBlocks != 1 {
		t.Fatalf("num_blocks = %d, want 1 (silent run fits in a single block)", decoded.NumBlocks)
	}
	if decoded.MaxBlockSize == InvalidSentinel || decoded.MaxBlockSize == 0 {
		t.Fatalf("max_block_size not rewritten: %#x", decoded.MaxBlockSize)
	}
}

// decodeHeaderForTest reads back the fixed fields EncodeHeader writes,
// without depending on a decoder package (none exists in this module).
func decodeHeaderForTest(buf []byte) (HeaderInfo, error) {
	var info HeaderInfo
	if len(buf) < HeaderSize {
		return info, errInsufficient
	}
	info.WaveFormat.NumChannels = buf[14]
	info.NumSamples = be32(buf[15:19])
	info.WaveFormat.SamplingRate = be32(buf[19:23])
	info.WaveFormat.BitPerSample = buf[23]
	info.EncodeParameter.ParcorOrder = buf[24]
	info.EncodeParameter.LongtermOrder = buf[25]
	info.EncodeParameter.LMSOrderPerFilter = buf[26]
	info.EncodeParameter.NumLMSFilterCascade = buf[27]
	info.EncodeParameter.ChProcessMethod = ChProcessMethod(buf[28])
	info.NumBlocks = be32(buf[29:33])
	info.EncodeParameter.MaxNumBlockSamples = be16(buf[33:35])
	info.MaxBlockSize = be32(buf[35:39])
	return info, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func be16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

var errInsufficient = errStatus(InsufficientBufferSize)

func errStatus(s Status) error { return s }

func TestSearchOptimalBlockPartitionsCoverage(t *testing.T) {
	e, err := Create(testCapacity())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetWaveFormat(WaveFormat{NumChannels: 1, SamplingRate: 44100, BitPerSample: 16}); err != nil {
		t.Fatal(err)
	}
	ep := EncodeParameter{
		ParcorOrder:        4,
		MaxNumBlockSamples: 8192,
		ChProcessMethod:    ChProcessRaw,
		WindowFunctionType: WindowHann,
	}
	if err := e.SetEncodeParameter(ep); err != nil {
		t.Fatal(err)
	}

	// No leading silence, so SearchOptimalBlockPartitions must fall
	// through to the full DP search rather than the silence short-circuit,
	// and its returned lengths must cover the entire window (P7).
	const n = 8192
	in := make([]int32, n)
	for i := 0; i < n; i++ {
		v := int32(15000 * math.Sin(2*math.Pi*float64(i)*440.0/44100.0))
		in[i] = v << 16
	}

	lengths, err := e.SearchOptimalBlockPartitions([][]int32{in}, n, MinBlockNumSamples, int(ep.MaxNumBlockSamples), SearchBlockNumSamplesDelta)
	if err != nil {
		t.Fatal(err)
	}
	sum := 0
	for _, l := range lengths {
		if l < MinBlockNumSamples || l > int(ep.MaxNumBlockSamples) {
			t.Fatalf("partition length %d out of [%d,%d]", l, MinBlockNumSamples, ep.MaxNumBlockSamples)
		}
		sum += l
	}
	if sum != n {
		t.Fatalf("partition lengths sum to %d, want %d", sum, n)
	}
}

func TestEncodeWholeLMSCascadeReducesSize(t *testing.T) {
	makeEncoder := func(cascade uint8) *Encoder {
		e, err := Create(testCapacity())
		if err != nil {
			t.Fatal(err)
		}
		if err := e.SetWaveFormat(WaveFormat{NumChannels: 1, SamplingRate: 44100, BitPerSample: 16}); err != nil {
			t.Fatal(err)
		}
		ep := EncodeParameter{
			ParcorOrder:         8,
			LongtermOrder:       0,
			LMSOrderPerFilter:   8,
			NumLMSFilterCascade: cascade,
			MaxNumBlockSamples:  4096,
			ChProcessMethod:     ChProcessRaw,
			WindowFunctionType:  WindowHann,
		}
		if err := e.SetEncodeParameter(ep); err != nil {
			t.Fatal(err)
		}
		return e
	}

	const n = 10000
	raw := make([]int32, n)
	for i := 0; i < n; i++ {
		v := int32(12000*math.Sin(2*math.Pi*float64(i)*220.0/44100.0) +
			4000*math.Sin(2*math.Pi*float64(i)*1300.0/44100.0))
		raw[i] = v << 16
	}

	e0 := makeEncoder(0)
	buf0 := make([]byte, 1<<20)
	size0, err := e0.EncodeWhole([][]int32{append([]int32(nil), raw...)}, n, buf0)
	if err != nil {
		t.Fatal(err)
	}

	e3 := makeEncoder(3)
	buf3 := make([]byte, 1<<20)
	size3, err := e3.EncodeWhole([][]int32{append([]int32(nil), raw...)}, n, buf3)
	if err != nil {
		t.Fatal(err)
	}

	if size3 >= size0 {
		t.Fatalf("expected cascade=3 (%d bytes) to beat cascade=0 (%d bytes) on a tonal signal", size3, size0)
	}
}
