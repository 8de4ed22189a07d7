package sla

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-sla/sla/internal/crc16"
)

func monoEncoder(t *testing.T) *Encoder {
	t.Helper()
	e, err := Create(testCapacity())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetWaveFormat(WaveFormat{NumChannels: 1, SamplingRate: 44100, BitPerSample: 16}); err != nil {
		t.Fatal(err)
	}
	ep := EncodeParameter{
		ParcorOrder:         4,
		LongtermOrder:       0,
		LMSOrderPerFilter:   0,
		NumLMSFilterCascade: 0,
		MaxNumBlockSamples:  4096,
		ChProcessMethod:     ChProcessRaw,
		WindowFunctionType:  WindowHann,
	}
	if err := e.SetEncodeParameter(ep); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEncodeBlockSilenceIsOneBitPlusPadding(t *testing.T) {
	e := monoEncoder(t)
	const n = 4096
	in := [][]int32{make([]int32, n)}
	buf := make([]byte, 1<<16)

	size, err := e.EncodeBlock(in, n, buf)
	if err != nil {
		t.Fatal(err)
	}
	// 10 bytes of fixed block header + 1 bit silence flag, padded to a
	// byte boundary: exactly 11 bytes (P4).
	if size != 11 {
		t.Fatalf("silent block size = %d, want 11", size)
	}

	sync := binary.BigEndian.Uint16(buf[0:2])
	if sync != blockSyncWord {
		t.Fatalf("sync = %#x, want %#x", sync, blockSyncWord)
	}
	offsetField := binary.BigEndian.Uint32(buf[2:6])
	if int(offsetField)+6 != size {
		t.Fatalf("offset field %d + 6 != block size %d", offsetField, size)
	}

	crcField := binary.BigEndian.Uint16(buf[6:8])
	want := crc16.Checksum(buf[BlockCRC16CalcStartOffset:size])
	if crcField != want {
		t.Fatalf("block CRC16 = %#x, want %#x", crcField, want)
	}

	silenceFlag := buf[10] >> 7
	if silenceFlag != 1 {
		t.Fatalf("silence flag = %d, want 1", silenceFlag)
	}
}

func TestEncodeBlockNonSilentStereoMS(t *testing.T) {
	e, err := Create(testCapacity())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetWaveFormat(WaveFormat{NumChannels: 2, SamplingRate: 44100, BitPerSample: 16}); err != nil {
		t.Fatal(err)
	}
	ep := EncodeParameter{
		ParcorOrder:         8,
		LongtermOrder:       2,
		LMSOrderPerFilter:   4,
		NumLMSFilterCascade: 1,
		MaxNumBlockSamples:  4096,
		ChProcessMethod:     ChProcessStereoMS,
		WindowFunctionType:  WindowHann,
	}
	if err := e.SetEncodeParameter(ep); err != nil {
		t.Fatal(err)
	}

	const n = 4096
	left := make([]int32, n)
	right := make([]int32, n)
	for i := 0; i < n; i++ {
		v := int32(20000 * math.Sin(2*math.Pi*float64(i)*80.0/44100.0))
		left[i] = v << 16
		right[i] = (v + 7) << 16
	}
	buf := make([]byte, 1<<20)

	size, err := e.EncodeBlock([][]int32{left, right}, n, buf)
	if err != nil {
		t.Fatal(err)
	}

	offsetField := binary.BigEndian.Uint32(buf[2:6])
	if int(offsetField)+6 != size {
		t.Fatalf("offset field %d + 6 != block size %d", offsetField, size)
	}
	crcField := binary.BigEndian.Uint16(buf[6:8])
	want := crc16.Checksum(buf[BlockCRC16CalcStartOffset:size])
	if crcField != want {
		t.Fatalf("block CRC16 = %#x, want %#x", crcField, want)
	}
	numSamplesField := binary.BigEndian.Uint16(buf[8:10])
	if int(numSamplesField) != n {
		t.Fatalf("num_samples field = %d, want %d", numSamplesField, n)
	}
}

func TestEncodeBlockRejectsChannelMismatch(t *testing.T) {
	e := monoEncoder(t)
	buf := make([]byte, 1<<16)
	_, err := e.EncodeBlock([][]int32{make([]int32, 4096), make([]int32, 4096)}, 4096, buf)
	if err == nil {
		t.Fatal("expected error for channel count mismatch")
	}
}

func TestEncodeBlockRejectsOversizeSamples(t *testing.T) {
	e := monoEncoder(t)
	buf := make([]byte, 1<<16)
	_, err := e.EncodeBlock([][]int32{make([]int32, 9000)}, 9000, buf)
	if err == nil {
		t.Fatal("expected error exceeding configured max_num_block_samples")
	}
}

func TestEncodeBlockInsufficientBuffer(t *testing.T) {
	e := monoEncoder(t)
	buf := make([]byte, 5)
	_, err := e.EncodeBlock([][]int32{make([]int32, 4096)}, 4096, buf)
	if err == nil {
		t.Fatal("expected INSUFFICIENT_BUFFER_SIZE")
	}
}
