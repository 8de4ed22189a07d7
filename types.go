package sla

import "github.com/go-sla/sla/internal/sdsp"

// WindowFunctionType selects the analysis window applied before PARCOR
// analysis.
type WindowFunctionType int

// Window function kinds.
const (
	WindowRect WindowFunctionType = iota
	WindowSin
	WindowHann
	WindowBlackman
)

func (w WindowFunctionType) toSDSP() (sdsp.WindowType, bool) {
	switch w {
	case WindowRect:
		return sdsp.WindowRectangular, true
	case WindowSin:
		return sdsp.WindowSin, true
	case WindowHann:
		return sdsp.WindowHann, true
	case WindowBlackman:
		return sdsp.WindowBlackman, true
	default:
		return 0, false
	}
}

// ChProcessMethod selects whether channels are encoded raw or, for stereo
// input, decorrelated into mid/side first.
type ChProcessMethod int

// Channel process methods.
const (
	ChProcessRaw ChProcessMethod = iota
	ChProcessStereoMS
)

// MaxChannels is the channel-count ceiling a handle can be created with.
const MaxChannels = 8

// FormatVersion is the on-wire format version written into every header.
const FormatVersion = 1

// WaveFormat describes the PCM input.
type WaveFormat struct {
	NumChannels  uint8
	SamplingRate uint32
	BitPerSample uint8
}

// EncodeParameter configures the encoding pipeline.
type EncodeParameter struct {
	ParcorOrder        uint8
	LongtermOrder      uint8
	LMSOrderPerFilter  uint8
	NumLMSFilterCascade uint8
	MaxNumBlockSamples  uint16
	ChProcessMethod     ChProcessMethod
	WindowFunctionType  WindowFunctionType
}

// HeaderInfo is the full set of fields written into the file header.
type HeaderInfo struct {
	WaveFormat      WaveFormat
	EncodeParameter EncodeParameter
	NumSamples      uint32
	NumBlocks       uint32
	MaxBlockSize    uint32
}

// Capacity bounds an Encoder handle is created with; runtime configuration
// via SetWaveFormat/SetEncodeParameter must fit within these bounds or
// EXCEED_HANDLE_CAPACITY is returned.
type Capacity struct {
	MaxNumChannels       uint8
	MaxNumBlockSamples   uint16
	MaxParcorOrder       uint8
	MaxLongtermOrder     uint8
	MaxLMSOrderPerFilter uint8
}

// Pinned numeric constants governing block sizing, quantization width, and
// long-term pitch search.
const (
	MinBlockNumSamples        = 4096
	SearchBlockNumSamplesDelta = 512
	ParcorLowOrderThreshold    = 4
	PreEmphasisCoefficientShift = 5
	LongtermMinPitchThreshold   = 32
	LongtermMaxPeriod           = 1024
	NumPitchCandidates          = 8
)

// HeaderSize is the fixed size in bytes of the file header.
const HeaderSize = 39

// InvalidSentinel marks max_block_size as not-yet-known in the provisional
// header written at the start of EncodeWhole.
const InvalidSentinel = 0xFFFFFFFF

// BlockCRC16CalcStartOffset is the byte offset, within a block, where the
// block's CRC16 coverage begins (after the sync, offset and CRC16 fields
// themselves).
const BlockCRC16CalcStartOffset = 8

// HeaderCRC16CalcStartOffset is the byte offset, within the header, where
// the header's CRC16 coverage begins.
const HeaderCRC16CalcStartOffset = 10
