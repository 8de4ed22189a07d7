package sla

import (
	"encoding/binary"

	"github.com/go-sla/sla/internal/crc16"
	"github.com/mewkiz/pkg/errutil"
)

// signature is the fixed 4-byte file magic.
var signature = [4]byte{0x53, 0x4C, 0x2A, 0x20} // "SL* "

// EncodeHeader writes the fixed-size file header into buf[0:HeaderSize] and
// returns the number of bytes written. Calling EncodeHeader twice with an
// identical HeaderInfo yields identical bytes: the function has no side
// effects beyond writing into buf.
func EncodeHeader(info HeaderInfo, buf []byte) (int, error) {
	if len(buf) < HeaderSize {
		return 0, errutil.Err(InsufficientBufferSize)
	}
	if info.WaveFormat.NumChannels == 0 || int(info.WaveFormat.NumChannels) > MaxChannels {
		return 0, errutil.Err(InvalidArgument)
	}

	b := buf[:HeaderSize]
	copy(b[0:4], signature[:])
	binary.BigEndian.PutUint32(b[4:8], HeaderSize-8)
	// b[8:10] (header CRC16) is patched below, after the rest is written.
	binary.BigEndian.PutUint32(b[10:14], FormatVersion)
	b[14] = info.WaveFormat.NumChannels
	binary.BigEndian.PutUint32(b[15:19], info.NumSamples)
	binary.BigEndian.PutUint32(b[19:23], info.WaveFormat.SamplingRate)
	b[23] = info.WaveFormat.BitPerSample
	b[24] = info.EncodeParameter.ParcorOrder
	b[25] = info.EncodeParameter.LongtermOrder
	b[26] = info.EncodeParameter.LMSOrderPerFilter
	b[27] = info.EncodeParameter.NumLMSFilterCascade
	b[28] = byte(info.EncodeParameter.ChProcessMethod)
	binary.BigEndian.PutUint32(b[29:33], info.NumBlocks)
	binary.BigEndian.PutUint16(b[33:35], info.EncodeParameter.MaxNumBlockSamples)
	binary.BigEndian.PutUint32(b[35:39], info.MaxBlockSize)

	sum := crc16.Checksum(b[HeaderCRC16CalcStartOffset:HeaderSize])
	binary.BigEndian.PutUint16(b[8:10], sum)

	return HeaderSize, nil
}
