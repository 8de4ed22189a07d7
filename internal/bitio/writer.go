// Package bitio provides a MSB-first bit writer over a caller-supplied byte
// buffer, with seek/tell/flush support so a writer can reserve a field,
// continue writing, and later go back and patch the reserved bytes. SLA's
// block format needs exactly that: the next-block offset and block CRC16
// fields are reserved, written as zero, and patched after the block body
// and its own CRC have been computed, which rules out a forward-only bit
// writer backed by an io.Writer.
package bitio

import "github.com/mewkiz/pkg/errutil"

// SeekOrigin selects the reference point for Seek.
type SeekOrigin int

// Seek origins. Seek always takes (origin, offset), pinning the canonical
// order left ambiguous by the original SLABitStream_Seek call site.
const (
	SeekSet SeekOrigin = iota
	SeekCur
	SeekEnd
)

// Writer packs bits MSB-first into a caller-supplied byte buffer.
//
// The zero value is not usable; construct with NewWriter.
type Writer struct {
	buf     []byte
	bytePos int  // index of the byte currently being filled
	bitPos  uint // number of bits already written into buf[bytePos], 0..7
}

// NewWriter returns a Writer that packs bits into buf, starting at offset 0.
// The writer never grows buf; once every byte is consumed, further writes
// fail with ErrInsufficientBuffer.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// ErrInsufficientBuffer is returned when a write would overflow the
// caller-supplied buffer.
var ErrInsufficientBuffer = errutil.Newf("bitio: insufficient buffer")

// Bytes returns the underlying buffer (including not-yet-written capacity).
func (w *Writer) Bytes() []byte {
	return w.buf
}

// PutBit writes a single bit, MSB-first within each byte.
func (w *Writer) PutBit(b uint8) error {
	if w.bytePos >= len(w.buf) {
		return ErrInsufficientBuffer
	}
	mask := byte(1) << (7 - w.bitPos)
	if b != 0 {
		w.buf[w.bytePos] |= mask
	} else {
		w.buf[w.bytePos] &^= mask
	}
	w.bitPos++
	if w.bitPos == 8 {
		w.bitPos = 0
		w.bytePos++
	}
	return nil
}

// PutBits writes the low n bits of value, MSB-first, with n <= 32.
func (w *Writer) PutBits(n uint, value uint32) error {
	if n > 32 {
		return errutil.Newf("bitio: PutBits: n must be <= 32, got %d", n)
	}
	for i := int(n) - 1; i >= 0; i-- {
		bit := uint8((value >> uint(i)) & 1)
		if err := w.PutBit(bit); err != nil {
			return err
		}
	}
	return nil
}

// Tell returns the current position as a byte offset from the start of the
// buffer. The writer must be byte-aligned (see Flush) for the result to
// correspond to a whole number of emitted bytes; a partially written byte at
// the current position is not counted until Flush completes it.
func (w *Writer) Tell() int64 {
	return int64(w.bytePos)
}

// Flush zero-pads the current byte (if partially written) and advances to
// the next byte boundary. Flush is idempotent: calling it again with no
// intervening writes is a no-op.
func (w *Writer) Flush() error {
	if w.bitPos == 0 {
		return nil
	}
	if w.bytePos >= len(w.buf) {
		return ErrInsufficientBuffer
	}
	mask := byte(0xFF) << (8 - w.bitPos)
	w.buf[w.bytePos] &= mask
	w.bitPos = 0
	w.bytePos++
	return nil
}

// Seek repositions the writer to a byte boundary, discarding any partially
// written byte at the old position. Only whole-byte offsets are supported:
// the block encoder only ever seeks to rewrite previously reserved,
// byte-aligned fields.
func (w *Writer) Seek(origin SeekOrigin, offset int64) error {
	var target int64
	switch origin {
	case SeekSet:
		target = offset
	case SeekCur:
		target = int64(w.bytePos) + offset
	case SeekEnd:
		target = int64(len(w.buf)) + offset
	default:
		return errutil.Newf("bitio: Seek: invalid origin %d", origin)
	}
	if target < 0 || target > int64(len(w.buf)) {
		return ErrInsufficientBuffer
	}
	w.bytePos = int(target)
	w.bitPos = 0
	return nil
}

// PeekByte returns the byte at the given byte offset without moving the
// write cursor.
func (w *Writer) PeekByte(offset int64) (byte, error) {
	if offset < 0 || offset >= int64(len(w.buf)) {
		return 0, ErrInsufficientBuffer
	}
	return w.buf[offset], nil
}

// PokeByte overwrites the byte at the given byte offset without moving the
// write cursor.
func (w *Writer) PokeByte(offset int64, value byte) error {
	if offset < 0 || offset >= int64(len(w.buf)) {
		return ErrInsufficientBuffer
	}
	w.buf[offset] = value
	return nil
}
