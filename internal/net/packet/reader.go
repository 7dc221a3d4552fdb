package packet

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrShortRead means the buffer ends before the message does. The caller
	// should wait for more bytes and decode again from the same start.
	ErrShortRead = errors.New("packet: short read")
	// ErrUnknownOpcode means the first byte is not a known message code.
	ErrUnknownOpcode = errors.New("packet: unknown opcode")
	// ErrMalformed means the payload holds values no encoder produces.
	ErrMalformed = errors.New("packet: malformed payload")
)

// Reader reads message fields from a buffer. Byte 0 is always the opcode.
// The first failure sticks: later reads return zero values and Err reports
// the original cause.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	r := &Reader{data: data, off: 1} // skip opcode byte
	if len(data) == 0 {
		r.off = 0
		r.err = ErrShortRead
	}
	return r
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// Err returns the first error hit while reading, or nil.
func (r *Reader) Err() error { return r.err }

// Offset returns the number of bytes consumed so far, opcode included.
func (r *Reader) Offset() int { return r.off }

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.data) {
		r.err = ErrShortRead
		return false
	}
	return true
}

// fail records a malformed value unless an earlier error is already set.
func (r *Reader) fail() {
	if r.err == nil {
		r.err = ErrMalformed
	}
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian uint32.
func (r *Reader) ReadD() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

// ReadF reads an IEEE-754 float32.
func (r *Reader) ReadF() float32 {
	return math.Float32frombits(r.ReadD())
}

// ReadBool reads one byte that must be 0 or 1.
func (r *Reader) ReadBool() bool {
	v := r.ReadC()
	if v > 1 {
		r.fail()
		return false
	}
	return v == 1
}

// ReadS reads a u16 byte length followed by that many raw bytes.
func (r *Reader) ReadS() string {
	n := int(r.ReadH())
	if !r.need(n) {
		return ""
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
