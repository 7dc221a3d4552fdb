package net

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

var (
	// ErrReadTimeout means an opcode arrived but the rest of its message did
	// not follow within the read timeout.
	ErrReadTimeout = errors.New("net: message payload timed out")
	// ErrDisconnected means the peer closed the connection.
	ErrDisconnected = errors.New("net: peer disconnected")
	// ErrRateLimited means the peer sent more messages than allowed.
	ErrRateLimited = errors.New("net: message rate exceeded")
)

// maxZeroWrites bounds how many (0, nil) results WriteFull tolerates before
// giving up on a writer that makes no progress.
const maxZeroWrites = 16

// DecodeFunc decodes one message from the front of a buffer. It returns
// packet.ErrShortRead when the buffer holds only part of the message.
type DecodeFunc[M any] func(buf []byte) (M, int, error)

// Assembler reassembles messages from arbitrarily split byte chunks.
// Messages carry no length prefix, so completeness is decided by decoding.
type Assembler[M any] struct {
	buf          []byte
	decode       DecodeFunc[M]
	timeout      time.Duration
	pendingSince time.Time // arrival of the first byte of the current message
}

func NewAssembler[M any](decode DecodeFunc[M], timeout time.Duration) *Assembler[M] {
	return &Assembler[M]{decode: decode, timeout: timeout}
}

// Feed appends a received chunk.
func (a *Assembler[M]) Feed(chunk []byte, now time.Time) {
	if len(chunk) == 0 {
		return
	}
	if len(a.buf) == 0 {
		a.pendingSince = now
	}
	a.buf = append(a.buf, chunk...)
}

// Buffered returns the number of bytes waiting to be decoded.
func (a *Assembler[M]) Buffered() int { return len(a.buf) }

// Next returns the next complete message. ok is false when no complete
// message is buffered yet; that is not an error until the payload has been
// pending for longer than the timeout.
func (a *Assembler[M]) Next(now time.Time) (msg M, ok bool, err error) {
	if len(a.buf) == 0 {
		return msg, false, nil
	}
	m, n, err := a.decode(a.buf)
	if errors.Is(err, packet.ErrShortRead) {
		if a.timeout > 0 && now.Sub(a.pendingSince) > a.timeout {
			return msg, false, fmt.Errorf("%w: opcode %d, %d bytes buffered", ErrReadTimeout, a.buf[0], len(a.buf))
		}
		return msg, false, nil
	}
	if err != nil {
		return msg, false, err
	}
	rest := copy(a.buf, a.buf[n:])
	a.buf = a.buf[:rest]
	a.pendingSince = now
	return m, true, nil
}

// WriteFull writes all of data, retrying with the unsent suffix whenever
// the writer reports a partial write.
func WriteFull(w io.Writer, data []byte) error {
	zero := 0
	for len(data) > 0 {
		n, err := w.Write(data)
		if n > 0 {
			data = data[n:]
			zero = 0
		}
		if err != nil {
			if n > 0 && len(data) > 0 && errors.Is(err, io.ErrShortWrite) {
				continue
			}
			return fmt.Errorf("write (%d bytes left): %w", len(data), err)
		}
		if n == 0 {
			zero++
			if zero >= maxZeroWrites {
				return fmt.Errorf("write (%d bytes left): %w", len(data), io.ErrNoProgress)
			}
		}
	}
	return nil
}
