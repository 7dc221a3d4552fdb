package net

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PeerOptions configures a Peer's queues, deadlines and inbound limit.
type PeerOptions struct {
	InQueueSize  int
	OutQueueSize int
	ReadTimeout  time.Duration // payload deadline once an opcode is seen
	WriteTimeout time.Duration
	RateLimit    float64 // messages per second, 0 = unlimited
	RateBurst    int
}

// Peer is one end of a connection carrying inbound messages of type M.
// Network I/O runs in dedicated goroutines; Poll, Send and FlushOutput are
// called only from the owning loop.
type Peer[M any] struct {
	ID   uint64
	conn net.Conn

	InQueue  chan []byte // raw chunks, readLoop → owner
	OutQueue chan []byte // encoded messages, owner → writeLoop

	IP string

	asm     *Assembler[M]
	limiter *rate.Limiter
	outBuf  [][]byte // buffered messages, flushed once per tick

	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	log *zap.Logger
}

func NewPeer[M any](conn net.Conn, id uint64, decode DecodeFunc[M], opts PeerOptions, log *zap.Logger) *Peer[M] {
	if opts.InQueueSize <= 0 {
		opts.InQueueSize = 64
	}
	if opts.OutQueueSize <= 0 {
		opts.OutQueueSize = 256
	}
	p := &Peer[M]{
		ID:           id,
		conn:         conn,
		InQueue:      make(chan []byte, opts.InQueueSize),
		OutQueue:     make(chan []byte, opts.OutQueueSize),
		IP:           conn.RemoteAddr().String(),
		asm:          NewAssembler(decode, opts.ReadTimeout),
		writeTimeout: opts.WriteTimeout,
		closeCh:      make(chan struct{}),
		shutdownCh:   make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = int(opts.RateLimit)
		}
		p.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return p
}

// Start launches the reader and writer goroutines.
func (p *Peer[M]) Start() {
	go p.readLoop()
	go p.writeLoop()
}

// Poll returns at most one complete inbound message without blocking.
// ok is false when nothing complete has arrived. Errors are terminal for the
// connection: ErrReadTimeout, ErrDisconnected, ErrRateLimited or a decode
// error from the packet package.
func (p *Peer[M]) Poll(now time.Time) (msg M, ok bool, err error) {
	// Observe closed before draining: every chunk queued by readLoop is
	// visible once its Close is.
	wasClosed := p.closed.Load()
	for drained := false; !drained; {
		select {
		case chunk := <-p.InQueue:
			p.asm.Feed(chunk, now)
		default:
			drained = true
		}
	}

	msg, ok, err = p.asm.Next(now)
	if err != nil {
		return msg, false, err
	}
	if !ok {
		if wasClosed {
			return msg, false, ErrDisconnected
		}
		return msg, false, nil
	}
	if p.limiter != nil && !p.limiter.AllowN(now, 1) {
		return msg, false, ErrRateLimited
	}
	return msg, true, nil
}

// Send buffers an encoded message. Nothing reaches TCP until FlushOutput.
func (p *Peer[M]) Send(data []byte) {
	if p.closed.Load() {
		return
	}
	p.outBuf = append(p.outBuf, data)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop.
// Non-blocking: if OutQueue is full the peer is disconnected.
func (p *Peer[M]) FlushOutput() {
	for _, data := range p.outBuf {
		select {
		case p.OutQueue <- data:
		default:
			p.log.Warn("output queue full, dropping slow connection")
			p.Close()
			p.outBuf = p.outBuf[:0]
			return
		}
	}
	p.outBuf = p.outBuf[:0]
}

// Close shuts the connection down. Safe to call more than once.
func (p *Peer[M]) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.closeCh)
		p.conn.Close()
	})
}

// Shutdown flushes buffered output and closes the peer once the writeLoop
// has sent everything queued.
func (p *Peer[M]) Shutdown() {
	if p.closed.Load() {
		return
	}
	p.FlushOutput()
	p.shutdownOnce.Do(func() { close(p.shutdownCh) })
}

func (p *Peer[M]) IsClosed() bool {
	return p.closed.Load()
}

// Done is closed when the peer closes.
func (p *Peer[M]) Done() <-chan struct{} {
	return p.closeCh
}

// readLoop pushes raw chunks onto InQueue. Framing happens in Poll.
func (p *Peer[M]) readLoop() {
	defer p.Close()

	buf := make([]byte, 4096)
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			// Blocks only this connection when the owner falls behind.
			select {
			case p.InQueue <- chunk:
			case <-p.closeCh:
				return
			}
		}
		if err != nil {
			if !p.closed.Load() {
				p.log.Debug("read ended", zap.Error(err))
			}
			return
		}
	}
}

// writeLoop coalesces queued messages and writes them in full.
func (p *Peer[M]) writeLoop() {
	defer p.Close()

	var batch []byte
	for {
		select {
		case data := <-p.OutQueue:
			batch = append(batch[:0], data...)
			for more := true; more; {
				select {
				case next := <-p.OutQueue:
					batch = append(batch, next...)
				default:
					more = false
				}
			}
			if !p.write(batch) {
				return
			}
		case <-p.shutdownCh:
			batch = batch[:0]
			for more := true; more; {
				select {
				case next := <-p.OutQueue:
					batch = append(batch, next...)
				default:
					more = false
				}
			}
			if len(batch) > 0 {
				p.write(batch)
			}
			return
		case <-p.closeCh:
			return
		}
	}
}

func (p *Peer[M]) write(data []byte) bool {
	if p.writeTimeout > 0 {
		p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout))
	}
	if err := WriteFull(p.conn, data); err != nil {
		if !p.closed.Load() {
			p.log.Debug("write failed", zap.Error(err))
		}
		return false
	}
	return true
}
