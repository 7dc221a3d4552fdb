// Package client is the protocol side of a front-end: it dials the server,
// sends typed client messages and decodes server messages with the same
// codec the server uses.
package client

import (
	"context"
	"fmt"
	stdnet "net"
	"time"

	gonet "github.com/RyanBerge/SphereDefender-sub000/internal/net"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"go.uber.org/zap"
)

// pollInterval is how long Next sleeps between empty polls.
const pollInterval = time.Millisecond

// Conn is a client connection to a game server.
type Conn struct {
	peer *gonet.Peer[packet.ServerMessage]
	log  *zap.Logger
}

// Dial connects to addr and starts the connection's I/O goroutines.
func Dial(ctx context.Context, addr string, opts gonet.PeerOptions, log *zap.Logger) (*Conn, error) {
	var d stdnet.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tcp, ok := conn.(*stdnet.TCPConn); ok {
		tcp.SetNoDelay(true)
	}
	peer := gonet.NewPeer[packet.ServerMessage](conn, 0, packet.DecodeServerMessage, opts, log)
	peer.Start()
	return &Conn{peer: peer, log: log}, nil
}

// Send encodes m and hands it to the writer immediately.
func (c *Conn) Send(m packet.ClientMessage) {
	c.peer.Send(m.Encode())
	c.peer.FlushOutput()
}

// Poll returns the next complete server message without blocking. Errors
// are terminal: the front-end goes back to its menu.
func (c *Conn) Poll() (packet.ServerMessage, bool, error) {
	return c.peer.Poll(time.Now())
}

// Next blocks until a message arrives, the connection fails or ctx ends.
func (c *Conn) Next(ctx context.Context) (packet.ServerMessage, error) {
	for {
		msg, ok, err := c.Poll()
		if err != nil {
			return nil, err
		}
		if ok {
			return msg, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Close drops the connection.
func (c *Conn) Close() { c.peer.Close() }

// Done is closed when the connection closes.
func (c *Conn) Done() <-chan struct{} { return c.peer.Done() }
