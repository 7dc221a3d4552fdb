package net

import (
	"net"

	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"go.uber.org/zap"
)

// Session is the server side of a client connection: inbound client
// messages, outbound encoded server messages.
type Session = Peer[packet.ClientMessage]

func NewSession(conn net.Conn, id uint64, opts PeerOptions, log *zap.Logger) *Session {
	return NewPeer[packet.ClientMessage](conn, id, packet.DecodeClientMessage, opts, log)
}

// SendMessage encodes m and buffers it on sess.
func SendMessage(sess *Session, m packet.ServerMessage) {
	sess.Send(m.Encode())
}
