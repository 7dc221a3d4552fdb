package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// PlayerStatus is a player's lifecycle state. It gates which opcodes a
// player may send and is also sent in snapshots.
type PlayerStatus uint8

const (
	StatusUninitialized PlayerStatus = iota
	StatusDisconnected
	StatusMenus   // in the lobby
	StatusLoading // zone received, loading assets
	StatusAlive
	StatusDead
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusUninitialized:
		return "Uninitialized"
	case StatusDisconnected:
		return "Disconnected"
	case StatusMenus:
		return "Menus"
	case StatusLoading:
		return "Loading"
	case StatusAlive:
		return "Alive"
	case StatusDead:
		return "Dead"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// HandlerFunc is the callback signature for message handlers.
// The player pointer is passed as an opaque interface to avoid import cycles.
type HandlerFunc func(sess any, msg ClientMessage)

type handlerEntry struct {
	fn            HandlerFunc
	allowedStates map[PlayerStatus]bool
}

// Registry maps opcodes to handlers with status-based access control.
type Registry struct {
	handlers map[ClientOpcode]*handlerEntry
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[ClientOpcode]*handlerEntry),
		log:      log,
	}
}

// Register maps an opcode to a handler, restricted to the given statuses.
func (reg *Registry) Register(opcode ClientOpcode, states []PlayerStatus, fn HandlerFunc) {
	allowed := make(map[PlayerStatus]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}
	reg.handlers[opcode] = &handlerEntry{
		fn:            fn,
		allowedStates: allowed,
	}
}

// Registered reports whether a handler exists for opcode.
func (reg *Registry) Registered(opcode ClientOpcode) bool {
	_, ok := reg.handlers[opcode]
	return ok
}

// Dispatch finds the handler for msg, validates the player status, and calls
// the handler. A message arriving in a status that does not allow it is
// dropped with a warning; the connection stays up.
func (reg *Registry) Dispatch(sess any, state PlayerStatus, msg ClientMessage) error {
	if msg == nil {
		return fmt.Errorf("nil message")
	}
	opcode := msg.ClientOpcode()
	reg.log.Debug("message received",
		zap.Stringer("opcode", opcode),
		zap.Stringer("status", state),
	)

	entry, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("no handler for opcode", zap.Stringer("opcode", opcode), zap.Stringer("status", state))
		return nil
	}

	if !entry.allowedStates[state] {
		reg.log.Warn("opcode not allowed in this status",
			zap.Stringer("opcode", opcode),
			zap.Stringer("status", state),
		)
		return fmt.Errorf("opcode %s not allowed in status %s", opcode, state)
	}

	return reg.safeCall(entry.fn, sess, msg, opcode)
}

// safeCall executes a handler with panic recovery so a single bad message
// cannot take down the game loop.
func (reg *Registry) safeCall(fn HandlerFunc, sess any, msg ClientMessage, opcode ClientOpcode) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Stringer("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %s: %v", opcode, rec)
		}
	}()
	fn(sess, msg)
	return nil
}
