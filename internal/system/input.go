package system

import (
	"errors"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/admin"
	coresys "github.com/RyanBerge/SphereDefender-sub000/internal/core/system"
	"github.com/RyanBerge/SphereDefender-sub000/internal/handler"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// InputSystem accepts new connections and dispatches at most maxPerTick
// messages per player through the registry. Phase 0 (Input).
type InputSystem struct {
	sessions   <-chan *net.Session
	registry   *packet.Registry
	deps       *handler.Deps
	maxPerTick int
	metrics    *admin.Metrics
	log        *zap.Logger
}

func NewInputSystem(
	sessions <-chan *net.Session,
	registry *packet.Registry,
	deps *handler.Deps,
	maxPerTick int,
	metrics *admin.Metrics,
	log *zap.Logger,
) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 1
	}
	return &InputSystem{
		sessions:   sessions,
		registry:   registry,
		deps:       deps,
		maxPerTick: maxPerTick,
		metrics:    metrics,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	now := time.Now()
	w := s.deps.World

	for accepting := true; accepting; {
		select {
		case sess := <-s.sessions:
			w.AddPlayer(world.NewPlayer(sess, now))
		default:
			accepting = false
		}
	}

	for _, p := range w.Players() {
		if p.Session == nil || p.Status == packet.StatusDisconnected {
			continue
		}
		s.poll(p, now)
	}

	// Early flush so replies leave while the rest of the tick runs.
	for _, p := range w.Players() {
		if p.Session != nil {
			p.Session.FlushOutput()
		}
	}
}

func (s *InputSystem) poll(p *world.Player, now time.Time) {
	for i := 0; i < s.maxPerTick; i++ {
		msg, ok, err := p.Session.Poll(now)
		if err != nil {
			reason := disconnectReason(err)
			s.log.Info("dropping connection",
				zap.Uint64("session", p.SessionID),
				zap.Uint16("player", p.ID),
				zap.String("reason", reason),
				zap.Error(err))
			p.Session.Close()
			handler.HandleDeparture(p, reason, s.deps)
			s.metrics.Disconnected(reason)
			return
		}
		if !ok {
			return
		}
		s.metrics.MessageHandled(msg.ClientOpcode().String())
		if err := s.registry.Dispatch(p, p.Status, msg); err != nil {
			s.log.Debug("dispatch failed", zap.Uint64("session", p.SessionID), zap.Error(err))
		}
		if p.Status == packet.StatusDisconnected {
			return
		}
	}
}

// disconnectReason maps a terminal Poll error to a bounded metric label.
func disconnectReason(err error) string {
	switch {
	case errors.Is(err, net.ErrDisconnected):
		return "closed"
	case errors.Is(err, net.ErrReadTimeout):
		return "timeout"
	case errors.Is(err, net.ErrRateLimited):
		return "rate_limit"
	default:
		return "malformed"
	}
}
