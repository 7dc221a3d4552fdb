package system

import (
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/admin"
	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	coresys "github.com/RyanBerge/SphereDefender-sub000/internal/core/system"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// Flusher hands buffered records to a background writer.
type Flusher interface {
	Flush()
}

// PersistSystem hands this tick's history records to the recorder.
// Phase 5 (Persist).
type PersistSystem struct {
	recorder Flusher
}

func NewPersistSystem(recorder Flusher) *PersistSystem {
	return &PersistSystem{recorder: recorder}
}

func (s *PersistSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistSystem) Update(_ time.Duration) {
	s.recorder.Flush()
}

// CleanupSystem removes disconnected players and ends the server once a
// session existed and everyone is gone. Phase 6 (Cleanup).
type CleanupSystem struct {
	world   *world.State
	bus     *event.Bus
	metrics *admin.Metrics
	stop    func()
	log     *zap.Logger

	closing []*net.Session // evicted sessions still flushing
	ended   bool
}

func NewCleanupSystem(ws *world.State, bus *event.Bus, metrics *admin.Metrics, stop func(), log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, bus: bus, metrics: metrics, stop: stop, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	w := s.world
	var gone []*world.Player
	for _, p := range w.Players() {
		if p.Status == packet.StatusDisconnected {
			gone = append(gone, p)
		}
	}
	for _, p := range gone {
		if p.Session != nil && !p.Session.IsClosed() {
			p.Session.Shutdown()
			s.closing = append(s.closing, p.Session)
		}
		w.RemovePlayer(p.SessionID)
	}
	s.metrics.SetPlayers(w.PlayerCount())

	if !s.ended && w.Initialized && w.PlayerCount() == 0 {
		s.ended = true
		event.Emit(s.bus, event.GameEnded{Regions: w.Visited, At: time.Now()})
		s.log.Info("all players gone, ending session", zap.Int("regions", w.Visited))
		if s.stop != nil {
			s.stop()
		}
	}
}

// Ended reports whether the session finished.
func (s *CleanupSystem) Ended() bool { return s.ended }

// Drain waits up to timeout for evicted sessions to finish sending.
func (s *CleanupSystem) Drain(timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for _, sess := range s.closing {
		select {
		case <-sess.Done():
		case <-deadline.C:
			return
		}
	}
	s.closing = nil
}
