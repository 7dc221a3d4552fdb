package system

import (
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/admin"
	coresys "github.com/RyanBerge/SphereDefender-sub000/internal/core/system"
	"github.com/RyanBerge/SphereDefender-sub000/internal/handler"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
)

// OutputSystem sends world snapshots at the broadcast rate and flushes every
// session. Phase 4 (Output).
type OutputSystem struct {
	deps     *handler.Deps
	interval time.Duration
	elapsed  time.Duration
	metrics  *admin.Metrics
}

func NewOutputSystem(deps *handler.Deps, interval time.Duration, metrics *admin.Metrics) *OutputSystem {
	return &OutputSystem{deps: deps, interval: interval, metrics: metrics}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(dt time.Duration) {
	w := s.deps.World
	if w.Phase == world.PhaseGame {
		s.elapsed += dt
		if s.elapsed >= s.interval {
			// Keep the remainder so the rate holds when the tick does not
			// divide the interval. One snapshot per tick at most.
			s.elapsed -= s.interval
			if s.elapsed > s.interval {
				s.elapsed = s.interval
			}
			handler.SendSnapshot(s.deps)
			s.metrics.SnapshotSent()
		}
	} else {
		s.elapsed = s.interval
	}

	for _, p := range w.Players() {
		if p.Session != nil {
			p.Session.FlushOutput()
		}
	}
}

// StatusSystem publishes an immutable status view for the admin server.
// Phase 4 (Output).
type StatusSystem struct {
	world    *world.State
	board    *admin.StatusBoard
	name     string
	interval time.Duration
	elapsed  time.Duration
	ticks    uint64
}

func NewStatusSystem(ws *world.State, board *admin.StatusBoard, name string, interval time.Duration) *StatusSystem {
	return &StatusSystem{world: ws, board: board, name: name, interval: interval, elapsed: interval}
}

func (s *StatusSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *StatusSystem) Update(dt time.Duration) {
	s.ticks++
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0

	w := s.world
	st := &admin.Status{
		Server:    s.name,
		Phase:     w.Phase.String(),
		Owner:     w.OwnerID,
		Visited:   w.Visited,
		Paused:    w.Gui != packet.GuiNone,
		Tick:      s.ticks,
		UpdatedAt: time.Now(),
	}
	for _, p := range w.Participants() {
		st.Players = append(st.Players, p.Name)
	}
	if r := w.Region; r != nil && w.Phase == world.PhaseGame {
		st.Region = r.Node
		st.Enemies = r.LivingEnemies()
		st.Battery = r.Battery
	}
	s.board.Publish(st)
}
