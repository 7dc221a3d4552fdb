package system

import (
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/admin"
	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	coresys "github.com/RyanBerge/SphereDefender-sub000/internal/core/system"
	"github.com/RyanBerge/SphereDefender-sub000/internal/handler"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
)

// EventSystem delivers last tick's events. Phase 1 (PreUpdate).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// SimulationSystem advances the region and its players. Phase 2 (Update).
type SimulationSystem struct {
	deps    *handler.Deps
	metrics *admin.Metrics
}

func NewSimulationSystem(deps *handler.Deps, metrics *admin.Metrics) *SimulationSystem {
	return &SimulationSystem{deps: deps, metrics: metrics}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SimulationSystem) Update(dt time.Duration) {
	w := s.deps.World
	if w.Phase != world.PhaseGame {
		return
	}
	res := w.Simulate(dt.Seconds())
	handler.ApplyTick(res, s.deps)
	for range res.Kills {
		s.metrics.EnemyKilled()
	}
	if w.Region != nil {
		s.metrics.SetEnemies(w.Region.LivingEnemies())
	}
}

// VoteSystem resolves the open overmap or menu vote. Phase 3 (PostUpdate).
type VoteSystem struct {
	deps *handler.Deps
}

func NewVoteSystem(deps *handler.Deps) *VoteSystem {
	return &VoteSystem{deps: deps}
}

func (s *VoteSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *VoteSystem) Update(_ time.Duration) {
	if s.deps.World.Phase == world.PhaseGame {
		handler.ResolveVotes(s.deps)
	}
}
