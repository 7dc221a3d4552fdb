package system

import (
	"sort"
	"time"
)

// Observer receives how long each phase took in one tick.
type Observer func(phase Phase, took time.Duration)

// Runner executes systems in phase order each tick.
type Runner struct {
	systems  []System
	sorted   bool
	observer Observer
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// SetObserver installs a per-phase timing callback.
func (r *Runner) SetObserver(o Observer) {
	r.observer = o
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	if r.observer == nil {
		for _, s := range r.systems {
			s.Update(dt)
		}
		return
	}
	for i := 0; i < len(r.systems); {
		phase := r.systems[i].Phase()
		start := time.Now()
		for ; i < len(r.systems) && r.systems[i].Phase() == phase; i++ {
			r.systems[i].Update(dt)
		}
		r.observer(phase, time.Since(start))
	}
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
