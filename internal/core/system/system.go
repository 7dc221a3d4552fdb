package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: accept, poll sockets, dispatch messages
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: simulation
	PhasePostUpdate              // 3: voting, gathering, region transitions
	PhaseOutput                  // 4: snapshots + flush
	PhasePersist                 // 5: hand records to the recorder
	PhaseCleanup                 // 6: drop disconnected players
)

var phaseNames = [...]string{"input", "pre_update", "update", "post_update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is one step of the server tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
