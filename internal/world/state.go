package world

import (
	"math/rand"

	"github.com/RyanBerge/SphereDefender-sub000/internal/core/ids"
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

// Phase is the server-wide session state.
type Phase uint8

const (
	PhaseUninitialized Phase = iota // no lobby yet
	PhaseLobby
	PhaseLoading
	PhaseGame
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLobby:
		return "lobby"
	case PhaseLoading:
		return "loading"
	case PhaseGame:
		return "game"
	}
	return "unknown"
}

// GameConfig holds the gameplay tunables the world needs.
type GameConfig struct {
	MaxPlayers         int
	MaxNameLength      int
	SpawnRadius        float64
	BatteryStart       float64
	BatteryMax         float64
	LeylineChargeRate  float64 // battery per second in a leyline region
	BatteryCostPerUnit float64 // battery per unit of link distance
	ZoneColumns        int
	ZoneRows           int
}

// DamageCalc computes combat damage. The scripting engine provides the
// live implementation; BaseDamage is the fallback.
type DamageCalc interface {
	PlayerDamage(w *data.Weapon, target *data.EntityDefinition) float64
	EnemyDamage(a *data.AttackDefinition, attacker *data.EntityDefinition, health float64) float64
}

// BaseDamage returns the listed damage values unchanged.
type BaseDamage struct{}

func (BaseDamage) PlayerDamage(w *data.Weapon, _ *data.EntityDefinition) float64 { return w.Damage }

func (BaseDamage) EnemyDamage(a *data.AttackDefinition, _ *data.EntityDefinition, _ float64) float64 {
	return a.Damage
}

// State tracks every connected player and the running game.
// Single-goroutine access only (game loop).
type State struct {
	bySession map[uint64]*Player
	byID      map[uint16]*Player
	order     []*Player // connection order
	ids       *ids.Pool

	Phase       Phase
	Initialized bool // a lobby was created at some point
	OwnerID     uint16

	Defs    *data.Definitions
	Cfg     GameConfig
	Seed    uint64
	Rng     *rand.Rand
	Damage  DamageCalc
	Scripts MenuScripter

	Zone    *Zone
	Region  *Region
	Stash   [packet.StashSize]uint8
	Gui     packet.GuiType // open pausing GUI, GuiNone while running
	Menu    *MenuState
	Visited int // regions entered this game

	allGathered bool
}

func NewState(defs *data.Definitions, cfg GameConfig, seed uint64) *State {
	return &State{
		bySession: make(map[uint64]*Player),
		byID:      make(map[uint16]*Player),
		ids:       ids.NewPool(),
		Defs:      defs,
		Cfg:       cfg,
		Seed:      seed,
		Rng:       rand.New(rand.NewSource(int64(seed))),
		Damage:    BaseDamage{},
	}
}

// AddPlayer registers a freshly accepted connection.
func (s *State) AddPlayer(p *Player) {
	s.bySession[p.SessionID] = p
	s.order = append(s.order, p)
}

// RemovePlayer removes a player and frees its wire id.
func (s *State) RemovePlayer(sessionID uint64) *Player {
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	delete(s.bySession, sessionID)
	if p.ID != 0 {
		delete(s.byID, p.ID)
		s.ids.Release(p.ID)
	}
	for i, q := range s.order {
		if q == p {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return p
}

// assignID gives p a wire id on joining the lobby.
func (s *State) assignID(p *Player) bool {
	if p.ID != 0 {
		return true
	}
	id, ok := s.ids.Acquire()
	if !ok {
		return false
	}
	p.ID = id
	s.byID[id] = p
	return true
}

// GetBySession returns a player by session ID.
func (s *State) GetBySession(sessionID uint64) *Player {
	return s.bySession[sessionID]
}

// GetByID returns a player by wire id.
func (s *State) GetByID(id uint16) *Player {
	return s.byID[id]
}

// Players returns every connected player in connection order. The slice is
// shared; do not modify it.
func (s *State) Players() []*Player {
	return s.order
}

// Participants returns the players that joined the session and are still
// connected.
func (s *State) Participants() []*Player {
	out := make([]*Player, 0, len(s.order))
	for _, p := range s.order {
		if p.Participating() {
			out = append(out, p)
		}
	}
	return out
}

// PlayerCount returns the number of connected players.
func (s *State) PlayerCount() int {
	return len(s.order)
}

// Owner returns the lobby owner, or nil.
func (s *State) Owner() *Player {
	if s.OwnerID == 0 {
		return nil
	}
	return s.byID[s.OwnerID]
}

// Paused reports whether a GUI currently freezes the simulation.
func (s *State) Paused() bool {
	return s.Gui != packet.GuiNone
}

// Broadcast sends m to every participating player.
func (s *State) Broadcast(m packet.ServerMessage) {
	for _, p := range s.order {
		if p.Participating() {
			p.Send(m)
		}
	}
}

// BroadcastExcept sends m to every participating player but skip.
func (s *State) BroadcastExcept(m packet.ServerMessage, skip *Player) {
	for _, p := range s.order {
		if p != skip && p.Participating() {
			p.Send(m)
		}
	}
}

// PlayerStates is the player part of a world snapshot.
func (s *State) PlayerStates() packet.PlayerStates {
	m := packet.PlayerStates{Players: make([]packet.PlayerState, 0, len(s.order))}
	for _, p := range s.order {
		if p.InGame() {
			m.Players = append(m.Players, p.State())
		}
	}
	return m
}

// StashMessage is the current convoy stash.
func (s *State) StashMessage() packet.UpdateStash {
	return packet.UpdateStash{Items: s.Stash}
}

// buildRegion constructs the region for node with this session's seed and
// damage rules.
func (s *State) buildRegion(def *data.RegionDefinition, node uint16, battery float64) *Region {
	r := NewRegion(def, node, s.Defs.Entities, battery, s.Cfg, RegionSeed(s.Seed, node))
	r.SetDamage(s.Damage)
	return r
}
