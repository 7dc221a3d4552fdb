package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

var (
	ErrLobbyExists   = errors.New("lobby already exists")
	ErrNoLobby       = errors.New("no open lobby")
	ErrLobbyFull     = errors.New("lobby full")
	ErrNotOwner      = errors.New("not the lobby owner")
	ErrUnknownWeapon = errors.New("unknown weapon")
	ErrWrongPhase    = errors.New("wrong session phase")
)

// ── Lobby ───────────────────────────────────────────────────────────

// InitLobby opens the lobby with p as owner.
func (s *State) InitLobby(p *Player, name string) error {
	if s.Phase != PhaseUninitialized {
		return ErrLobbyExists
	}
	if !s.assignID(p) {
		return ErrLobbyFull
	}
	p.Name = s.uniqueName(SanitizeName(name, s.Cfg.MaxNameLength), p)
	p.Weapon = s.defaultWeapon()
	p.Status = packet.StatusMenus
	s.OwnerID = p.ID
	s.Phase = PhaseLobby
	s.Initialized = true
	return nil
}

// JoinLobby adds p to the open lobby.
func (s *State) JoinLobby(p *Player, name string) error {
	if s.Phase != PhaseLobby {
		return ErrNoLobby
	}
	if s.Cfg.MaxPlayers > 0 && len(s.Participants()) >= s.Cfg.MaxPlayers {
		return ErrLobbyFull
	}
	if !s.assignID(p) {
		return ErrLobbyFull
	}
	p.Name = s.uniqueName(SanitizeName(name, s.Cfg.MaxNameLength), p)
	p.Weapon = s.defaultWeapon()
	p.Status = packet.StatusMenus
	return nil
}

// ChangeProperty updates a lobby member's name and weapon.
func (s *State) ChangeProperty(p *Player, name string, weapon uint8) error {
	if s.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if s.Defs.Weapons.Get(weapon) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownWeapon, weapon)
	}
	p.Name = s.uniqueName(SanitizeName(name, s.Cfg.MaxNameLength), p)
	p.Weapon = weapon
	return nil
}

func (s *State) defaultWeapon() uint8 {
	if s.Defs.Weapons.Get(1) != nil {
		return 1
	}
	return 0
}

// LobbyMessage lists the lobby for requester.
func (s *State) LobbyMessage(requester uint16) packet.PlayersInLobby {
	m := packet.PlayersInLobby{Requester: requester}
	for _, p := range s.order {
		if p.Participating() {
			m.Players = append(m.Players, p.Info())
		}
	}
	return m
}

// ── Loading ─────────────────────────────────────────────────────────

// StartLoading generates the zone and moves every lobby member to Loading.
// Only the owner may start.
func (s *State) StartLoading(p *Player) error {
	if s.Phase != PhaseLobby {
		return ErrWrongPhase
	}
	if p.ID != s.OwnerID {
		return ErrNotOwner
	}
	zone, err := GenerateZone(s.Rng, s.Defs.Regions, s.Cfg.ZoneColumns, s.Cfg.ZoneRows)
	if err != nil {
		return err
	}
	s.Zone = zone
	s.Phase = PhaseLoading
	for _, q := range s.Participants() {
		q.Status = packet.StatusLoading
		q.Loaded = false
	}
	return nil
}

// MarkLoaded records p's LoadingComplete. It reports whether that completed
// loading for everyone and the game began.
func (s *State) MarkLoaded(p *Player) (bool, error) {
	if s.Phase != PhaseLoading || p.Status != packet.StatusLoading {
		return false, ErrWrongPhase
	}
	p.Loaded = true
	return s.tryBeginGame(), nil
}

func (s *State) tryBeginGame() bool {
	if s.Phase != PhaseLoading {
		return false
	}
	players := s.Participants()
	if len(players) == 0 {
		return false
	}
	for _, q := range players {
		if !q.Loaded {
			return false
		}
	}
	start := s.Zone.Node(s.Zone.Start)
	def := s.Defs.Regions.Get(start.Type)
	s.Region = s.buildRegion(def, start.ID, s.Cfg.BatteryStart)
	s.Phase = PhaseGame
	s.Visited = 1
	for _, q := range players {
		q.Revive()
	}
	s.assignSpawns()
	return true
}

// assignSpawns spreads in-game players evenly on a circle around the
// region's player spawn point.
func (s *State) assignSpawns() {
	var players []*Player
	for _, p := range s.order {
		if p.InGame() {
			players = append(players, p)
		}
	}
	center := s.Region.PlayerSpawn()
	for i, p := range players {
		angle := 2 * math.Pi * float64(i) / float64(len(players))
		p.Pos = center.Add(geom.FromAngle(angle).Scale(s.Cfg.SpawnRadius))
		p.Gathered = false
	}
	s.allGathered = false
}

// ── Departures ──────────────────────────────────────────────────────

// Departure describes what a player leaving changed.
type Departure struct {
	Player      *Player
	WasOwner    bool
	Invalidated bool      // owner left before the game began
	Evicted     []*Player // players dropped with an invalidated session
	NewOwner    uint16    // promoted owner during a game, 0 if none
	GameStarted bool      // the leaver was the last one still loading
}

// Depart marks p disconnected and applies ownership rules. The player stays
// registered until RemovePlayer so the loop can still flush to it.
func (s *State) Depart(p *Player) Departure {
	d := Departure{Player: p}
	wasParticipating := p.Participating()
	p.Status = packet.StatusDisconnected
	p.Gathered = false
	if !wasParticipating {
		return d
	}
	if p.ID == s.OwnerID {
		d.WasOwner = true
		s.OwnerID = 0
		switch s.Phase {
		case PhaseLobby, PhaseLoading:
			d.Invalidated = true
			d.Evicted = s.Participants()
			for _, q := range d.Evicted {
				q.Status = packet.StatusDisconnected
			}
			s.Phase = PhaseUninitialized
			s.Zone = nil
		case PhaseGame:
			if next := s.Participants(); len(next) > 0 {
				s.OwnerID = next[0].ID
				d.NewOwner = s.OwnerID
			}
		}
	}
	if !d.Invalidated {
		d.GameStarted = s.tryBeginGame()
	}
	return d
}
