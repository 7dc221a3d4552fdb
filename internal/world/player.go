package world

import (
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

// MaxHealth is the player health cap.
const MaxHealth = 100.0

// VoteState is one player's ballot in the current vote.
type VoteState struct {
	Voted     bool
	Confirmed bool
	Choice    uint16
}

// Player is a connected client. Created on accept, removed on confirmed
// disconnect. Accessed only from the game loop goroutine.
type Player struct {
	ID        uint16 // wire id, 0 until the player joins a lobby
	SessionID uint64
	Session   *net.Session
	Name      string
	Weapon    uint8
	Status    packet.PlayerStatus

	Pos      geom.Vec2
	Health   float64
	Item     uint8 // held item, data.ItemNone when empty
	Movement packet.Movement
	Console  bool

	// Combat
	Attacking   bool
	AttackAngle float64
	attackTimer float64 // seconds left in the current swing
	cooldown    float64 // seconds until the next attack
	swingHits   map[uint16]bool

	Vote     VoteState
	Gathered bool
	Loaded   bool

	ConnectedAt time.Time
}

func NewPlayer(sess *net.Session, now time.Time) *Player {
	p := &Player{
		Status:      packet.StatusUninitialized,
		Health:      MaxHealth,
		ConnectedAt: now,
	}
	if sess != nil {
		p.Session = sess
		p.SessionID = sess.ID
	}
	return p
}

// Send encodes m and buffers it for this player. No-op without a session.
func (p *Player) Send(m packet.ServerMessage) {
	if p.Session != nil {
		net.SendMessage(p.Session, m)
	}
}

// InGame reports whether the player has a body in the current region.
func (p *Player) InGame() bool {
	return p.Status == packet.StatusAlive || p.Status == packet.StatusDead
}

// Participating reports whether the player has joined the session (lobby
// or later) and is still connected.
func (p *Player) Participating() bool {
	switch p.Status {
	case packet.StatusMenus, packet.StatusLoading, packet.StatusAlive, packet.StatusDead:
		return true
	}
	return false
}

func (p *Player) Alive() bool { return p.Status == packet.StatusAlive }

// SetHealth clamps h into [0, MaxHealth]. Reaching 0 kills the player.
func (p *Player) SetHealth(h float64) {
	p.Health = geom.Clamp(h, 0, MaxHealth)
	if p.Health == 0 && p.Status == packet.StatusAlive {
		p.Status = packet.StatusDead
		p.Attacking = false
		p.attackTimer = 0
		p.Movement = packet.Movement{}
	}
}

// Damage subtracts amount and reports whether it killed the player.
func (p *Player) Damage(amount float64) bool {
	if !p.Alive() || amount <= 0 {
		return false
	}
	p.SetHealth(p.Health - amount)
	return p.Status == packet.StatusDead
}

// Heal adds amount to a living player.
func (p *Player) Heal(amount float64) {
	if p.Alive() {
		p.SetHealth(p.Health + amount)
	}
}

// Revive puts the player back in play at full health.
func (p *Player) Revive() {
	p.Status = packet.StatusAlive
	p.Health = MaxHealth
	p.Attacking = false
	p.attackTimer = 0
	p.cooldown = 0
	p.Movement = packet.Movement{}
}

func (p *Player) ResetVote() { p.Vote = VoteState{} }

// Info is the lobby view of p.
func (p *Player) Info() packet.PlayerInfo {
	return packet.PlayerInfo{ID: p.ID, Name: p.Name, Weapon: p.Weapon}
}

// State is the snapshot view of p.
func (p *Player) State() packet.PlayerState {
	return packet.PlayerState{
		ID:          p.ID,
		Pos:         point(p.Pos),
		Health:      uint8(p.Health + 0.5),
		Status:      p.Status,
		Attacking:   p.Attacking,
		AttackAngle: float32(p.AttackAngle),
	}
}

func point(v geom.Vec2) packet.Point {
	return packet.Point{X: float32(v.X), Y: float32(v.Y)}
}
