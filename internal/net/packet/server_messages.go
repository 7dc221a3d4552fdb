package packet

import (
	"fmt"
	"math"
)

// ServerMessage is a decoded server→client message.
type ServerMessage interface {
	ServerOpcode() ServerOpcode
	Encode() []byte
}

// StashSize is the fixed number of convoy stash slots.
const StashSize = 24

// GuiType selects the client overlay opened by SetGuiPause.
type GuiType uint8

const (
	GuiNone      GuiType = 0
	GuiOvermap   GuiType = 1
	GuiMenuEvent GuiType = 2
)

// ── Records ─────────────────────────────────────────────────────────

// Point is a position as sent on the wire.
type Point struct {
	X, Y float32
}

func (w *Writer) writePoint(p Point) {
	w.WriteF(p.X)
	w.WriteF(p.Y)
}

func (r *Reader) readPoint() Point {
	return Point{X: r.ReadF(), Y: r.ReadF()}
}

// PlayerInfo is the lobby view of a player.
type PlayerInfo struct {
	ID     uint16
	Name   string
	Weapon uint8
}

func (w *Writer) writePlayerInfo(p PlayerInfo) {
	w.WriteH(p.ID)
	w.WriteS(p.Name)
	w.WriteC(p.Weapon)
}

func (r *Reader) readPlayerInfo() PlayerInfo {
	return PlayerInfo{ID: r.ReadH(), Name: r.ReadS(), Weapon: r.ReadC()}
}

// PlayerState is one player's entry in a world snapshot.
type PlayerState struct {
	ID          uint16
	Pos         Point
	Health      uint8
	Status      PlayerStatus
	Attacking   bool
	AttackAngle float32
}

// EnemyState is one enemy's entry in a world snapshot.
type EnemyState struct {
	ID       uint16
	Type     uint8
	Pos      Point
	Health   uint16
	Behavior uint8
	Action   uint8
}

// ProjectileState is one projectile's entry in a world snapshot.
type ProjectileState struct {
	ID    uint16
	Pos   Point
	Angle float32
}

// ZoneNode is one region node of the overmap graph.
type ZoneNode struct {
	ID   uint16
	Type uint8
	X, Y float32
}

// ZoneLink connects two zone nodes. Distance is the battery cost.
type ZoneLink struct {
	A, B     uint16
	Distance float32
}

// Collections counted with a u8 are capped at 255 records on encode, those
// counted with a u16 at 65535.
func capCount(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// ── Messages ────────────────────────────────────────────────────────

type PlayerId struct{ ID uint16 }

func (PlayerId) ServerOpcode() ServerOpcode { return S_PlayerId }
func (m PlayerId) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_PlayerId))
	w.WriteH(m.ID)
	return w.Bytes()
}

type PlayerJoined struct{ Player PlayerInfo }

func (PlayerJoined) ServerOpcode() ServerOpcode { return S_PlayerJoined }
func (m PlayerJoined) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_PlayerJoined))
	w.writePlayerInfo(m.Player)
	return w.Bytes()
}

type PlayerLeft struct{ ID uint16 }

func (PlayerLeft) ServerOpcode() ServerOpcode { return S_PlayerLeft }
func (m PlayerLeft) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_PlayerLeft))
	w.WriteH(m.ID)
	return w.Bytes()
}

// PlayersInLobby lists every lobby member. Requester is the id of the
// player the list was built for.
type PlayersInLobby struct {
	Requester uint16
	Players   []PlayerInfo
}

func (PlayersInLobby) ServerOpcode() ServerOpcode { return S_PlayersInLobby }
func (m PlayersInLobby) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_PlayersInLobby))
	w.WriteH(m.Requester)
	n := capCount(len(m.Players), math.MaxUint8)
	w.WriteC(uint8(n))
	for _, p := range m.Players[:n] {
		w.writePlayerInfo(p)
	}
	return w.Bytes()
}

type OwnerLeft struct{}

func (OwnerLeft) ServerOpcode() ServerOpcode { return S_OwnerLeft }
func (OwnerLeft) Encode() []byte           { return []byte{byte(S_OwnerLeft)} }

type GameStarted struct{}

func (GameStarted) ServerOpcode() ServerOpcode { return S_StartGame }
func (GameStarted) Encode() []byte           { return []byte{byte(S_StartGame)} }

type AllPlayersLoaded struct{ Spawn Point }

func (AllPlayersLoaded) ServerOpcode() ServerOpcode { return S_AllPlayersLoaded }
func (m AllPlayersLoaded) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_AllPlayersLoaded))
	w.writePoint(m.Spawn)
	return w.Bytes()
}

type PlayerStates struct{ Players []PlayerState }

func (PlayerStates) ServerOpcode() ServerOpcode { return S_PlayerStates }
func (m PlayerStates) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_PlayerStates))
	n := capCount(len(m.Players), math.MaxUint8)
	w.WriteC(uint8(n))
	for _, p := range m.Players[:n] {
		w.WriteH(p.ID)
		w.writePoint(p.Pos)
		w.WriteC(p.Health)
		w.WriteC(uint8(p.Status))
		w.WriteBool(p.Attacking)
		w.WriteF(p.AttackAngle)
	}
	return w.Bytes()
}

type EnemyUpdate struct{ Enemies []EnemyState }

func (EnemyUpdate) ServerOpcode() ServerOpcode { return S_EnemyUpdate }
func (m EnemyUpdate) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_EnemyUpdate))
	n := capCount(len(m.Enemies), math.MaxUint16)
	w.WriteH(uint16(n))
	for _, e := range m.Enemies[:n] {
		w.WriteH(e.ID)
		w.WriteC(e.Type)
		w.writePoint(e.Pos)
		w.WriteH(e.Health)
		w.WriteC(e.Behavior)
		w.WriteC(e.Action)
	}
	return w.Bytes()
}

type ProjectileUpdate struct{ Projectiles []ProjectileState }

func (ProjectileUpdate) ServerOpcode() ServerOpcode { return S_ProjectileUpdate }
func (m ProjectileUpdate) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_ProjectileUpdate))
	n := capCount(len(m.Projectiles), math.MaxUint16)
	w.WriteH(uint16(n))
	for _, p := range m.Projectiles[:n] {
		w.WriteH(p.ID)
		w.writePoint(p.Pos)
		w.WriteF(p.Angle)
	}
	return w.Bytes()
}

type BatteryUpdate struct{ Level float32 }

func (BatteryUpdate) ServerOpcode() ServerOpcode { return S_BatteryUpdate }
func (m BatteryUpdate) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_BatteryUpdate))
	w.WriteF(m.Level)
	return w.Bytes()
}

type ChangeRegion struct{ Region uint16 }

func (ChangeRegion) ServerOpcode() ServerOpcode { return S_ChangeRegion }
func (m ChangeRegion) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_ChangeRegion))
	w.WriteH(m.Region)
	return w.Bytes()
}

type SetZone struct {
	Nodes []ZoneNode
	Links []ZoneLink
}

func (SetZone) ServerOpcode() ServerOpcode { return S_SetZone }
func (m SetZone) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_SetZone))
	n := capCount(len(m.Nodes), math.MaxUint16)
	w.WriteH(uint16(n))
	for _, nd := range m.Nodes[:n] {
		w.WriteH(nd.ID)
		w.WriteC(nd.Type)
		w.WriteF(nd.X)
		w.WriteF(nd.Y)
	}
	n = capCount(len(m.Links), math.MaxUint16)
	w.WriteH(uint16(n))
	for _, l := range m.Links[:n] {
		w.WriteH(l.A)
		w.WriteH(l.B)
		w.WriteF(l.Distance)
	}
	return w.Bytes()
}

type SetGuiPause struct {
	Pause bool
	Gui   GuiType
}

func (SetGuiPause) ServerOpcode() ServerOpcode { return S_SetGuiPause }
func (m SetGuiPause) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_SetGuiPause))
	w.WriteBool(m.Pause)
	w.WriteC(uint8(m.Gui))
	return w.Bytes()
}

// VoteCast relays one player's vote to everyone.
type VoteCast struct {
	Player    uint16
	Choice    uint16
	Confirmed bool
}

func (VoteCast) ServerOpcode() ServerOpcode { return S_CastVote }
func (m VoteCast) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_CastVote))
	w.WriteH(m.Player)
	w.WriteH(m.Choice)
	w.WriteBool(m.Confirmed)
	return w.Bytes()
}

type GatherPlayers struct {
	Player uint16
	Active bool
}

func (GatherPlayers) ServerOpcode() ServerOpcode { return S_GatherPlayers }
func (m GatherPlayers) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_GatherPlayers))
	w.WriteH(m.Player)
	w.WriteBool(m.Active)
	return w.Bytes()
}

type ChangeItem struct{ Item uint8 }

func (ChangeItem) ServerOpcode() ServerOpcode { return S_ChangeItem }
func (m ChangeItem) Encode() []byte {
	return []byte{byte(S_ChangeItem), m.Item}
}

type UpdateStash struct{ Items [StashSize]uint8 }

func (UpdateStash) ServerOpcode() ServerOpcode { return S_UpdateStash }
func (m UpdateStash) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_UpdateStash))
	w.WriteBytes(m.Items[:])
	return w.Bytes()
}

// MenuEventPage shows page Page of menu event Event.
type MenuEventPage struct {
	Event uint16
	Page  uint8
}

func (MenuEventPage) ServerOpcode() ServerOpcode { return S_MenuEventPage }
func (m MenuEventPage) Encode() []byte {
	w := NewWriterWithOpcode(byte(S_MenuEventPage))
	w.WriteH(m.Event)
	w.WriteC(m.Page)
	return w.Bytes()
}

// ── Decoding ────────────────────────────────────────────────────────

var serverDecoders = map[ServerOpcode]func(r *Reader) ServerMessage{
	S_PlayerId:     func(r *Reader) ServerMessage { return PlayerId{ID: r.ReadH()} },
	S_PlayerJoined: func(r *Reader) ServerMessage { return PlayerJoined{Player: r.readPlayerInfo()} },
	S_PlayerLeft:   func(r *Reader) ServerMessage { return PlayerLeft{ID: r.ReadH()} },
	S_PlayersInLobby: func(r *Reader) ServerMessage {
		m := PlayersInLobby{Requester: r.ReadH()}
		n := int(r.ReadC())
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Players = append(m.Players, r.readPlayerInfo())
		}
		return m
	},
	S_OwnerLeft:        func(*Reader) ServerMessage { return OwnerLeft{} },
	S_StartGame:        func(*Reader) ServerMessage { return GameStarted{} },
	S_AllPlayersLoaded: func(r *Reader) ServerMessage { return AllPlayersLoaded{Spawn: r.readPoint()} },
	S_PlayerStates: func(r *Reader) ServerMessage {
		var m PlayerStates
		n := int(r.ReadC())
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Players = append(m.Players, PlayerState{
				ID:          r.ReadH(),
				Pos:         r.readPoint(),
				Health:      r.ReadC(),
				Status:      PlayerStatus(r.ReadC()),
				Attacking:   r.ReadBool(),
				AttackAngle: r.ReadF(),
			})
		}
		return m
	},
	S_EnemyUpdate: func(r *Reader) ServerMessage {
		var m EnemyUpdate
		n := int(r.ReadH())
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Enemies = append(m.Enemies, EnemyState{
				ID:       r.ReadH(),
				Type:     r.ReadC(),
				Pos:      r.readPoint(),
				Health:   r.ReadH(),
				Behavior: r.ReadC(),
				Action:   r.ReadC(),
			})
		}
		return m
	},
	S_ProjectileUpdate: func(r *Reader) ServerMessage {
		var m ProjectileUpdate
		n := int(r.ReadH())
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Projectiles = append(m.Projectiles, ProjectileState{
				ID:    r.ReadH(),
				Pos:   r.readPoint(),
				Angle: r.ReadF(),
			})
		}
		return m
	},
	S_BatteryUpdate: func(r *Reader) ServerMessage { return BatteryUpdate{Level: r.ReadF()} },
	S_ChangeRegion:  func(r *Reader) ServerMessage { return ChangeRegion{Region: r.ReadH()} },
	S_SetZone: func(r *Reader) ServerMessage {
		var m SetZone
		n := int(r.ReadH())
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Nodes = append(m.Nodes, ZoneNode{ID: r.ReadH(), Type: r.ReadC(), X: r.ReadF(), Y: r.ReadF()})
		}
		n = int(r.ReadH())
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Links = append(m.Links, ZoneLink{A: r.ReadH(), B: r.ReadH(), Distance: r.ReadF()})
		}
		return m
	},
	S_SetGuiPause: func(r *Reader) ServerMessage {
		return SetGuiPause{Pause: r.ReadBool(), Gui: GuiType(r.ReadC())}
	},
	S_CastVote: func(r *Reader) ServerMessage {
		return VoteCast{Player: r.ReadH(), Choice: r.ReadH(), Confirmed: r.ReadBool()}
	},
	S_GatherPlayers: func(r *Reader) ServerMessage {
		return GatherPlayers{Player: r.ReadH(), Active: r.ReadBool()}
	},
	S_ChangeItem: func(r *Reader) ServerMessage { return ChangeItem{Item: r.ReadC()} },
	S_UpdateStash: func(r *Reader) ServerMessage {
		var m UpdateStash
		copy(m.Items[:], r.ReadBytes(StashSize))
		return m
	},
	S_MenuEventPage: func(r *Reader) ServerMessage {
		return MenuEventPage{Event: r.ReadH(), Page: r.ReadC()}
	},
}

// DecodeServerMessage decodes one message from the front of buf and returns
// it with the number of bytes it occupied. ErrShortRead means buf holds only
// a prefix of the message.
func DecodeServerMessage(buf []byte) (ServerMessage, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrShortRead
	}
	op := ServerOpcode(buf[0])
	dec, ok := serverDecoders[op]
	if !ok {
		return nil, 0, fmt.Errorf("%w: server %d", ErrUnknownOpcode, buf[0])
	}
	r := NewReader(buf)
	msg := dec(r)
	if err := r.Err(); err != nil {
		if err == ErrShortRead {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("decode %s: %w", op, err)
	}
	return msg, r.Offset(), nil
}
