package client

import "github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"

// Screen is the front-end's top-level mode.
type Screen uint8

const (
	ScreenMenu Screen = iota
	ScreenLobby
	ScreenLoading
	ScreenGame
)

func (s Screen) String() string {
	switch s {
	case ScreenMenu:
		return "menu"
	case ScreenLobby:
		return "lobby"
	case ScreenLoading:
		return "loading"
	case ScreenGame:
		return "game"
	}
	return "unknown"
}

// View is the client's copy of server-authoritative state, built only from
// received messages.
type View struct {
	Screen Screen
	ID     uint16
	Lobby  []packet.PlayerInfo
	Zone   packet.SetZone
	Region uint16
	Spawn  packet.Point
	Gui    packet.GuiType
	Paused bool
	Menu   packet.MenuEventPage

	Players     []packet.PlayerState
	Enemies     []packet.EnemyState
	Projectiles []packet.ProjectileState
	Battery     float32
	Item        uint8
	Stash       [packet.StashSize]uint8
	Gathered    map[uint16]bool
	Votes       map[uint16]packet.VoteCast

	zoneReady bool // SetZone seen since the last lobby
}

// Apply folds one server message into the view.
func (v *View) Apply(m packet.ServerMessage) {
	switch m := m.(type) {
	case packet.PlayerId:
		v.ID = m.ID
		v.Screen = ScreenLobby
	case packet.PlayersInLobby:
		v.Lobby = append(v.Lobby[:0], m.Players...)
	case packet.PlayerJoined:
		v.Lobby = append(v.Lobby, m.Player)
	case packet.PlayerLeft:
		v.removeLobby(m.ID)
	case packet.OwnerLeft:
		if v.Screen != ScreenGame {
			v.Disconnect()
		}
	case packet.SetZone:
		v.Zone = m
		v.zoneReady = true
	case packet.GameStarted:
		v.Screen = ScreenLoading
	case packet.AllPlayersLoaded:
		v.Spawn = m.Spawn
		v.Screen = ScreenGame
	case packet.PlayerStates:
		v.Players = m.Players
	case packet.EnemyUpdate:
		v.Enemies = m.Enemies
	case packet.ProjectileUpdate:
		v.Projectiles = m.Projectiles
	case packet.BatteryUpdate:
		v.Battery = m.Level
	case packet.ChangeRegion:
		v.Region = m.Region
		v.Gathered = nil
		v.Votes = nil
	case packet.SetGuiPause:
		v.Paused = m.Pause
		v.Gui = m.Gui
		if !m.Pause {
			v.Gui = packet.GuiNone
		}
		v.Votes = nil
	case packet.VoteCast:
		if v.Votes == nil {
			v.Votes = make(map[uint16]packet.VoteCast)
		}
		v.Votes[m.Player] = m
	case packet.GatherPlayers:
		if v.Gathered == nil {
			v.Gathered = make(map[uint16]bool)
		}
		v.Gathered[m.Player] = m.Active
	case packet.ChangeItem:
		v.Item = m.Item
	case packet.UpdateStash:
		v.Stash = m.Items
	case packet.MenuEventPage:
		v.Menu = m
	}
}

// ZoneReady reports whether the zone for the pending game has arrived.
func (v *View) ZoneReady() bool { return v.zoneReady }

// Disconnect returns the view to the main menu. Used for OwnerLeft before
// the game and for any connection error.
func (v *View) Disconnect() {
	*v = View{}
}

func (v *View) removeLobby(id uint16) {
	for i, p := range v.Lobby {
		if p.ID == id {
			v.Lobby = append(v.Lobby[:i], v.Lobby[i+1:]...)
			return
		}
	}
}
