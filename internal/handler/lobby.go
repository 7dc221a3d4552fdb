package handler

import (
	"errors"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// HandleInitLobby opens the lobby with the sender as owner.
func HandleInitLobby(p *world.Player, msg packet.InitLobby, deps *Deps) {
	if err := deps.World.InitLobby(p, msg.Name); err != nil {
		deps.Log.Info("init lobby rejected", zap.Uint64("session", p.SessionID), zap.Error(err))
		drop(p)
		return
	}
	p.Send(packet.PlayerId{ID: p.ID})
	p.Send(deps.World.LobbyMessage(p.ID))
	deps.Log.Info("lobby opened", zap.Uint16("owner", p.ID), zap.String("name", p.Name))
}

// HandleJoinLobby adds the sender to the open lobby and announces it.
func HandleJoinLobby(p *world.Player, msg packet.JoinLobby, deps *Deps) {
	w := deps.World
	if err := w.JoinLobby(p, msg.Name); err != nil {
		level := zap.InfoLevel
		if !errors.Is(err, world.ErrNoLobby) && !errors.Is(err, world.ErrLobbyFull) {
			level = zap.WarnLevel
		}
		deps.Log.Log(level, "join lobby rejected", zap.Uint64("session", p.SessionID), zap.Error(err))
		drop(p)
		return
	}
	p.Send(packet.PlayerId{ID: p.ID})
	w.BroadcastExcept(packet.PlayerJoined{Player: p.Info()}, p)
	p.Send(w.LobbyMessage(p.ID))
	deps.Log.Info("player joined lobby", zap.Uint16("player", p.ID), zap.String("name", p.Name))
}

// HandleChangeProperty updates name/weapon and resends the lobby to everyone.
func HandleChangeProperty(p *world.Player, msg packet.ChangePlayerProperty, deps *Deps) {
	w := deps.World
	if err := w.ChangeProperty(p, msg.Name, msg.Weapon); err != nil {
		deps.Log.Info("property change rejected", zap.Uint16("player", p.ID), zap.Error(err))
		return
	}
	for _, q := range w.Participants() {
		q.Send(w.LobbyMessage(q.ID))
	}
}

// HandleStartGame moves the lobby to loading. Everyone receives the zone
// before the start signal.
func HandleStartGame(p *world.Player, deps *Deps) {
	w := deps.World
	if err := w.StartLoading(p); err != nil {
		deps.Log.Info("start game rejected", zap.Uint16("player", p.ID), zap.Error(err))
		return
	}
	w.Broadcast(w.Zone.Message())
	w.Broadcast(packet.GameStarted{})

	players := w.Participants()
	names := make([]string, 0, len(players))
	for _, q := range players {
		names = append(names, q.Name)
	}
	event.Emit(deps.Bus, event.GameStarted{Players: names, Nodes: len(w.Zone.Nodes), At: time.Now()})
	deps.Log.Info("game loading",
		zap.Int("players", len(players)),
		zap.Int("nodes", len(w.Zone.Nodes)),
		zap.Int("links", len(w.Zone.Links)))
}

// HandleLoadingComplete marks the sender loaded; the last one starts the
// game.
func HandleLoadingComplete(p *world.Player, deps *Deps) {
	started, err := deps.World.MarkLoaded(p)
	if err != nil {
		deps.Log.Warn("loading complete out of phase", zap.Uint16("player", p.ID), zap.Error(err))
		return
	}
	if started {
		sendGameBegan(deps)
	}
}

// drop flushes anything queued for p and closes its connection. The input
// system sees the close and runs the departure path.
func drop(p *world.Player) {
	if p.Session != nil {
		p.Session.Shutdown()
	}
}
