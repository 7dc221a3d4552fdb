package handler

import (
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// ── Broadcast builders ──────────────────────────────────────────────

// sendGameBegan tells every player its spawn and sends the opening state.
func sendGameBegan(deps *Deps) {
	w := deps.World
	for _, p := range w.Participants() {
		p.Send(packet.AllPlayersLoaded{Spawn: p.State().Pos})
	}
	sendRegionState(deps)
	deps.Log.Info("game began", zap.Int("players", len(w.Participants())))
}

// sendRegionChange moves every client to the new current region.
func sendRegionChange(deps *Deps) {
	w := deps.World
	w.Broadcast(packet.ChangeRegion{Region: w.Region.Node})
	if w.Gui == packet.GuiNone {
		w.Broadcast(packet.SetGuiPause{Pause: false, Gui: packet.GuiNone})
	}
	sendRegionState(deps)
}

// sendRegionState sends the full region picture and opens its menu event,
// if any.
func sendRegionState(deps *Deps) {
	w := deps.World
	r := w.Region
	w.Broadcast(r.BatteryUpdate())
	w.Broadcast(w.StashMessage())
	w.Broadcast(w.PlayerStates())
	w.Broadcast(r.EnemyUpdate())
	if w.Gui == packet.GuiMenuEvent && w.Menu != nil {
		w.Broadcast(packet.SetGuiPause{Pause: true, Gui: packet.GuiMenuEvent})
		w.Broadcast(w.Menu.Message())
	}
	event.Emit(deps.Bus, event.RegionEntered{
		Node:       r.Node,
		RegionType: r.Def.Type,
		Battery:    r.Battery,
		At:         time.Now(),
	})
}

// SendSnapshot broadcasts the world snapshot. Called at the broadcast rate.
func SendSnapshot(deps *Deps) {
	w := deps.World
	if w.Phase != world.PhaseGame || w.Region == nil {
		return
	}
	w.Broadcast(w.PlayerStates())
	w.Broadcast(w.Region.EnemyUpdate())
	w.Broadcast(w.Region.ProjectileUpdate())
	w.Broadcast(w.Region.BatteryUpdate())
}

// ApplyTick announces what a simulation step changed outside the snapshot
// and opens the overmap once everyone is gathered.
func ApplyTick(res world.TickResult, deps *Deps) {
	w := deps.World
	for _, k := range res.Kills {
		event.Emit(deps.Bus, event.EnemyKilled{EnemyID: k.EnemyID, EntityType: uint8(k.Def.Type), KillerID: k.Killer})
	}
	for _, id := range res.Deaths {
		deps.Log.Info("player died", zap.Uint16("player", id))
	}
	if res.WaveSpawned > 0 {
		deps.Log.Debug("wave spawned", zap.Int("enemies", res.WaveSpawned))
	}
	for _, g := range res.Gathers {
		w.Broadcast(packet.GatherPlayers{Player: g.Player, Active: g.Active})
	}
	if res.StashChanged {
		w.Broadcast(w.StashMessage())
	}
	if res.AllGathered {
		w.OpenOvermap()
		w.Broadcast(packet.SetGuiPause{Pause: true, Gui: packet.GuiOvermap})
	}
}
