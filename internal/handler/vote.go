package handler

import (
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// HandleCastVote records and relays a ballot. Votes only count while the
// overmap or a menu event is open.
func HandleCastVote(p *world.Player, msg packet.CastVote, deps *Deps) {
	w := deps.World
	if !w.Paused() {
		deps.Log.Debug("vote with no open gui", zap.Uint16("player", p.ID))
		return
	}
	w.Broadcast(w.CastVote(p, msg.Choice, msg.Confirmed))
}

// ResolveVotes applies the open vote once it has a winner. Called once per
// tick by the vote system.
func ResolveVotes(deps *Deps) {
	w := deps.World
	choice, ok := w.PendingVote()
	if !ok {
		return
	}
	switch w.Gui {
	case packet.GuiOvermap:
		resolveTravel(choice, deps)
	case packet.GuiMenuEvent:
		resolveMenu(choice, deps)
	}
}

func resolveTravel(choice uint16, deps *Deps) {
	w := deps.World
	if choice == packet.NoChoice {
		w.CloseGui()
		w.Broadcast(packet.SetGuiPause{Pause: false, Gui: packet.GuiNone})
		return
	}
	res, err := w.TravelTo(choice)
	if err != nil {
		deps.Log.Warn("travel vote rejected", zap.Uint16("node", choice), zap.Error(err))
		w.ResetVotes()
		return
	}
	if res.Underflow {
		deps.Log.Error("battery too low for travel, spending the rest",
			zap.Uint16("from", res.From),
			zap.Uint16("to", res.To),
			zap.Float64("cost", res.Cost))
	}
	deps.Log.Info("convoy travelled",
		zap.Uint16("from", res.From),
		zap.Uint16("to", res.To),
		zap.Float64("battery", res.Battery))
	sendRegionChange(deps)
}

func resolveMenu(choice uint16, deps *Deps) {
	w := deps.World
	if choice == packet.NoChoice {
		// Menu events have no cancel; ask again.
		w.ResetVotes()
		return
	}
	res, err := w.ApplyMenuChoice(choice)
	if err != nil {
		deps.Log.Warn("menu choice rejected", zap.Uint16("option", choice), zap.Error(err))
		w.ResetVotes()
		return
	}
	if res.ScriptErr != nil {
		deps.Log.Warn("menu script failed", zap.Error(res.ScriptErr))
	}
	if res.BatteryDelta != 0 {
		w.Broadcast(w.Region.BatteryUpdate())
	}
	if res.HealthDelta != 0 {
		w.Broadcast(w.PlayerStates())
	}
	if res.StashChanged {
		w.Broadcast(w.StashMessage())
	}
	if res.Closed {
		w.Broadcast(packet.SetGuiPause{Pause: false, Gui: packet.GuiNone})
		return
	}
	w.Broadcast(w.Menu.Message())
}
