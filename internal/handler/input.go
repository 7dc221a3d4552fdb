package handler

import (
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// HandlePlayerStateChange stores the sender's movement input. Dead players
// and open consoles keep the player still.
func HandlePlayerStateChange(p *world.Player, msg packet.PlayerStateChange, _ *Deps) {
	if !p.Alive() || p.Console {
		p.Movement = packet.Movement{}
		return
	}
	p.Movement = msg.Movement
}

// HandleStartAction starts an attack. Abilities are not defined for any
// weapon yet and are ignored.
func HandleStartAction(p *world.Player, msg packet.StartAction, deps *Deps) {
	if msg.Attack && !deps.World.StartAttack(p, float64(msg.Angle)) {
		deps.Log.Debug("attack ignored", zap.Uint16("player", p.ID))
	}
	if msg.Ability {
		deps.Log.Debug("ability ignored", zap.Uint16("player", p.ID))
	}
}

// HandleUseItem consumes the held item.
func HandleUseItem(p *world.Player, deps *Deps) {
	w := deps.World
	if !w.UseItem(p) {
		return
	}
	p.Send(packet.ChangeItem{Item: p.Item})
	w.Broadcast(w.Region.BatteryUpdate())
}

// HandleSwapItem swaps the held item with a stash slot.
func HandleSwapItem(p *world.Player, msg packet.SwapItem, deps *Deps) {
	w := deps.World
	if err := w.SwapItem(p, msg.Slot); err != nil {
		deps.Log.Info("swap item rejected", zap.Uint16("player", p.ID), zap.Error(err))
		return
	}
	p.Send(packet.ChangeItem{Item: p.Item})
	w.Broadcast(w.StashMessage())
}

// HandleConsole toggles the sender's console. Movement stops while it is
// open.
func HandleConsole(p *world.Player, msg packet.Console, _ *Deps) {
	p.Console = msg.Active
	if p.Console {
		p.Movement = packet.Movement{}
	}
}
