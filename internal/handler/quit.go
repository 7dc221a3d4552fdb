package handler

import (
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	"go.uber.org/zap"
)

// HandleLeaveGame closes the sender's connection. The input system notices
// the close and runs HandleDeparture.
func HandleLeaveGame(p *world.Player, deps *Deps) {
	deps.Log.Info("player leaving", zap.Uint16("player", p.ID), zap.String("name", p.Name))
	if p.Session != nil {
		p.Session.Close()
	}
}

// HandleDeparture applies a disconnect and tells the remaining players.
// An owner leaving before the game began ends the session for everyone.
func HandleDeparture(p *world.Player, reason string, deps *Deps) {
	w := deps.World
	if p.Status == packet.StatusDisconnected {
		return
	}
	d := w.Depart(p)
	if p.ID == 0 {
		deps.Log.Debug("connection closed before joining", zap.Uint64("session", p.SessionID), zap.String("reason", reason))
		return
	}

	switch {
	case d.Invalidated:
		for _, q := range d.Evicted {
			q.Send(packet.OwnerLeft{})
			drop(q)
		}
	case d.WasOwner:
		w.Broadcast(packet.OwnerLeft{})
	default:
		w.Broadcast(packet.PlayerLeft{ID: p.ID})
	}

	event.Emit(deps.Bus, event.PlayerDeparted{
		PlayerID: p.ID,
		Name:     p.Name,
		Owner:    d.WasOwner,
		Reason:   reason,
		At:       time.Now(),
	})
	deps.Log.Info("player left",
		zap.Uint16("player", p.ID),
		zap.String("name", p.Name),
		zap.String("reason", reason),
		zap.Bool("owner", d.WasOwner),
		zap.Int("evicted", len(d.Evicted)),
		zap.Uint16("new_owner", d.NewOwner))

	if d.GameStarted {
		sendGameBegan(deps)
	}
}
