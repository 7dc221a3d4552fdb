package ai

import (
	"math/rand"

	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/pathfind"
)

// Target is what an enemy can see of a player.
type Target struct {
	ID    uint16
	Pos   geom.Vec2
	Size  geom.Vec2
	Alive bool
}

// World is the read-mostly context one region hands to every enemy update.
// Enemies mutate only themselves; the region owns everything here.
type World struct {
	Obstacles []geom.Rect
	Bounds    geom.Rect // playable area, zero = unbounded
	Convoy    geom.Rect
	Leyline   bool
	Targets   []Target
	Enemies   []*Enemy
	Paths     *pathfind.Cache
	Rng       *rand.Rand
}

func (w *World) target(id uint16) (Target, bool) {
	for _, t := range w.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// blocked reports whether a body of size centered at p would overlap an
// obstacle or leave the playable area.
func (w *World) blocked(p, size geom.Vec2) bool {
	body := geom.RectAround(p, size)
	if !w.Bounds.IsZero() && !w.Bounds.Contains(p) {
		return true
	}
	return geom.CollidesAny(body, w.Obstacles)
}

func (w *World) clamp(p geom.Vec2) geom.Vec2 {
	if w.Bounds.IsZero() {
		return p
	}
	return geom.V(
		geom.Clamp(p.X, w.Bounds.Left(), w.Bounds.Right()),
		geom.Clamp(p.Y, w.Bounds.Top(), w.Bounds.Bottom()),
	)
}
