package ai

import (
	"math"

	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
)

const (
	destinationRetries = 10
	stalkRetries       = 5
	feedingApproach    = 300.0 // start picking a feeding spot inside this distance of the convoy
	feedingPadding     = 80.0
	stalkRestMin       = 0.7
	stalkRestMax       = 1.7
	stalkBreakFactor   = 1.2
	stalkHalfArc       = math.Pi / 6 // 60° cone
)

// chooseBehavior picks the next outer state for an idle enemy.
func (e *Enemy) chooseBehavior(w *World) {
	if e.Def.Can(data.BehaviorHunting) {
		if t, ok := e.aggroPlayer(w); ok {
			e.target = t.ID
			e.setBehavior(BehaviorHunting)
			return
		}
	}
	if e.Def.Can(data.BehaviorFeeding) && w.Leyline {
		e.setBehavior(BehaviorFeeding)
		return
	}
	if e.Def.Can(data.BehaviorWandering) {
		e.setBehavior(BehaviorWandering)
	}
}

// aggroPlayer returns the nearest living player inside aggro range.
func (e *Enemy) aggroPlayer(w *World) (Target, bool) {
	var best Target
	bestDist := math.Inf(1)
	for _, t := range w.Targets {
		if !t.Alive {
			continue
		}
		d := e.Pos.Dist(t.Pos)
		if d <= e.Def.AggroRange && d < bestDist {
			best, bestDist = t, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// tryAggro switches to Hunting when a player is in range.
func (e *Enemy) tryAggro(w *World) bool {
	if !e.Def.Can(data.BehaviorHunting) {
		return false
	}
	t, ok := e.aggroPlayer(w)
	if !ok {
		return false
	}
	e.target = t.ID
	e.setBehavior(BehaviorHunting)
	return true
}

// ── Wandering ───────────────────────────────────────────────────────

func (e *Enemy) updateWandering(w *World, dt float64) {
	if e.tryAggro(w) {
		return
	}
	switch e.wander.state {
	case WanderStart:
		e.wander.timer = geom.RandRange(w.Rng, e.Def.WanderRestMin, e.Def.WanderRestMax)
		e.wander.state = WanderResting
		e.Velocity = geom.Vec2{}
		e.maxSpeed = 0
	case WanderResting:
		e.wander.timer -= dt
		if e.wander.timer <= 0 {
			e.wander.dest = e.pickWanderDestination(w)
			e.wander.state = WanderMoving
		}
	case WanderMoving:
		if e.moveToward(w, e.wander.dest, dt) {
			e.wander.state = WanderStart
		}
	}
}

// pickWanderDestination samples the annulus around the spawn point,
// rejecting blocked candidates. Falls back to staying put.
func (e *Enemy) pickWanderDestination(w *World) geom.Vec2 {
	for i := 0; i < destinationRetries; i++ {
		p := geom.RandomInAnnulus(w.Rng, e.Spawn, e.Def.WanderRadiusMin, e.Def.WanderRadiusMax)
		if !w.blocked(p, e.Size()) {
			return p
		}
	}
	return e.Pos
}

// ── Feeding ─────────────────────────────────────────────────────────

func (e *Enemy) updateFeeding(w *World, dt float64) {
	if e.tryAggro(w) {
		return
	}
	convoy := w.Convoy.Center()
	switch e.feeding.state {
	case FeedingStart:
		e.feeding.state = FeedingApproach
	case FeedingApproach:
		if e.Pos.Dist(convoy) < feedingApproach {
			e.feeding.dest = e.pickFeedingSpot(w)
			e.feeding.state = FeedingMoving
			return
		}
		e.moveToward(w, convoy, dt)
	case FeedingMoving:
		if e.moveToward(w, e.feeding.dest, dt) {
			e.feeding.state = FeedingHolding
		}
	case FeedingHolding:
		e.Velocity = geom.Vec2{}
	}
}

// pickFeedingSpot samples the padded zone around the convoy, rejecting
// points whose body would touch the convoy or an obstacle.
func (e *Enemy) pickFeedingSpot(w *World) geom.Vec2 {
	zone := w.Convoy.Pad(feedingPadding)
	for i := 0; i < destinationRetries; i++ {
		p := geom.RandomInRect(w.Rng, zone)
		if geom.RectAround(p, e.Size()).Intersects(w.Convoy) {
			continue
		}
		if !w.blocked(p, e.Size()) {
			return p
		}
	}
	return e.Pos
}

// ── Hunting ─────────────────────────────────────────────────────────

func (e *Enemy) updateHunting(w *World, dt float64) {
	t, ok := w.target(e.target)
	if !ok || !t.Alive {
		e.setBehavior(BehaviorNone)
		return
	}
	if e.hunting.state == HuntingStart {
		e.hunting.state = HuntingChasing
	}
	d := e.Pos.Dist(t.Pos)
	if d > e.Def.LeashRange {
		e.setBehavior(BehaviorNone)
		return
	}
	if e.Def.Can(data.BehaviorStalking) && d < e.Def.CloseQuartersRange {
		e.setBehavior(BehaviorStalking)
		return
	}
	if e.attack(w, t) {
		e.setBehavior(BehaviorNone)
		return
	}
	e.moveToward(w, t.Pos, dt)
}

// ── Stalking ────────────────────────────────────────────────────────

func (e *Enemy) updateStalking(w *World, dt float64) {
	t, ok := w.target(e.target)
	if !ok || !t.Alive {
		e.setBehavior(BehaviorNone)
		return
	}
	if e.Pos.Dist(t.Pos) > e.Def.CloseQuartersRange*stalkBreakFactor {
		e.setBehavior(BehaviorNone)
		return
	}
	switch e.stalking.state {
	case StalkingStart:
		e.stalking.dest = e.pickStalkSpot(w, t)
		e.stalking.state = StalkingRepositioning
		e.Velocity = geom.Vec2{}
	case StalkingRepositioning:
		if e.walkToward(w, e.stalking.dest, dt) {
			e.stalking.timer = geom.RandRange(w.Rng, stalkRestMin, stalkRestMax)
			e.stalking.state = StalkingResting
		}
	case StalkingResting:
		e.stalking.timer -= dt
		if e.stalking.timer > 0 {
			return
		}
		if w.Rng.Float64() < e.Def.Aggression && e.attack(w, t) {
			e.setBehavior(BehaviorNone)
			return
		}
		e.stalking.state = StalkingStart
	}
}

// pickStalkSpot samples a 60° cone around the target that opens toward
// the enemy, so the enemy circles without closing in.
func (e *Enemy) pickStalkSpot(w *World, t Target) geom.Vec2 {
	away := e.Pos.Sub(t.Pos)
	dir := away.Angle()
	if away.IsZero() {
		dir = w.Rng.Float64() * 2 * math.Pi
	}
	cq := e.Def.CloseQuartersRange
	for i := 0; i < stalkRetries; i++ {
		p := geom.RandomInCone(w.Rng, t.Pos, dir, stalkHalfArc, cq*0.5, cq)
		if !w.blocked(p, e.Size()) {
			return p
		}
	}
	return e.Pos
}
