package ai

import (
	"math"

	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
)

// arriveDistance is how close counts as "at the destination".
const arriveDistance = 2.0

// recoverStuck pushes an enemy whose body overlaps an obstacle straight
// away from that obstacle's center. It reports whether it moved the enemy,
// in which case nothing else runs this tick.
func (e *Enemy) recoverStuck(w *World, dt float64) bool {
	obstacle, stuck := geom.FirstCollision(e.Bounds(), w.Obstacles)
	if !stuck {
		return false
	}
	dir := e.Pos.Sub(obstacle.Center())
	if dir.IsZero() {
		dir = geom.V(0, -1)
	}
	e.Velocity = dir.Normalize().Scale(e.Def.BaseMovementSpeed * leapSpeedFactor)
	e.Pos = w.clamp(e.Pos.Add(e.Velocity.Scale(dt)))
	return true
}

// nextWaypoint returns the first waypoint toward dest, or the current
// position when no route exists.
func (e *Enemy) nextWaypoint(w *World, dest geom.Vec2) geom.Vec2 {
	if w.Paths == nil {
		return dest
	}
	path := w.Paths.FindPath(e.Pos, dest, e.Size())
	if len(path) == 0 {
		return e.Pos
	}
	return path[0]
}

// moveToward steers toward dest with acceleration, repulsion from nearby
// enemies and axis-aligned sliding along obstacles. It reports arrival, or
// true as well when dest is unreachable.
func (e *Enemy) moveToward(w *World, dest geom.Vec2, dt float64) bool {
	if e.Pos.Dist(dest) <= arriveDistance {
		e.Velocity = geom.Vec2{}
		return true
	}
	goal := e.nextWaypoint(w, dest)
	if goal.Equal(e.Pos) {
		// No route: hold still and let the caller pick something else.
		e.Velocity = geom.Vec2{}
		return true
	}
	toGoal := goal.Sub(e.Pos)

	base := e.Def.BaseMovementSpeed
	if geom.AngleBetween(e.Velocity, toGoal) <= math.Pi/2 {
		e.maxSpeed = math.Min(base, e.maxSpeed+e.Def.Acceleration*dt)
	} else {
		e.maxSpeed = math.Max(0, e.maxSpeed-e.Def.Deceleration*dt)
	}

	desired := toGoal.Normalize().Scale(e.maxSpeed)
	steering := desired.Sub(e.Velocity).Truncate(e.Def.SteeringForce * dt)
	repulsion := e.repulsion(w).Scale(e.Def.RepulsionForce * dt).Truncate(e.Def.RepulsionForce * dt)
	repulsion = repulsion.Scale(e.repulsionFade(dest))

	e.Velocity = e.Velocity.Add(steering).Add(repulsion).Truncate(base)
	step := e.Velocity.Scale(dt)
	// Do not overshoot the final waypoint.
	if goal.Equal(dest) && step.Len() > toGoal.Len() {
		step = toGoal
	}
	e.Pos = w.clamp(geom.SlideStep(e.Pos, e.Size(), step, w.Obstacles))
	return e.Pos.Dist(dest) <= arriveDistance
}

// repulsion sums an inverse-distance push away from every other living
// enemy within the repulsion radius.
func (e *Enemy) repulsion(w *World) geom.Vec2 {
	var push geom.Vec2
	r := e.Def.RepulsionRadius
	if r <= 0 {
		return push
	}
	for _, o := range w.Enemies {
		if o == e || o.Dead() {
			continue
		}
		away := e.Pos.Sub(o.Pos)
		d := away.Len()
		if d == 0 || d > r {
			continue
		}
		push = push.Add(away.Normalize().Scale(r / d))
	}
	return push
}

// repulsionFade is 0 within one hitbox width of dest, 1 beyond three, and
// linear in between, so crowding does not jitter an enemy at its goal.
func (e *Enemy) repulsionFade(dest geom.Vec2) float64 {
	width := e.Def.Hitbox.W
	if width <= 0 {
		return 1
	}
	d := e.Pos.Dist(dest)
	return geom.Clamp((d-width)/(2*width), 0, 1)
}

// walkToward moves at walking speed straight to the next waypoint, landing
// exactly on it when it is within one tick of travel.
func (e *Enemy) walkToward(w *World, dest geom.Vec2, dt float64) bool {
	e.Velocity = geom.Vec2{}
	if e.Pos.Equal(dest) {
		return true
	}
	goal := e.nextWaypoint(w, dest)
	if goal.Equal(e.Pos) {
		return true
	}
	toGoal := goal.Sub(e.Pos)
	travel := e.Def.WalkingSpeed * dt
	if toGoal.Len() <= travel {
		e.Pos = goal
		return goal.Equal(dest)
	}
	e.Pos = w.clamp(geom.SlideStep(e.Pos, e.Size(), toGoal.Normalize().Scale(travel), w.Obstacles))
	return false
}
