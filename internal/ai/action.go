package ai

import (
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
)

// leapSpeedFactor multiplies base speed during the dash and during stuck
// recovery.
const leapSpeedFactor = 4.0

func actionFor(kind data.AttackKind) Action {
	switch kind {
	case data.AttackLeaping:
		return ActionLeaping
	case data.AttackTackling:
		return ActionTackling
	case data.AttackTailSwipe:
		return ActionTailSwipe
	}
	return ActionNone
}

// attack picks a random ready attack whose range covers the distance to t
// and starts it. It reports whether an attack started.
func (e *Enemy) attack(w *World, t Target) bool {
	ready := make([]int, 0, len(e.attacks))
	for i, a := range e.attacks {
		if a.cooldown <= 0 && actionFor(a.def.Kind) != ActionNone {
			ready = append(ready, i)
		}
	}
	if len(ready) == 0 {
		return false
	}
	w.Rng.Shuffle(len(ready), func(i, j int) { ready[i], ready[j] = ready[j], ready[i] })

	d := e.Pos.Dist(t.Pos)
	for _, i := range ready {
		if e.attacks[i].def.Range >= d {
			e.startAttack(i, t)
			return true
		}
	}
	return false
}

func (e *Enemy) startAttack(i int, t Target) {
	e.currentAttack = i
	e.setAction(actionFor(e.attacks[i].def.Kind))
	e.Velocity = geom.Vec2{}
	e.maxSpeed = 0
	if e.action == ActionLeaping {
		e.leap.state = LeapWindup
		e.leap.timer = e.attacks[i].def.LeapWindupTime
		e.leap.dir = t.Pos.Sub(e.Pos).Normalize()
	}
}

// finishAttack puts the running attack on cooldown and ends the action.
func (e *Enemy) finishAttack() {
	if e.currentAttack < len(e.attacks) {
		a := &e.attacks[e.currentAttack]
		a.cooldown = a.def.Cooldown
	}
	e.setAction(ActionNone)
}

func (e *Enemy) updateAction(w *World, dt float64) {
	switch e.action {
	case ActionLeaping:
		e.updateLeap(w, dt)
	default:
		// Tackling, Knockback, Sniffing, Stunned and TailSwipe carry no
		// behavior of their own yet and end immediately.
		e.finishAttack()
	}
}

// updateLeap runs the windup then a fixed-direction dash.
func (e *Enemy) updateLeap(w *World, dt float64) {
	switch e.leap.state {
	case LeapWindup:
		e.Velocity = geom.Vec2{}
		e.leap.timer -= dt
		if e.leap.timer > 0 {
			return
		}
		// Aim at where the target is now, not where it was at windup start.
		if t, ok := w.target(e.target); ok && t.Alive {
			if dir := t.Pos.Sub(e.Pos); !dir.IsZero() {
				e.leap.dir = dir.Normalize()
			}
		}
		e.leap.state = LeapDash
		e.leap.timer = e.attacks[e.currentAttack].def.LeapTime
	case LeapDash:
		speed := e.Def.BaseMovementSpeed * leapSpeedFactor
		e.Velocity = e.leap.dir.Scale(speed)
		step := e.Velocity.Scale(dt)
		e.Pos = w.clamp(geom.SlideStep(e.Pos, e.Size(), step, w.Obstacles))
		e.leap.timer -= dt
		if e.leap.timer <= 0 {
			e.Velocity = geom.Vec2{}
			e.finishAttack()
		}
	}
}
