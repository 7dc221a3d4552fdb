package ai

import (
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
)

// Behavior is the enemy's outer, long-running intent.
type Behavior uint8

const (
	BehaviorNone Behavior = iota
	BehaviorWandering
	BehaviorFeeding
	BehaviorHunting
	BehaviorStalking
	BehaviorDead
)

func (b Behavior) String() string {
	switch b {
	case BehaviorNone:
		return "None"
	case BehaviorWandering:
		return "Wandering"
	case BehaviorFeeding:
		return "Feeding"
	case BehaviorHunting:
		return "Hunting"
	case BehaviorStalking:
		return "Stalking"
	case BehaviorDead:
		return "Dead"
	}
	return "Unknown"
}

// Action is a short activity that suspends behavior processing while it runs.
type Action uint8

const (
	ActionNone Action = iota
	ActionTackling
	ActionKnockback
	ActionSniffing
	ActionStunned
	ActionLeaping
	ActionTailSwipe
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionTackling:
		return "Tackling"
	case ActionKnockback:
		return "Knockback"
	case ActionSniffing:
		return "Sniffing"
	case ActionStunned:
		return "Stunned"
	case ActionLeaping:
		return "Leaping"
	case ActionTailSwipe:
		return "TailSwipe"
	}
	return "Unknown"
}

// ── Sub-states ──────────────────────────────────────────────────────
// Each behavior keeps its own phase. The zero value of every phase is its
// Start variant; setBehavior resets them all.

type WanderState uint8

const (
	WanderStart WanderState = iota
	WanderResting
	WanderMoving
)

type FeedingState uint8

const (
	FeedingStart FeedingState = iota
	FeedingApproach
	FeedingMoving
	FeedingHolding
)

type HuntingState uint8

const (
	HuntingStart HuntingState = iota
	HuntingChasing
)

type StalkingState uint8

const (
	StalkingStart StalkingState = iota
	StalkingRepositioning
	StalkingResting
)

type LeapState uint8

const (
	LeapWindup LeapState = iota
	LeapDash
)

type wanderSub struct {
	state WanderState
	timer float64
	dest  geom.Vec2
}

type feedingSub struct {
	state FeedingState
	dest  geom.Vec2
}

type huntingSub struct {
	state HuntingState
}

type stalkingSub struct {
	state StalkingState
	timer float64
	dest  geom.Vec2
}

type leapSub struct {
	state LeapState
	timer float64
	dir   geom.Vec2
	hit   map[uint16]bool
}

type attackSlot struct {
	def      *data.AttackDefinition
	cooldown float64 // seconds until ready
}

// ── Enemy ───────────────────────────────────────────────────────────

// Enemy is one AI-driven creature owned by a region.
type Enemy struct {
	ID       uint16
	Def      *data.EntityDefinition
	Pos      geom.Vec2
	Velocity geom.Vec2
	Health   float64
	Spawn    geom.Vec2

	// LastHitBy is the player who last damaged the enemy, 0 if none.
	LastHitBy uint16

	behavior Behavior
	action   Action
	target   uint16 // hunting/stalking target player id
	maxSpeed float64

	wander   wanderSub
	feeding  feedingSub
	hunting  huntingSub
	stalking stalkingSub
	leap     leapSub

	attacks       []attackSlot
	currentAttack int // index into attacks while an action runs
}

func NewEnemy(id uint16, def *data.EntityDefinition, pos geom.Vec2) *Enemy {
	e := &Enemy{
		ID:     id,
		Def:    def,
		Pos:    pos,
		Health: def.MaxHealth,
		Spawn:  pos,
	}
	e.attacks = make([]attackSlot, len(def.Attacks))
	for i := range def.Attacks {
		e.attacks[i] = attackSlot{def: &def.Attacks[i]}
	}
	return e
}

func (e *Enemy) Behavior() Behavior { return e.behavior }
func (e *Enemy) Action() Action     { return e.action }
func (e *Enemy) Target() uint16     { return e.target }
func (e *Enemy) Dead() bool         { return e.behavior == BehaviorDead }

// Size returns the hitbox dimensions.
func (e *Enemy) Size() geom.Vec2 { return geom.V(e.Def.Hitbox.W, e.Def.Hitbox.H) }

// Bounds returns the hitbox rectangle at the current position.
func (e *Enemy) Bounds() geom.Rect { return geom.RectAround(e.Pos, e.Size()) }

// SiphonRate is the battery drain per second this enemy applies to the
// convoy. Non-zero only while holding at a feeding spot.
func (e *Enemy) SiphonRate() float64 {
	if e.behavior == BehaviorFeeding && e.feeding.state == FeedingHolding {
		return e.Def.SiphonRate
	}
	return 0
}

// setBehavior switches the outer state and resets every sub-state machine.
func (e *Enemy) setBehavior(b Behavior) {
	e.behavior = b
	e.wander = wanderSub{}
	e.feeding = feedingSub{}
	e.hunting = huntingSub{}
	e.stalking = stalkingSub{}
}

func (e *Enemy) setAction(a Action) {
	e.action = a
	e.leap = leapSub{}
}

// Update advances the enemy by dt seconds.
func (e *Enemy) Update(w *World, dt float64) {
	if e.behavior == BehaviorDead {
		return
	}
	for i := range e.attacks {
		if e.attacks[i].cooldown > 0 {
			e.attacks[i].cooldown -= dt
		}
	}
	if e.recoverStuck(w, dt) {
		return
	}
	if e.action != ActionNone {
		e.updateAction(w, dt)
		return
	}

	switch e.behavior {
	case BehaviorNone:
		e.Velocity = geom.Vec2{}
		e.chooseBehavior(w)
	case BehaviorWandering:
		e.updateWandering(w, dt)
	case BehaviorFeeding:
		e.updateFeeding(w, dt)
	case BehaviorHunting:
		e.updateHunting(w, dt)
	case BehaviorStalking:
		e.updateStalking(w, dt)
	}
}

// TakeDamage applies amount from player `from` (0 for environment) and
// reports whether the hit killed the enemy. A calm enemy that can hunt
// turns on its attacker.
func (e *Enemy) TakeDamage(amount float64, from uint16) bool {
	if e.behavior == BehaviorDead || amount <= 0 {
		return false
	}
	e.Health -= amount
	if from != 0 {
		e.LastHitBy = from
	}
	if e.Health <= 0 {
		e.Health = 0
		e.Velocity = geom.Vec2{}
		e.setAction(ActionNone)
		e.setBehavior(BehaviorDead)
		return true
	}
	if from != 0 && e.action == ActionNone && e.Def.Can(data.BehaviorHunting) {
		switch e.behavior {
		case BehaviorNone, BehaviorWandering, BehaviorFeeding:
			e.target = from
			e.setBehavior(BehaviorHunting)
		}
	}
	return false
}

// Striking returns the running attack while its hits land (the dash phase
// of a leap). Each player may be hit once per strike; see MarkHit.
func (e *Enemy) Striking() (*data.AttackDefinition, bool) {
	if e.action == ActionLeaping && e.leap.state == LeapDash {
		return e.attacks[e.currentAttack].def, true
	}
	return nil, false
}

// MarkHit records that the current strike hit player id. It returns false
// when that player was already hit by this strike.
func (e *Enemy) MarkHit(id uint16) bool {
	if e.leap.hit == nil {
		e.leap.hit = make(map[uint16]bool)
	}
	if e.leap.hit[id] {
		return false
	}
	e.leap.hit[id] = true
	return true
}
