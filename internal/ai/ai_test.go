package ai

import (
	"math"
	"math/rand"
	"testing"

	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/pathfind"
)

const dt = 0.008

func testDef() *data.EntityDefinition {
	return &data.EntityDefinition{
		Name:               "demon",
		Type:               data.EntitySmallDemon,
		MaxHealth:          50,
		Hitbox:             data.Size{W: 20, H: 20},
		SiphonRate:         0.5,
		BaseMovementSpeed:  100,
		WalkingSpeed:       50,
		Acceleration:       400,
		Deceleration:       600,
		SteeringForce:      1000,
		RepulsionForce:     500,
		RepulsionRadius:    40,
		AggroRange:         200,
		LeashRange:         500,
		CloseQuartersRange: 100,
		Aggression:         1,
		WanderRestMin:      1,
		WanderRestMax:      2,
		WanderRadiusMin:    50,
		WanderRadiusMax:    100,
		Behaviors: []data.BehaviorKind{
			data.BehaviorWandering, data.BehaviorFeeding, data.BehaviorHunting, data.BehaviorStalking,
		},
		Attacks: []data.AttackDefinition{{
			Kind: data.AttackLeaping, Damage: 10, Range: 150, Cooldown: 2, LeapWindupTime: 0.5, LeapTime: 0.25,
		}},
	}
}

func testWorld(seed int64, obstacles ...geom.Rect) *World {
	return &World{
		Obstacles: obstacles,
		Paths:     pathfind.NewCache(obstacles),
		Rng:       rand.New(rand.NewSource(seed)),
	}
}

func TestSetBehaviorResetsAllSubStates(t *testing.T) {
	for b := BehaviorNone; b <= BehaviorDead; b++ {
		e := NewEnemy(1, testDef(), geom.V(0, 0))
		e.wander = wanderSub{state: WanderMoving, timer: 3, dest: geom.V(1, 1)}
		e.feeding = feedingSub{state: FeedingHolding, dest: geom.V(2, 2)}
		e.hunting = huntingSub{state: HuntingChasing}
		e.stalking = stalkingSub{state: StalkingResting, timer: 1.2}

		e.setBehavior(b)

		if e.behavior != b {
			t.Fatalf("behavior = %v, want %v", e.behavior, b)
		}
		if e.wander != (wanderSub{}) || e.feeding != (feedingSub{}) ||
			e.hunting != (huntingSub{}) || e.stalking != (stalkingSub{}) {
			t.Fatalf("setBehavior(%v) left stale sub-state: %+v %+v %+v %+v",
				b, e.wander, e.feeding, e.hunting, e.stalking)
		}
	}
}

func TestIdleEnemyAggroes(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	w.Enemies = []*Enemy{e}
	w.Targets = []Target{{ID: 7, Pos: geom.V(150, 0), Alive: true}}

	e.Update(w, dt)
	if e.Behavior() != BehaviorHunting || e.Target() != 7 {
		t.Fatalf("behavior=%v target=%d, want Hunting 7", e.Behavior(), e.Target())
	}
}

func TestChooseBehaviorFallbacks(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	e.Update(w, dt)
	if e.Behavior() != BehaviorWandering {
		t.Fatalf("no players, no leyline: %v, want Wandering", e.Behavior())
	}

	w.Leyline = true
	e = NewEnemy(2, testDef(), geom.V(0, 0))
	e.Update(w, dt)
	if e.Behavior() != BehaviorFeeding {
		t.Fatalf("leyline: %v, want Feeding", e.Behavior())
	}

	def := testDef()
	def.Behaviors = nil
	e = NewEnemy(3, def, geom.V(0, 0))
	e.Update(w, dt)
	if e.Behavior() != BehaviorNone {
		t.Fatalf("no behaviors: %v, want None", e.Behavior())
	}
}

func TestLeashBreaksExactlyPastRange(t *testing.T) {
	def := testDef()
	def.BaseMovementSpeed = 0 // hold position so only the target moves
	def.Attacks = nil
	def.Behaviors = []data.BehaviorKind{data.BehaviorHunting}

	w := testWorld(1)
	e := NewEnemy(1, def, geom.V(0, 0))
	w.Enemies = []*Enemy{e}
	e.target = 9
	e.setBehavior(BehaviorHunting)

	for d := def.LeashRange - 5; d <= def.LeashRange+5; d += 0.5 {
		w.Targets = []Target{{ID: 9, Pos: geom.V(d, 0), Alive: true}}
		e.Update(w, dt)
		if d <= def.LeashRange && e.Behavior() != BehaviorHunting {
			t.Fatalf("gave up at distance %v, leash %v", d, def.LeashRange)
		}
		if d > def.LeashRange {
			if e.Behavior() != BehaviorNone {
				t.Fatalf("still %v at distance %v", e.Behavior(), d)
			}
			return
		}
	}
	t.Fatal("distance never exceeded leash")
}

func TestHuntingLostTargetReverts(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	e.target = 3
	e.setBehavior(BehaviorHunting)
	w.Targets = []Target{{ID: 3, Pos: geom.V(50, 0), Alive: false}}
	e.Update(w, dt)
	if e.Behavior() != BehaviorNone {
		t.Fatalf("behavior = %v, want None", e.Behavior())
	}
}

func TestHuntingCloseQuartersStalks(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	e.target = 3
	e.setBehavior(BehaviorHunting)
	w.Targets = []Target{{ID: 3, Pos: geom.V(60, 0), Alive: true}}
	e.Update(w, dt)
	if e.Behavior() != BehaviorStalking {
		t.Fatalf("behavior = %v, want Stalking", e.Behavior())
	}
}

func TestHuntingReachesTargetAgainstWall(t *testing.T) {
	def := testDef()
	def.Hitbox = data.Size{W: 36, H: 36}
	def.Attacks = nil
	def.Behaviors = []data.BehaviorKind{data.BehaviorHunting, data.BehaviorStalking}

	w := testWorld(1, geom.Rect{X: 100, Y: 0, W: 100, H: 200})
	start := geom.V(150, 400)
	e := NewEnemy(1, def, start)
	w.Enemies = []*Enemy{e}
	// Player body flush with the wall's right edge.
	w.Targets = []Target{{ID: 4, Pos: geom.V(216, 100), Alive: true}}
	e.target = 4
	e.setBehavior(BehaviorHunting)

	for i := 0; i < 500 && e.Behavior() == BehaviorHunting; i++ {
		e.Update(w, dt)
	}
	if e.Behavior() != BehaviorStalking {
		t.Fatalf("behavior = %v at %v (started %v), want Stalking near the target",
			e.Behavior(), e.Pos, start)
	}
}

func TestAttackPicksAttackInRange(t *testing.T) {
	def := testDef()
	def.Attacks = []data.AttackDefinition{
		{Kind: data.AttackTailSwipe, Range: 50, Cooldown: 1},
		{Kind: data.AttackLeaping, Range: 300, Cooldown: 1, LeapWindupTime: 0.1, LeapTime: 0.1},
	}
	for seed := int64(0); seed < 20; seed++ {
		w := testWorld(seed)
		e := NewEnemy(1, def, geom.V(0, 0))
		if !e.attack(w, Target{ID: 1, Pos: geom.V(200, 0), Alive: true}) {
			t.Fatalf("seed %d: no attack started", seed)
		}
		if e.Action() != ActionLeaping || e.currentAttack != 1 {
			t.Fatalf("seed %d: action %v attack %d, want Leaping 1", seed, e.Action(), e.currentAttack)
		}
	}
}

func TestAttackSelectionIsSeedDeterministic(t *testing.T) {
	def := testDef()
	def.Attacks = []data.AttackDefinition{
		{Kind: data.AttackTailSwipe, Range: 300, Cooldown: 1},
		{Kind: data.AttackTackling, Range: 300, Cooldown: 1},
		{Kind: data.AttackLeaping, Range: 300, Cooldown: 1, LeapWindupTime: 0.1, LeapTime: 0.1},
	}
	pick := func(seed int64) int {
		w := testWorld(seed)
		e := NewEnemy(1, def, geom.V(0, 0))
		e.attack(w, Target{ID: 1, Pos: geom.V(10, 0), Alive: true})
		return e.currentAttack
	}
	seen := map[int]bool{}
	for seed := int64(0); seed < 30; seed++ {
		a, b := pick(seed), pick(seed)
		if a != b {
			t.Fatalf("seed %d picked %d then %d", seed, a, b)
		}
		seen[a] = true
	}
	if len(seen) < 2 {
		t.Fatalf("shuffle never varied the pick: %v", seen)
	}
}

func TestAttackRespectsCooldown(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	e.attacks[0].cooldown = 1
	if e.attack(w, Target{ID: 1, Pos: geom.V(10, 0), Alive: true}) {
		t.Fatal("attack started while on cooldown")
	}
}

func TestLeapPhases(t *testing.T) {
	def := testDef()
	w := testWorld(1)
	e := NewEnemy(1, def, geom.V(0, 0))
	w.Enemies = []*Enemy{e}
	target := Target{ID: 2, Pos: geom.V(120, 0), Alive: true}
	w.Targets = []Target{target}
	e.target = 2

	if !e.attack(w, target) {
		t.Fatal("attack did not start")
	}
	leap := def.Attacks[0]

	// Windup: stands still for leap_windup_time.
	ticks := int(math.Ceil(leap.LeapWindupTime / dt))
	for i := 0; i < ticks-1; i++ {
		e.Update(w, dt)
	}
	if e.leap.state != LeapWindup || !e.Pos.Equal(geom.V(0, 0)) {
		t.Fatalf("windup ended early: state=%v pos=%v", e.leap.state, e.Pos)
	}
	if _, striking := e.Striking(); striking {
		t.Fatal("striking during windup")
	}
	e.Update(w, dt)
	if e.leap.state != LeapDash {
		t.Fatalf("state = %v, want dash", e.leap.state)
	}
	if _, striking := e.Striking(); !striking {
		t.Fatal("not striking during dash")
	}
	if !e.MarkHit(2) || e.MarkHit(2) {
		t.Fatal("a player must be hit exactly once per leap")
	}

	// Dash: 4× base speed toward the target.
	before := e.Pos
	e.Update(w, dt)
	moved := e.Pos.Sub(before)
	if want := def.BaseMovementSpeed * 4 * dt; math.Abs(moved.Len()-want) > 1e-6 || moved.X <= 0 {
		t.Fatalf("dash step %v, want length %v toward +X", moved, want)
	}

	for i := 0; i < 200 && e.Action() != ActionNone; i++ {
		e.Update(w, dt)
	}
	if e.Action() != ActionNone {
		t.Fatal("leap never finished")
	}
	if math.Abs(e.attacks[0].cooldown-leap.Cooldown) > dt {
		t.Fatalf("cooldown = %v, want ≈%v", e.attacks[0].cooldown, leap.Cooldown)
	}
}

func TestPlaceholderActionsEndImmediately(t *testing.T) {
	tests := []struct {
		kind data.AttackKind
		want Action
	}{
		{data.AttackTackling, ActionTackling},
		{data.AttackTailSwipe, ActionTailSwipe},
	}
	for _, tt := range tests {
		def := testDef()
		def.Attacks = []data.AttackDefinition{{Kind: tt.kind, Range: 100, Cooldown: 3}}
		w := testWorld(1)
		e := NewEnemy(1, def, geom.V(0, 0))
		if !e.attack(w, Target{ID: 1, Pos: geom.V(10, 0), Alive: true}) {
			t.Fatalf("%s: attack did not start", tt.kind)
		}
		if e.Action() != tt.want {
			t.Fatalf("%s: action = %v", tt.kind, e.Action())
		}
		if _, ok := e.Striking(); ok {
			t.Errorf("%s: strikes without a dash", tt.kind)
		}
		e.Update(w, dt)
		if e.Action() != ActionNone || e.attacks[0].cooldown != 3 {
			t.Fatalf("%s: action=%v cooldown=%v", tt.kind, e.Action(), e.attacks[0].cooldown)
		}
	}
}

func TestStuckRecoveryPushesOutAndSkipsBehavior(t *testing.T) {
	wall := geom.Rect{X: -50, Y: -50, W: 100, H: 100}
	w := testWorld(1, wall)
	e := NewEnemy(1, testDef(), geom.V(30, 0))
	w.Targets = []Target{{ID: 1, Pos: geom.V(60, 0), Alive: true}}

	e.Update(w, dt)
	if e.Pos.X <= 30 || e.Pos.Y != 0 {
		t.Fatalf("pos = %v, want pushed along +X", e.Pos)
	}
	if e.Behavior() != BehaviorNone {
		t.Fatalf("behavior ran while stuck: %v", e.Behavior())
	}
}

func TestWanderRestsThenPicksReachableDestination(t *testing.T) {
	def := testDef()
	def.Behaviors = []data.BehaviorKind{data.BehaviorWandering}
	obstacle := geom.Rect{X: 40, Y: -200, W: 400, H: 400}
	w := testWorld(3, obstacle)
	e := NewEnemy(1, def, geom.V(0, 0))

	e.Update(w, dt) // None → Wandering
	e.Update(w, dt) // Start → Resting
	if e.wander.state != WanderResting {
		t.Fatalf("state = %v, want resting", e.wander.state)
	}
	if e.wander.timer < def.WanderRestMin || e.wander.timer > def.WanderRestMax {
		t.Fatalf("rest timer %v outside [%v, %v]", e.wander.timer, def.WanderRestMin, def.WanderRestMax)
	}
	for i := 0; i < 1000 && e.wander.state == WanderResting; i++ {
		e.Update(w, dt)
	}
	if e.wander.state != WanderMoving {
		t.Fatalf("never left resting: %v", e.wander.state)
	}
	dest := e.wander.dest
	if !dest.Equal(e.Spawn) {
		d := dest.Dist(e.Spawn)
		if d < def.WanderRadiusMin-1e-9 || d > def.WanderRadiusMax+1e-9 {
			t.Fatalf("destination %v at distance %v outside annulus", dest, d)
		}
	}
	if w.blocked(dest, e.Size()) {
		t.Fatalf("destination %v is blocked", dest)
	}
}

func TestFeedingHoldsOutsideConvoyAndSiphons(t *testing.T) {
	def := testDef()
	def.Behaviors = []data.BehaviorKind{data.BehaviorFeeding}
	w := testWorld(5)
	w.Leyline = true
	w.Convoy = geom.Rect{X: -100, Y: -40, W: 200, H: 80}
	e := NewEnemy(1, def, geom.V(0, 250))

	e.Update(w, dt) // None → Feeding
	e.Update(w, dt) // Start → Approach
	e.Update(w, dt) // within 300 → spot picked
	if e.feeding.state != FeedingMoving {
		t.Fatalf("state = %v, want moving", e.feeding.state)
	}
	spot := e.feeding.dest
	if geom.RectAround(spot, e.Size()).Intersects(w.Convoy) {
		t.Fatalf("feeding spot %v overlaps the convoy", spot)
	}
	if !w.Convoy.Pad(feedingPadding).Contains(spot) {
		t.Fatalf("feeding spot %v outside the padded zone", spot)
	}
	if e.SiphonRate() != 0 {
		t.Fatal("siphoning before arrival")
	}

	e.Pos = spot
	e.Update(w, dt)
	if e.feeding.state != FeedingHolding || e.SiphonRate() != def.SiphonRate {
		t.Fatalf("state=%v siphon=%v", e.feeding.state, e.SiphonRate())
	}
}

func TestStalkingRepositionsAroundTarget(t *testing.T) {
	w := testWorld(11)
	e := NewEnemy(1, testDef(), geom.V(80, 0))
	target := Target{ID: 4, Pos: geom.V(0, 0), Alive: true}
	w.Targets = []Target{target}
	e.target = 4
	e.setBehavior(BehaviorStalking)

	e.Update(w, dt)
	if e.stalking.state != StalkingRepositioning {
		t.Fatalf("state = %v", e.stalking.state)
	}
	spot := e.stalking.dest
	d := spot.Dist(target.Pos)
	cq := e.Def.CloseQuartersRange
	if d < cq*0.5-1e-9 || d > cq+1e-9 {
		t.Fatalf("stalk spot %v at %v from target", spot, d)
	}
	if a := math.Abs(spot.Sub(target.Pos).Angle()); a > stalkHalfArc+1e-9 {
		t.Fatalf("stalk spot angle %v outside cone facing the enemy", a)
	}
}

func TestStalkingBreaksWhenTargetDrifts(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	e.target = 4
	e.setBehavior(BehaviorStalking)
	w.Targets = []Target{{ID: 4, Pos: geom.V(e.Def.CloseQuartersRange*1.2+1, 0), Alive: true}}
	e.Update(w, dt)
	if e.Behavior() != BehaviorNone {
		t.Fatalf("behavior = %v, want None", e.Behavior())
	}
}

func TestWalkSnapsOntoGoal(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	dest := geom.V(e.Def.WalkingSpeed*dt*0.5, 0)
	if !e.walkToward(w, dest, dt) || !e.Pos.Equal(dest) {
		t.Fatalf("pos = %v, want exactly %v", e.Pos, dest)
	}
}

func TestTakeDamageKillsAndFreezes(t *testing.T) {
	w := testWorld(1)
	e := NewEnemy(1, testDef(), geom.V(0, 0))
	if e.TakeDamage(10, 5) {
		t.Fatal("killed by a partial hit")
	}
	if e.Behavior() != BehaviorHunting || e.Target() != 5 {
		t.Fatalf("did not turn on attacker: %v %d", e.Behavior(), e.Target())
	}
	if !e.TakeDamage(100, 5) || !e.Dead() || e.Health != 0 {
		t.Fatalf("dead=%v health=%v", e.Dead(), e.Health)
	}
	pos := e.Pos
	w.Targets = []Target{{ID: 5, Pos: geom.V(10, 0), Alive: true}}
	e.Update(w, dt)
	if !e.Pos.Equal(pos) || e.Behavior() != BehaviorDead {
		t.Fatal("dead enemy updated")
	}
	if e.TakeDamage(10, 5) {
		t.Fatal("dead enemy killed twice")
	}
}

func TestRepulsionPushesApart(t *testing.T) {
	w := testWorld(1)
	a := NewEnemy(1, testDef(), geom.V(0, 0))
	b := NewEnemy(2, testDef(), geom.V(10, 0))
	w.Enemies = []*Enemy{a, b}
	if p := a.repulsion(w); p.X >= 0 {
		t.Fatalf("repulsion %v should point away from b", p)
	}
	if f := a.repulsionFade(geom.V(a.Def.Hitbox.W*0.5, 0)); f != 0 {
		t.Fatalf("fade near goal = %v, want 0", f)
	}
	if f := a.repulsionFade(geom.V(a.Def.Hitbox.W*4, 0)); f != 1 {
		t.Fatalf("fade far from goal = %v, want 1", f)
	}
}
