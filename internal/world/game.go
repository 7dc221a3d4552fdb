package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBerge/SphereDefender-sub000/internal/ai"
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

var (
	ErrNotAdjacent = errors.New("region not adjacent")
	ErrUnknownNode = errors.New("unknown region node")
)

// GatherChange is a player entering or leaving the convoy interior.
type GatherChange struct {
	Player uint16
	Active bool
}

// TickResult collects what one simulation step changed that clients must
// hear about outside the regular snapshot.
type TickResult struct {
	Kills        []Kill
	Deaths       []uint16
	Gathers      []GatherChange
	StashChanged bool
	WaveSpawned  int
	AllGathered  bool
}

// Simulate advances the running game by dt seconds. Nothing moves while a
// GUI pause is open.
func (s *State) Simulate(dt float64) TickResult {
	var res TickResult
	if s.Phase != PhaseGame || s.Region == nil || s.Paused() {
		return res
	}
	r := s.Region
	body := s.playerBody()

	for _, p := range s.order {
		if p.Alive() {
			s.movePlayer(p, body, dt)
			s.stepSwing(p, body, dt)
		}
	}

	res.WaveSpawned = r.Update(dt, s.targets(body))
	s.enemyStrikes(body, &res)

	for _, k := range r.Cull() {
		res.Kills = append(res.Kills, k)
		if k.Killer != 0 && s.rollLoot(k) {
			res.StashChanged = true
		}
	}

	var all bool
	res.Gathers, all = s.updateGathering()
	// Only the moment the last player steps in counts, so a cancelled
	// overmap does not reopen until someone leaves and returns.
	res.AllGathered = all && !s.allGathered
	s.allGathered = all
	return res
}

func (s *State) playerBody() geom.Vec2 {
	def := s.Defs.Entities.Get(data.PlayerEntity)
	return geom.V(def.Hitbox.W, def.Hitbox.H)
}

func (s *State) targets(body geom.Vec2) []ai.Target {
	out := make([]ai.Target, 0, len(s.order))
	for _, p := range s.order {
		if p.InGame() {
			out = append(out, ai.Target{ID: p.ID, Pos: p.Pos, Size: body, Alive: p.Alive()})
		}
	}
	return out
}

// ── Players ─────────────────────────────────────────────────────────

func (s *State) movePlayer(p *Player, body geom.Vec2, dt float64) {
	if p.Console {
		return
	}
	dx, dy := p.Movement.Direction()
	dir := geom.V(dx, dy)
	if dir.IsZero() {
		return
	}
	speed := s.Defs.Entities.Get(data.PlayerEntity).BaseMovementSpeed
	step := dir.Normalize().Scale(speed * dt)
	r := s.Region
	next := geom.SlideStep(p.Pos, body, step, r.Obstacles)
	p.Pos = geom.V(
		geom.Clamp(next.X, r.Bounds.Left(), r.Bounds.Right()),
		geom.Clamp(next.Y, r.Bounds.Top(), r.Bounds.Bottom()),
	)
}

// StartAttack begins p's weapon attack toward angle. Melee weapons open a
// swing that hits each enemy once; ranged weapons fire one projectile.
func (s *State) StartAttack(p *Player, angle float64) bool {
	if s.Phase != PhaseGame || s.Paused() || !p.Alive() || p.cooldown > 0 {
		return false
	}
	w := s.Defs.Weapons.Get(p.Weapon)
	if w == nil {
		return false
	}
	p.AttackAngle = angle
	p.cooldown = w.Cooldown
	if w.Kind == data.WeaponRanged {
		s.Region.Fire(p.ID, p.Pos, angle, w)
		p.Attacking = true
		p.attackTimer = w.AttackTime
		p.swingHits = nil
		return true
	}
	p.Attacking = true
	p.attackTimer = w.AttackTime
	p.swingHits = make(map[uint16]bool)
	return true
}

// stepSwing ticks p's attack timers and resolves melee hits for an active
// swing.
func (s *State) stepSwing(p *Player, body geom.Vec2, dt float64) {
	if p.cooldown > 0 {
		p.cooldown -= dt
	}
	if !p.Attacking {
		return
	}
	w := s.Defs.Weapons.Get(p.Weapon)
	if w != nil && w.Kind == data.WeaponMelee && p.swingHits != nil {
		half := geom.DegToRad(w.Arc) / 2
		facing := geom.FromAngle(p.AttackAngle)
		for _, e := range s.Region.Enemies {
			if e.Dead() || p.swingHits[e.ID] {
				continue
			}
			to := e.Pos.Sub(p.Pos)
			reach := w.Range + math.Max(e.Def.Hitbox.W, e.Def.Hitbox.H)/2
			if to.Len() > reach {
				continue
			}
			if !to.IsZero() && geom.AngleBetween(facing, to) > half {
				continue
			}
			p.swingHits[e.ID] = true
			e.TakeDamage(s.Damage.PlayerDamage(w, e.Def), p.ID)
		}
	}
	p.attackTimer -= dt
	if p.attackTimer <= 0 {
		p.Attacking = false
		p.swingHits = nil
	}
}

// enemyStrikes applies damage from enemies mid-strike to every living
// player their body touches, once per strike.
func (s *State) enemyStrikes(body geom.Vec2, res *TickResult) {
	for _, e := range s.Region.Enemies {
		attack, ok := e.Striking()
		if !ok {
			continue
		}
		hitbox := e.Bounds()
		for _, p := range s.order {
			if !p.Alive() || !geom.RectAround(p.Pos, body).Intersects(hitbox) {
				continue
			}
			if !e.MarkHit(p.ID) {
				continue
			}
			if p.Damage(s.Damage.EnemyDamage(attack, e.Def, p.Health)) {
				res.Deaths = append(res.Deaths, p.ID)
			}
		}
	}
}

// ── Items ───────────────────────────────────────────────────────────

func (s *State) rollLoot(k Kill) bool {
	changed := false
	for _, l := range k.Def.Loot {
		if s.Region.Rng().Float64() >= l.Chance {
			continue
		}
		if it := s.Defs.Items.ByName(l.Item); it != nil && s.AddToStash(it.ID) {
			changed = true
		}
	}
	return changed
}

// AddToStash puts item in the first empty slot. It reports false when the
// stash is full.
func (s *State) AddToStash(item uint8) bool {
	for i, slot := range s.Stash {
		if slot == data.ItemNone {
			s.Stash[i] = item
			return true
		}
	}
	return false
}

// UseItem consumes p's held item. It reports whether anything was used.
func (s *State) UseItem(p *Player) bool {
	if s.Phase != PhaseGame || !p.Alive() || p.Item == data.ItemNone {
		return false
	}
	it := s.Defs.Items.Get(p.Item)
	if it == nil {
		p.Item = data.ItemNone
		return false
	}
	if it.Heal > 0 {
		p.Heal(it.Heal)
	}
	if it.Battery > 0 {
		s.Region.ChargeBattery(it.Battery)
	}
	p.Item = data.ItemNone
	return true
}

// SwapItem exchanges p's held item with stash slot.
func (s *State) SwapItem(p *Player, slot uint8) error {
	if s.Phase != PhaseGame {
		return ErrWrongPhase
	}
	if int(slot) >= len(s.Stash) {
		return fmt.Errorf("stash slot %d out of range", slot)
	}
	p.Item, s.Stash[slot] = s.Stash[slot], p.Item
	return nil
}

// ── Gathering and travel ────────────────────────────────────────────

// updateGathering refreshes which living players stand inside the convoy
// and reports whether all of them do.
func (s *State) updateGathering() ([]GatherChange, bool) {
	var changes []GatherChange
	alive := 0
	gathered := 0
	for _, p := range s.order {
		inside := p.Alive() && s.Region.Interior.Contains(p.Pos)
		if inside != p.Gathered {
			p.Gathered = inside
			changes = append(changes, GatherChange{Player: p.ID, Active: inside})
		}
		if p.Alive() {
			alive++
			if inside {
				gathered++
			}
		}
	}
	return changes, alive > 0 && gathered == alive
}

// OpenOvermap pauses the game for a region-select vote.
func (s *State) OpenOvermap() {
	s.Gui = packet.GuiOvermap
	s.ResetVotes()
}

// CloseGui resumes the game.
func (s *State) CloseGui() {
	s.Gui = packet.GuiNone
	s.Menu = nil
	s.ResetVotes()
}

// TravelResult reports a completed region transition.
type TravelResult struct {
	From, To  uint16
	Cost      float64
	Underflow bool // battery was short; travel still happened
	Battery   float64
}

// TravelTo replaces the current region with node's region. node must be
// adjacent. A battery shortfall is reported but does not block travel; the
// battery empties instead.
func (s *State) TravelTo(node uint16) (TravelResult, error) {
	if s.Phase != PhaseGame || s.Zone == nil || s.Region == nil {
		return TravelResult{}, ErrWrongPhase
	}
	res := TravelResult{From: s.Region.Node, To: node}
	target := s.Zone.Node(node)
	if target == nil {
		return res, fmt.Errorf("%w: %d", ErrUnknownNode, node)
	}
	dist, ok := s.Zone.Distance(s.Region.Node, node)
	if !ok {
		return res, fmt.Errorf("%w: %d -> %d", ErrNotAdjacent, s.Region.Node, node)
	}
	def := s.Defs.Regions.Get(target.Type)
	if def == nil {
		return res, fmt.Errorf("%w: region type %d", ErrUnknownNode, target.Type)
	}
	// Resolve the arrival event before anything changes.
	var menu *data.MenuEvent
	if def.MenuEvent != 0 {
		ev, err := s.menuEvent(def.MenuEvent)
		if err != nil {
			return res, fmt.Errorf("region %s: %w", def.Name, err)
		}
		menu = ev
	}

	res.Cost = dist * s.Cfg.BatteryCostPerUnit
	battery := s.Region.Battery - res.Cost
	if battery < 0 {
		res.Underflow = true
		battery = 0
	}
	res.Battery = battery

	s.Region = s.buildRegion(def, node, battery)
	s.Visited++
	s.CloseGui()
	for _, p := range s.order {
		if p.InGame() {
			p.Revive()
		}
	}
	s.assignSpawns()
	if menu != nil {
		s.openMenu(menu)
	}
	return res, nil
}
