package world

import (
	"math/rand"

	"github.com/RyanBerge/SphereDefender-sub000/internal/ai"
	"github.com/RyanBerge/SphereDefender-sub000/internal/core/ids"
	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"github.com/RyanBerge/SphereDefender-sub000/internal/pathfind"
)

const (
	spawnRetries    = 10
	waveMinDistance = 800.0 // wave packs appear at least this far from the convoy
)

// Projectile is a player shot in flight.
type Projectile struct {
	ID       uint16
	Owner    uint16
	Weapon   *data.Weapon
	Pos      geom.Vec2
	Velocity geom.Vec2
	Life     float64 // seconds left
}

// Kill records an enemy removed by the cull pass.
type Kill struct {
	EnemyID uint16
	Def     *data.EntityDefinition
	Killer  uint16 // player id, 0 when not killed by a player
	Pos     geom.Vec2
}

// Region is the one active play area. It is replaced wholesale on region
// transition; nothing inside it outlives the swap.
type Region struct {
	Def       *data.RegionDefinition
	Node      uint16
	Bounds    geom.Rect
	Convoy    geom.Rect
	Interior  geom.Rect
	Obstacles []geom.Rect

	Enemies     []*ai.Enemy
	Projectiles []*Projectile

	Battery     float64
	BatteryMax  float64
	Age         float64 // seconds since construction
	leylineRate float64
	waveTimer   float64

	entities      *data.EntityTable
	damage        DamageCalc
	rng           *rand.Rand
	paths         *pathfind.Cache
	enemyIDs      *ids.Pool
	projectileIDs *ids.Pool
	world         ai.World
}

// NewRegion builds a region from def, spawning its initial packs. seed
// drives every random choice the region makes.
func NewRegion(def *data.RegionDefinition, node uint16, entities *data.EntityTable, battery float64, cfg GameConfig, seed int64) *Region {
	center := def.Convoy.Position.Vec()
	convoy := geom.RectAround(center, geom.V(def.Convoy.Size.W, def.Convoy.Size.H))
	obstacles := def.ObstacleRects()
	r := &Region{
		Def:           def,
		Node:          node,
		Bounds:        geom.Rect{W: def.Size.W, H: def.Size.H},
		Convoy:        convoy,
		Interior:      def.Convoy.Interior.Rect().Translate(center),
		Obstacles:     obstacles,
		Battery:       geom.Clamp(battery, 0, cfg.BatteryMax),
		BatteryMax:    cfg.BatteryMax,
		leylineRate:   cfg.LeylineChargeRate,
		entities:      entities,
		damage:        BaseDamage{},
		rng:           rand.New(rand.NewSource(seed)),
		paths:         pathfind.NewCache(obstacles),
		enemyIDs:      ids.NewPool(),
		projectileIDs: ids.NewPool(),
	}
	r.world = ai.World{
		Obstacles: obstacles,
		Bounds:    r.Bounds,
		Convoy:    convoy,
		Leyline:   def.Leyline,
		Paths:     r.paths,
		Rng:       r.rng,
	}
	for _, pack := range def.Packs {
		r.spawnPack(pack, pack.Center.Vec())
	}
	return r
}

// SetDamage replaces the damage calculator used for projectile hits.
func (r *Region) SetDamage(c DamageCalc) { r.damage = c }

// PlayerSpawn is the point players gather around on arrival.
func (r *Region) PlayerSpawn() geom.Vec2 {
	return r.Convoy.Center().Add(r.Def.PlayerSpawn.Vec())
}

// Rng is the region's seeded random source.
func (r *Region) Rng() *rand.Rand { return r.rng }

// Enemy returns the living or dead enemy with id, or nil.
func (r *Region) Enemy(id uint16) *ai.Enemy {
	for _, e := range r.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// LivingEnemies counts enemies not yet dead.
func (r *Region) LivingEnemies() int {
	n := 0
	for _, e := range r.Enemies {
		if !e.Dead() {
			n++
		}
	}
	return n
}

// spawnPack places every member of pack around at, skipping bodies that
// cannot find a free spot.
func (r *Region) spawnPack(pack data.PackDefinition, at geom.Vec2) int {
	spawned := 0
	for _, m := range pack.Members {
		def := r.entities.Get(m.Entity)
		if def == nil {
			continue
		}
		size := geom.V(def.Hitbox.W, def.Hitbox.H)
		for i := 0; i < m.Count; i++ {
			pos, ok := r.freeSpot(at, pack.Spread, size)
			if !ok {
				continue
			}
			id, ok := r.enemyIDs.Acquire()
			if !ok {
				return spawned
			}
			r.Enemies = append(r.Enemies, ai.NewEnemy(id, def, pos))
			spawned++
		}
	}
	return spawned
}

func (r *Region) freeSpot(center geom.Vec2, spread float64, size geom.Vec2) (geom.Vec2, bool) {
	for i := 0; i < spawnRetries; i++ {
		p := geom.RandomInAnnulus(r.rng, center, 0, spread)
		if r.Bounds.Contains(p) && !geom.CollidesAny(geom.RectAround(p, size), r.Obstacles) &&
			!geom.RectAround(p, size).Intersects(r.Convoy) {
			return p, true
		}
	}
	return geom.Vec2{}, false
}

// SpawnWave spawns one random wave pack away from the convoy and returns the
// number of enemies added.
func (r *Region) SpawnWave() int {
	if len(r.Def.WavePacks) == 0 {
		return 0
	}
	pack := r.Def.WavePacks[r.rng.Intn(len(r.Def.WavePacks))]
	at := r.Bounds.Center()
	for i := 0; i < spawnRetries; i++ {
		p := geom.RandomInRect(r.rng, r.Bounds)
		if p.Dist(r.Convoy.Center()) >= waveMinDistance {
			at = p
			break
		}
	}
	return r.spawnPack(pack, at)
}

// Update advances the region by dt seconds: battery, enemy AI, projectiles
// and the wave timer. Players are stepped by the State, which owns them.
func (r *Region) Update(dt float64, targets []ai.Target) (waveSpawned int) {
	r.Age += dt

	if r.Def.Leyline {
		r.ChargeBattery(r.leylineRate * dt)
	}
	siphon := 0.0
	for _, e := range r.Enemies {
		siphon += e.SiphonRate()
	}
	if siphon > 0 {
		r.Battery = geom.Clamp(r.Battery-siphon*dt, 0, r.BatteryMax)
	}

	r.world.Targets = targets
	r.world.Enemies = r.Enemies
	for _, e := range r.Enemies {
		e.Update(&r.world, dt)
	}
	r.updateProjectiles(dt)

	if r.Def.WaveInterval > 0 {
		r.waveTimer += dt
		if r.waveTimer >= r.Def.WaveInterval {
			r.waveTimer -= r.Def.WaveInterval
			waveSpawned = r.SpawnWave()
		}
	}
	return waveSpawned
}

// ChargeBattery adds amount, clamped to the configured maximum.
func (r *Region) ChargeBattery(amount float64) {
	r.Battery = geom.Clamp(r.Battery+amount, 0, r.BatteryMax)
}

// Cull removes dead enemies and returns them.
func (r *Region) Cull() []Kill {
	var kills []Kill
	alive := r.Enemies[:0]
	for _, e := range r.Enemies {
		if !e.Dead() {
			alive = append(alive, e)
			continue
		}
		kills = append(kills, Kill{EnemyID: e.ID, Def: e.Def, Killer: e.LastHitBy, Pos: e.Pos})
		r.enemyIDs.Release(e.ID)
	}
	for i := len(alive); i < len(r.Enemies); i++ {
		r.Enemies[i] = nil
	}
	r.Enemies = alive
	return kills
}

// ── Projectiles ─────────────────────────────────────────────────────

// Fire launches a projectile from owner at pos toward angle.
func (r *Region) Fire(owner uint16, pos geom.Vec2, angle float64, w *data.Weapon) *Projectile {
	id, ok := r.projectileIDs.Acquire()
	if !ok {
		return nil
	}
	p := &Projectile{
		ID:       id,
		Owner:    owner,
		Weapon:   w,
		Pos:      pos,
		Velocity: geom.FromAngle(angle).Scale(w.ProjectileSpeed),
		Life:     w.Range / w.ProjectileSpeed,
	}
	r.Projectiles = append(r.Projectiles, p)
	return p
}

// updateProjectiles moves every projectile, damaging the first living enemy
// each one reaches. Spent projectiles are removed.
func (r *Region) updateProjectiles(dt float64) {
	kept := r.Projectiles[:0]
	for _, p := range r.Projectiles {
		from := p.Pos
		p.Pos = p.Pos.Add(p.Velocity.Scale(dt))
		p.Life -= dt
		spent := p.Life <= 0 || !r.Bounds.Contains(p.Pos)
		if !spent {
			for _, o := range r.Obstacles {
				if geom.SegmentIntersectsRect(from, p.Pos, o) {
					spent = true
					break
				}
			}
		}
		if !spent {
			for _, e := range r.Enemies {
				if e.Dead() {
					continue
				}
				if geom.SegmentIntersectsRect(from, p.Pos, e.Bounds()) {
					e.TakeDamage(r.damage.PlayerDamage(p.Weapon, e.Def), p.Owner)
					spent = true
					break
				}
			}
		}
		if spent {
			r.projectileIDs.Release(p.ID)
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(r.Projectiles); i++ {
		r.Projectiles[i] = nil
	}
	r.Projectiles = kept
}

// ── Snapshots ───────────────────────────────────────────────────────

func (r *Region) EnemyUpdate() packet.EnemyUpdate {
	m := packet.EnemyUpdate{Enemies: make([]packet.EnemyState, 0, len(r.Enemies))}
	for _, e := range r.Enemies {
		health := geom.Clamp(e.Health+0.5, 0, 65535)
		m.Enemies = append(m.Enemies, packet.EnemyState{
			ID:       e.ID,
			Type:     uint8(e.Def.Type),
			Pos:      point(e.Pos),
			Health:   uint16(health),
			Behavior: uint8(e.Behavior()),
			Action:   uint8(e.Action()),
		})
	}
	return m
}

func (r *Region) ProjectileUpdate() packet.ProjectileUpdate {
	m := packet.ProjectileUpdate{Projectiles: make([]packet.ProjectileState, 0, len(r.Projectiles))}
	for _, p := range r.Projectiles {
		m.Projectiles = append(m.Projectiles, packet.ProjectileState{
			ID:    p.ID,
			Pos:   point(p.Pos),
			Angle: float32(p.Velocity.Angle()),
		})
	}
	return m
}

func (r *Region) BatteryUpdate() packet.BatteryUpdate {
	return packet.BatteryUpdate{Level: float32(r.Battery)}
}
