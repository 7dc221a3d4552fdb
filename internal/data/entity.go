package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityType identifies an enemy species on the wire.
type EntityType uint8

const (
	EntityPlayer     EntityType = 0
	EntitySmallDemon EntityType = 1
	EntityBat        EntityType = 2
)

// BehaviorKind names an outer AI behavior a species may use.
type BehaviorKind string

const (
	BehaviorWandering BehaviorKind = "wandering"
	BehaviorFeeding   BehaviorKind = "feeding"
	BehaviorHunting   BehaviorKind = "hunting"
	BehaviorStalking  BehaviorKind = "stalking"
)

// AttackKind names an AI action an attack starts.
type AttackKind string

const (
	AttackLeaping   AttackKind = "leaping"
	AttackTackling  AttackKind = "tackling"
	AttackTailSwipe AttackKind = "tail_swipe"
)

// Size is a width/height pair.
type Size struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// AttackDefinition describes one attack a species can choose.
type AttackDefinition struct {
	Kind           AttackKind `yaml:"type"`
	Damage         float64    `yaml:"damage"`
	Range          float64    `yaml:"range"`
	Cooldown       float64    `yaml:"cooldown"`         // seconds
	LeapWindupTime float64    `yaml:"leap_windup_time"` // seconds
	LeapTime       float64    `yaml:"leap_time"`        // seconds
}

// LootEntry is one roll on an enemy's drop table.
type LootEntry struct {
	Item   string  `yaml:"item"`
	Chance float64 `yaml:"chance"` // 0.0-1.0
}

// EntityDefinition holds the static stats of a species (or the player body).
type EntityDefinition struct {
	Name       string     `yaml:"name"`
	Type       EntityType `yaml:"type"`
	MaxHealth  float64    `yaml:"max_health"`
	Hitbox     Size       `yaml:"hitbox"`
	SiphonRate float64    `yaml:"siphon_rate"` // battery units per second while feeding

	BaseMovementSpeed float64 `yaml:"base_movement_speed"`
	WalkingSpeed      float64 `yaml:"walking_speed"`
	Acceleration      float64 `yaml:"acceleration"`
	Deceleration      float64 `yaml:"deceleration"`
	SteeringForce     float64 `yaml:"steering_force"`
	RepulsionForce    float64 `yaml:"repulsion_force"`
	RepulsionRadius   float64 `yaml:"repulsion_radius"`

	AggroRange         float64 `yaml:"aggro_range"`
	LeashRange         float64 `yaml:"leash_range"`
	CloseQuartersRange float64 `yaml:"close_quarters_range"`
	Aggression         float64 `yaml:"aggression"` // 0.0-1.0 attack roll while stalking

	WanderRestMin   float64 `yaml:"wander_rest_min"`
	WanderRestMax   float64 `yaml:"wander_rest_max"`
	WanderRadiusMin float64 `yaml:"wander_radius_min"`
	WanderRadiusMax float64 `yaml:"wander_radius_max"`

	Behaviors []BehaviorKind     `yaml:"behaviors"`
	Attacks   []AttackDefinition `yaml:"attacks"`
	Loot      []LootEntry        `yaml:"loot"`
}

// Can reports whether the species supports behavior b.
func (d *EntityDefinition) Can(b BehaviorKind) bool {
	for _, k := range d.Behaviors {
		if k == b {
			return true
		}
	}
	return false
}

func (d *EntityDefinition) validate() error {
	if d.Name == "" {
		return fmt.Errorf("entity without name")
	}
	if d.Hitbox.W <= 0 || d.Hitbox.H <= 0 {
		return fmt.Errorf("entity %s: hitbox must be positive", d.Name)
	}
	if d.WanderRestMax < d.WanderRestMin {
		return fmt.Errorf("entity %s: wander_rest_max < wander_rest_min", d.Name)
	}
	if d.LeashRange > 0 && d.LeashRange < d.AggroRange {
		return fmt.Errorf("entity %s: leash_range < aggro_range", d.Name)
	}
	for _, a := range d.Attacks {
		if a.Range <= 0 {
			return fmt.Errorf("entity %s: attack %s has no range", d.Name, a.Kind)
		}
	}
	return nil
}

type entityListFile struct {
	Entities []EntityDefinition `yaml:"entities"`
}

// EntityTable holds every species definition indexed by name.
type EntityTable struct {
	byName map[string]*EntityDefinition
	names  []string
}

// LoadEntityTable loads entity definitions from a YAML file.
func LoadEntityTable(path string) (*EntityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entities: %w", err)
	}
	var f entityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse entities: %w", err)
	}
	t := &EntityTable{byName: make(map[string]*EntityDefinition, len(f.Entities))}
	for i := range f.Entities {
		e := &f.Entities[i]
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate entity %s", e.Name)
		}
		t.byName[e.Name] = e
		t.names = append(t.names, e.Name)
	}
	return t, nil
}

// Get returns a definition by name, or nil if not found.
func (t *EntityTable) Get(name string) *EntityDefinition {
	return t.byName[name]
}

// Count returns the number of loaded definitions.
func (t *EntityTable) Count() int {
	return len(t.byName)
}
