package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponKind separates swing weapons from projectile weapons.
type WeaponKind string

const (
	WeaponMelee  WeaponKind = "melee"
	WeaponRanged WeaponKind = "ranged"
)

// Weapon holds the static stats of a player weapon.
type Weapon struct {
	ID              uint8      `yaml:"id"`
	Name            string     `yaml:"name"`
	Kind            WeaponKind `yaml:"kind"`
	Damage          float64    `yaml:"damage"`
	Range           float64    `yaml:"range"`
	Arc             float64    `yaml:"arc"`         // degrees, melee only
	AttackTime      float64    `yaml:"attack_time"` // seconds a swing stays active
	Cooldown        float64    `yaml:"cooldown"`    // seconds between attacks
	ProjectileSpeed float64    `yaml:"projectile_speed"`
}

type weaponListFile struct {
	Weapons []Weapon `yaml:"weapons"`
}

// WeaponTable holds weapons indexed by wire ID.
type WeaponTable struct {
	weapons map[uint8]*Weapon
}

// LoadWeaponTable loads weapons from a YAML file.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapons: %w", err)
	}
	var f weaponListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weapons: %w", err)
	}
	t := &WeaponTable{weapons: make(map[uint8]*Weapon, len(f.Weapons))}
	for i := range f.Weapons {
		w := &f.Weapons[i]
		if w.Kind != WeaponMelee && w.Kind != WeaponRanged {
			return nil, fmt.Errorf("weapon %s: unknown kind %q", w.Name, w.Kind)
		}
		if w.Kind == WeaponRanged && w.ProjectileSpeed <= 0 {
			return nil, fmt.Errorf("weapon %s: ranged weapon needs projectile_speed", w.Name)
		}
		t.weapons[w.ID] = w
	}
	return t, nil
}

// Get returns a weapon by ID, or nil if not found.
func (t *WeaponTable) Get(id uint8) *Weapon {
	return t.weapons[id]
}

func (t *WeaponTable) Count() int {
	return len(t.weapons)
}
