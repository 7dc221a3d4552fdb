package data

import (
	"fmt"
	"os"

	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"gopkg.in/yaml.v3"
)

// RegionRole tells zone generation where a region type may be placed.
type RegionRole string

const (
	RoleTown       RegionRole = "town"
	RoleWilderness RegionRole = "wilderness"
	RoleLeyline    RegionRole = "leyline"
	RoleEvent      RegionRole = "event"
)

// RectDef is a rectangle as written in YAML.
type RectDef struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

func (r RectDef) Rect() geom.Rect { return geom.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H} }

// PointDef is a point as written in YAML.
type PointDef struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (p PointDef) Vec() geom.Vec2 { return geom.V(p.X, p.Y) }

// ConvoyDefinition places the convoy. Interior is relative to the convoy
// center.
type ConvoyDefinition struct {
	Position    PointDef `yaml:"position"`
	Orientation float64  `yaml:"orientation"` // degrees
	Size        Size     `yaml:"size"`
	Interior    RectDef  `yaml:"interior"`
}

// PackMember is one entry of an enemy pack.
type PackMember struct {
	Entity string `yaml:"entity"`
	Count  int    `yaml:"count"`
}

// PackDefinition is a group of enemies spawned together.
type PackDefinition struct {
	Center  PointDef     `yaml:"center"`
	Spread  float64      `yaml:"spread"`
	Members []PackMember `yaml:"members"`
}

// RegionDefinition is the static layout of one region type.
type RegionDefinition struct {
	Type         uint8            `yaml:"type"`
	Name         string           `yaml:"name"`
	Role         RegionRole       `yaml:"role"`
	Leyline      bool             `yaml:"leyline"`
	Size         Size             `yaml:"size"`
	Convoy       ConvoyDefinition `yaml:"convoy"`
	PlayerSpawn  PointDef         `yaml:"player_spawn"` // offset from the convoy center
	Obstacles    []RectDef        `yaml:"obstacles"`
	Packs        []PackDefinition `yaml:"packs"`
	WaveInterval float64          `yaml:"wave_interval"` // seconds, 0 = no waves
	WavePacks    []PackDefinition `yaml:"wave_packs"`
	MenuEvent    uint16           `yaml:"menu_event"` // 0 = none
}

// ObstacleRects converts the obstacle list to geometry.
func (d *RegionDefinition) ObstacleRects() []geom.Rect {
	out := make([]geom.Rect, len(d.Obstacles))
	for i, o := range d.Obstacles {
		out[i] = o.Rect()
	}
	return out
}

type regionListFile struct {
	Regions []RegionDefinition `yaml:"regions"`
}

// RegionTable holds region definitions indexed by type.
type RegionTable struct {
	byType map[uint8]*RegionDefinition
	order  []uint8
}

// LoadRegionTable loads region definitions from a YAML file and checks
// their enemy references against entities.
func LoadRegionTable(path string, entities *EntityTable) (*RegionTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	var f regionListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	t := &RegionTable{byType: make(map[uint8]*RegionDefinition, len(f.Regions))}
	for i := range f.Regions {
		r := &f.Regions[i]
		if _, dup := t.byType[r.Type]; dup {
			return nil, fmt.Errorf("duplicate region type %d", r.Type)
		}
		switch r.Role {
		case RoleTown, RoleWilderness, RoleLeyline, RoleEvent:
		default:
			return nil, fmt.Errorf("region %s: unknown role %q", r.Name, r.Role)
		}
		for _, packs := range [][]PackDefinition{r.Packs, r.WavePacks} {
			for _, p := range packs {
				for _, m := range p.Members {
					if entities != nil && entities.Get(m.Entity) == nil {
						return nil, fmt.Errorf("region %s: unknown entity %q", r.Name, m.Entity)
					}
				}
			}
		}
		t.byType[r.Type] = r
		t.order = append(t.order, r.Type)
	}
	return t, nil
}

// Get returns a region definition by type, or nil if not found.
func (t *RegionTable) Get(typ uint8) *RegionDefinition {
	return t.byType[typ]
}

// WithRole returns every definition with the given role in file order.
func (t *RegionTable) WithRole(role RegionRole) []*RegionDefinition {
	var out []*RegionDefinition
	for _, typ := range t.order {
		if d := t.byType[typ]; d.Role == role {
			out = append(out, d)
		}
	}
	return out
}

func (t *RegionTable) Count() int {
	return len(t.byType)
}
