package data

import (
	"fmt"
	"path/filepath"
)

// PlayerEntity is the entity definition name describing the player body.
const PlayerEntity = "player"

// Definitions bundles every static table. Loaded once at startup and only
// read afterwards.
type Definitions struct {
	Entities   *EntityTable
	Weapons    *WeaponTable
	Items      *ItemTable
	Regions    *RegionTable
	MenuEvents *MenuEventTable
}

// LoadDefinitions loads every table from dir.
func LoadDefinitions(dir string) (*Definitions, error) {
	entities, err := LoadEntityTable(filepath.Join(dir, "entities.yaml"))
	if err != nil {
		return nil, err
	}
	if entities.Get(PlayerEntity) == nil {
		return nil, fmt.Errorf("entities: missing %q definition", PlayerEntity)
	}
	weapons, err := LoadWeaponTable(filepath.Join(dir, "weapons.yaml"))
	if err != nil {
		return nil, err
	}
	items, err := LoadItemTable(filepath.Join(dir, "items.yaml"))
	if err != nil {
		return nil, err
	}
	regions, err := LoadRegionTable(filepath.Join(dir, "regions.yaml"), entities)
	if err != nil {
		return nil, err
	}
	if len(regions.WithRole(RoleTown)) == 0 {
		return nil, fmt.Errorf("regions: at least one town is required")
	}
	events, err := LoadMenuEventTable(filepath.Join(dir, "menu_events.yaml"))
	if err != nil {
		return nil, err
	}
	for _, typ := range regions.order {
		r := regions.byType[typ]
		if r.MenuEvent != 0 && events.Get(r.MenuEvent) == nil {
			return nil, fmt.Errorf("region %s: unknown menu event %d", r.Name, r.MenuEvent)
		}
	}
	for _, e := range entities.byName {
		for _, l := range e.Loot {
			if items.ByName(l.Item) == nil {
				return nil, fmt.Errorf("entity %s: unknown loot item %q", e.Name, l.Item)
			}
		}
	}
	return &Definitions{
		Entities:   entities,
		Weapons:    weapons,
		Items:      items,
		Regions:    regions,
		MenuEvents: events,
	}, nil
}
