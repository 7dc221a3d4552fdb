package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemNone is the empty slot.
const ItemNone uint8 = 0

// Item is a consumable carried by a player or kept in the convoy stash.
type Item struct {
	ID      uint8   `yaml:"id"`
	Name    string  `yaml:"name"`
	Heal    float64 `yaml:"heal"`    // health restored on use
	Battery float64 `yaml:"battery"` // convoy battery restored on use
}

type itemListFile struct {
	Items []Item `yaml:"items"`
}

// ItemTable holds items indexed by ID and by name.
type ItemTable struct {
	byID   map[uint8]*Item
	byName map[string]*Item
}

// LoadItemTable loads items from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	t := &ItemTable{
		byID:   make(map[uint8]*Item, len(f.Items)),
		byName: make(map[string]*Item, len(f.Items)),
	}
	for i := range f.Items {
		it := &f.Items[i]
		if it.ID == ItemNone {
			return nil, fmt.Errorf("item %s: id 0 is reserved for the empty slot", it.Name)
		}
		t.byID[it.ID] = it
		t.byName[it.Name] = it
	}
	return t, nil
}

// Get returns an item by ID, or nil if not found.
func (t *ItemTable) Get(id uint8) *Item { return t.byID[id] }

// ByName returns an item by name, or nil if not found.
func (t *ItemTable) ByName(name string) *Item { return t.byName[name] }

func (t *ItemTable) Count() int { return len(t.byID) }
