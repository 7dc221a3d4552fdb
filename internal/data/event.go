package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EndEvent as a next page closes the menu event.
const EndEvent = -1

// MenuOption is one votable choice on a menu event page.
type MenuOption struct {
	Text         string  `yaml:"text"`
	NextPage     int     `yaml:"next_page"`
	BatteryDelta float64 `yaml:"battery_delta"`
	HealthDelta  float64 `yaml:"health_delta"`
	Script       string  `yaml:"script"` // optional Lua function name
}

// MenuPage is one screen of a menu event.
type MenuPage struct {
	Text    string       `yaml:"text"`
	Options []MenuOption `yaml:"options"`
}

// MenuEvent is a narrative choice tree shown on region arrival.
type MenuEvent struct {
	ID    uint16     `yaml:"id"`
	Name  string     `yaml:"name"`
	Pages []MenuPage `yaml:"pages"`
}

type menuEventFile struct {
	Events []MenuEvent `yaml:"events"`
}

// MenuEventTable holds menu events indexed by ID.
type MenuEventTable struct {
	events map[uint16]*MenuEvent
}

// LoadMenuEventTable loads menu events from a YAML file.
func LoadMenuEventTable(path string) (*MenuEventTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu_events: %w", err)
	}
	var f menuEventFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse menu_events: %w", err)
	}
	t := &MenuEventTable{events: make(map[uint16]*MenuEvent, len(f.Events))}
	for i := range f.Events {
		ev := &f.Events[i]
		if ev.ID == 0 {
			return nil, fmt.Errorf("menu event %s: id 0 is reserved", ev.Name)
		}
		for p, page := range ev.Pages {
			for _, opt := range page.Options {
				if opt.NextPage != EndEvent && (opt.NextPage < 0 || opt.NextPage >= len(ev.Pages)) {
					return nil, fmt.Errorf("menu event %s page %d: next_page %d out of range", ev.Name, p, opt.NextPage)
				}
			}
		}
		t.events[ev.ID] = ev
	}
	return t, nil
}

// Get returns a menu event by ID, or nil if not found.
func (t *MenuEventTable) Get(id uint16) *MenuEvent {
	return t.events[id]
}

func (t *MenuEventTable) Count() int {
	return len(t.events)
}
