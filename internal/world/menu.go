package world

import (
	"errors"
	"fmt"

	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

var (
	ErrBadOption   = errors.New("menu option out of range")
	ErrUnknownMenu = errors.New("unknown menu event")
)

// MenuState is the open menu event and its current page.
type MenuState struct {
	Event *data.MenuEvent
	Page  int
}

// Message is the page announcement for clients.
func (m *MenuState) Message() packet.MenuEventPage {
	return packet.MenuEventPage{Event: m.Event.ID, Page: uint8(m.Page)}
}

// MenuContext is what a menu script sees of the game.
type MenuContext struct {
	Event   string
	Page    int
	Option  int
	Battery float64
	Players int
}

// MenuEffect is what an option does beyond its YAML deltas.
type MenuEffect struct {
	BatteryDelta float64
	HealthDelta  float64
	Item         string // item name to add to the stash, "" for none
}

// MenuScripter runs named menu-option scripts.
type MenuScripter interface {
	MenuOption(script string, ctx MenuContext) (MenuEffect, error)
}

// MenuResult reports what applying an option changed.
type MenuResult struct {
	Closed       bool
	BatteryDelta float64
	HealthDelta  float64
	StashChanged bool
	ScriptErr    error
}

// OpenMenu opens menu event id and pauses the game on it.
func (s *State) OpenMenu(id uint16) error {
	ev, err := s.menuEvent(id)
	if err != nil {
		return err
	}
	s.openMenu(ev)
	return nil
}

func (s *State) menuEvent(id uint16) (*data.MenuEvent, error) {
	ev := s.Defs.MenuEvents.Get(id)
	if ev == nil || len(ev.Pages) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMenu, id)
	}
	return ev, nil
}

func (s *State) openMenu(ev *data.MenuEvent) {
	s.Menu = &MenuState{Event: ev}
	s.Gui = packet.GuiMenuEvent
	s.ResetVotes()
}

// ApplyMenuChoice applies option of the current page and advances or
// closes the event. A failing script still applies the YAML deltas.
func (s *State) ApplyMenuChoice(option uint16) (MenuResult, error) {
	var res MenuResult
	if s.Menu == nil {
		return res, ErrWrongPhase
	}
	page := s.Menu.Event.Pages[s.Menu.Page]
	if int(option) >= len(page.Options) {
		return res, fmt.Errorf("%w: %d of %d", ErrBadOption, option, len(page.Options))
	}
	opt := page.Options[option]
	res.BatteryDelta = opt.BatteryDelta
	res.HealthDelta = opt.HealthDelta

	if opt.Script != "" && s.Scripts != nil {
		eff, err := s.Scripts.MenuOption(opt.Script, MenuContext{
			Event:   s.Menu.Event.Name,
			Page:    s.Menu.Page,
			Option:  int(option),
			Battery: s.Region.Battery,
			Players: len(s.Participants()),
		})
		if err != nil {
			res.ScriptErr = err
		} else {
			res.BatteryDelta += eff.BatteryDelta
			res.HealthDelta += eff.HealthDelta
			if it := s.Defs.Items.ByName(eff.Item); it != nil {
				res.StashChanged = s.AddToStash(it.ID)
			}
		}
	}

	if res.BatteryDelta != 0 {
		s.Region.ChargeBattery(res.BatteryDelta)
	}
	if res.HealthDelta != 0 {
		for _, p := range s.order {
			if p.Alive() {
				p.SetHealth(p.Health + res.HealthDelta)
			}
		}
	}

	s.ResetVotes()
	if opt.NextPage == data.EndEvent {
		s.Menu = nil
		s.Gui = packet.GuiNone
		res.Closed = true
		return res, nil
	}
	s.Menu.Page = opt.NextPage
	return res, nil
}
