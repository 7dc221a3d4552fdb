package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for game formulas and menu-event
// outcomes. Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	combatPath := filepath.Join(scriptsDir, "combat")
	if err := e.loadDir(combatPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load combat scripts: %w", err)
	}
	menuPath := filepath.Join(scriptsDir, "menu")
	if err := e.loadDir(menuPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load menu scripts: %w", err)
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a global Lua function exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// ── Combat ──────────────────────────────────────────────────────────

// PlayerDamage calls calc_player_damage. Falls back to the weapon's listed
// damage when the function is missing or fails.
func (e *Engine) PlayerDamage(w *data.Weapon, target *data.EntityDefinition) float64 {
	t := e.vm.NewTable()

	wt := e.vm.NewTable()
	wt.RawSetString("id", lua.LNumber(w.ID))
	wt.RawSetString("name", lua.LString(w.Name))
	wt.RawSetString("kind", lua.LString(w.Kind))
	wt.RawSetString("damage", lua.LNumber(w.Damage))
	wt.RawSetString("range", lua.LNumber(w.Range))
	t.RawSetString("weapon", wt)

	if target != nil {
		tgt := e.vm.NewTable()
		tgt.RawSetString("name", lua.LString(target.Name))
		tgt.RawSetString("type", lua.LNumber(target.Type))
		tgt.RawSetString("max_health", lua.LNumber(target.MaxHealth))
		t.RawSetString("target", tgt)
	}

	dmg, ok := e.callNumber("calc_player_damage", t)
	if !ok || dmg < 0 {
		return w.Damage
	}
	return dmg
}

// EnemyDamage calls calc_enemy_damage. Falls back to the attack's listed
// damage.
func (e *Engine) EnemyDamage(a *data.AttackDefinition, attacker *data.EntityDefinition, health float64) float64 {
	t := e.vm.NewTable()

	at := e.vm.NewTable()
	at.RawSetString("type", lua.LString(a.Kind))
	at.RawSetString("damage", lua.LNumber(a.Damage))
	at.RawSetString("range", lua.LNumber(a.Range))
	t.RawSetString("attack", at)

	atk := e.vm.NewTable()
	atk.RawSetString("name", lua.LString(attacker.Name))
	atk.RawSetString("type", lua.LNumber(attacker.Type))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("health", lua.LNumber(health))
	t.RawSetString("target", tgt)

	dmg, ok := e.callNumber("calc_enemy_damage", t)
	if !ok || dmg < 0 {
		return a.Damage
	}
	return dmg
}

// callNumber calls a one-argument Lua function returning a number.
func (e *Engine) callNumber(name string, arg lua.LValue) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Debug("lua function not found", zap.String("name", name))
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return 0, false
	}
	return float64(n), true
}

// ── Menu events ─────────────────────────────────────────────────────

// MenuOption runs the menu script named script. The function receives a
// context table and returns a table with optional battery_delta,
// health_delta and item fields.
func (e *Engine) MenuOption(script string, ctx world.MenuContext) (world.MenuEffect, error) {
	fn := e.vm.GetGlobal(script)
	if fn == lua.LNil {
		return world.MenuEffect{}, fmt.Errorf("lua function %s not found", script)
	}

	t := e.vm.NewTable()
	t.RawSetString("event", lua.LString(ctx.Event))
	t.RawSetString("page", lua.LNumber(ctx.Page))
	t.RawSetString("option", lua.LNumber(ctx.Option))
	t.RawSetString("battery", lua.LNumber(ctx.Battery))
	t.RawSetString("players", lua.LNumber(ctx.Players))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return world.MenuEffect{}, fmt.Errorf("lua %s: %w", script, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	if result == lua.LNil {
		return world.MenuEffect{}, nil
	}
	rt, ok := result.(*lua.LTable)
	if !ok {
		return world.MenuEffect{}, fmt.Errorf("lua %s returned %s, want table", script, result.Type())
	}
	return world.MenuEffect{
		BatteryDelta: lNum(rt, "battery_delta"),
		HealthDelta:  lNum(rt, "health_delta"),
		Item:         lStr(rt, "item"),
	}, nil
}

// lNum reads a number field from a Lua table, 0 when absent.
func lNum(t *lua.LTable, key string) float64 {
	return float64(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
