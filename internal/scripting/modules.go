package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
)

// RegisterModules registers the ranged.* Lua table into L:
//
//	ranged.log(msg)     logs msg at Info
//	ranged.warn(msg)    logs msg at Warn
//	ranged.actions      array of action names hooks are called for
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: ranged global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	ranged := L.NewTable()
	L.SetField(ranged, "log", L.NewFunction(m.luaLog(zap.InfoLevel)))
	L.SetField(ranged, "warn", L.NewFunction(m.luaLog(zap.WarnLevel)))

	actions := L.NewTable()
	for _, name := range []string{event.Conjure, event.Unload, event.Consolidate, event.Reload, event.Fire} {
		actions.Append(lua.LString(name))
	}
	L.SetField(ranged, "actions", actions)
	L.SetGlobal("ranged", ranged)
}

func (m *Manager) luaLog(level zapcore.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		msg := L.CheckString(1)
		if ce := m.logger.Check(level, msg); ce != nil {
			ce.Write(zap.String("source", "lua"))
		}
		return 0
	}
}
