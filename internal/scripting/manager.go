package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
)

// HookPrefix prefixes the action name to form the Lua hook observing it,
// e.g. on_conjure.
const HookPrefix = "on_"

// Manager owns one sandboxed LState and dispatches action hooks to it.
//
// Manager is safe for concurrent use; hook calls are serialized because an
// LState is single-threaded.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager; hooks are no-ops until Load.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting: NewManager: logger must not be nil")
	}
	return &Manager{logger: logger.Named("scripting")}
}

// Load creates a sandboxed VM, registers the ranged.* module, then executes
// every *.lua file in scriptDir in lexicographic order. A previously loaded
// VM is replaced only when every file loads.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns error on a read or Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.instLimit = instLimit
	m.logger.Info("scripts loaded", zap.String("dir", scriptDir), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named Lua global function with a fresh instruction
// budget. Returns (LNil, nil) if no scripts are loaded or the hook is not
// defined. Lua runtime errors are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		m.logger.Debug("no scripts loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}
	L := m.state

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	cancel := limitInstructions(ctx, L, m.instLimit)
	defer cancel()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Observe calls the on_<action> hook with the actor and weapon IDs. It is
// an event.Handler.
func (m *Manager) Observe(ctx context.Context, a event.Action) error {
	_, err := m.CallHook(ctx, HookPrefix+a.Name, lua.LString(a.ActorID), lua.LString(a.WeaponID))
	return err
}

// Close releases the loaded VM. Later hook calls are no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
