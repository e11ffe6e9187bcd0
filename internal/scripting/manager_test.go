package scripting_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return scripting.NewManager(zap.New(core)), logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func messages(logs *observer.ObservedLogs, level zapcore.Level) []string {
	var out []string
	for _, e := range logs.FilterLevelExact(level).All() {
		out = append(out, e.Message)
	}
	return out
}

func scriptMessages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.FilterField(zap.String("source", "lua")).All() {
		out = append(out, e.Message)
	}
	return out
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook(context.Background(), "test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `not_a_function = 5`)
	require.NoError(t, mgr.Load(dir, 0))
	for _, hook := range []string{"nonexistent_hook", "not_a_function"} {
		ret, err := mgr.CallHook(context.Background(), hook)
		require.NoError(t, err)
		assert.Equal(t, lua.LNil, ret)
	}
}

func TestManager_CallHook_NotLoaded_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret, err := mgr.CallHook(context.Background(), "some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook(context.Background(), "bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.Contains(t, messages(logs, zapcore.WarnLevel), "Lua runtime error")
}

// TestManager_CallHook_BudgetIsPerCall verifies a hook that exhausts its
// instruction budget does not starve later calls.
func TestManager_CallHook_BudgetIsPerCall(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin() while true do end end
		function ok() return 1 end
	`)
	require.NoError(t, mgr.Load(dir, 1000))

	ret, err := mgr.CallHook(context.Background(), "spin")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	assert.NotEmpty(t, messages(logs, zapcore.WarnLevel))

	ret, err = mgr.CallHook(context.Background(), "ok")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret)
}

func TestManager_Load_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(t.TempDir(), 0))
	ret, err := mgr.CallHook(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_Load_InvalidLua_KeepsPreviousScripts(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, "good.lua", `function ping() return "pong" end`), 0))
	err := mgr.Load(writeTempLua(t, "bad.lua", `this is not valid lua @@@@`), 0)
	assert.Error(t, err)

	ret, err := mgr.CallHook(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("pong"), ret)
}

func TestManager_Load_MissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load(filepath.Join(t.TempDir(), "missing"), 0))
}

func TestManager_Load_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook(context.Background(), "get_val")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(10), ret)
}

// TestManager_Observe_CallsActionHook verifies a published action reaches the
// matching on_<action> hook with the actor and weapon.
func TestManager_Observe_CallsActionHook(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function on_fire(actor_id, weapon_id)
			ranged.log(actor_id .. " fired " .. weapon_id)
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))

	bus := event.NewBus(zap.NewNop())
	bus.Subscribe("scripting", mgr.Observe)
	bus.Publish(context.Background(), event.Action{Name: event.Fire, ActorID: "actor-1", WeaponID: "crossbow-1", At: time.Now()})
	bus.Publish(context.Background(), event.Action{Name: event.Reload, ActorID: "actor-1", WeaponID: "crossbow-1", At: time.Now()})

	assert.Equal(t, []string{"actor-1 fired crossbow-1"}, scriptMessages(logs))
}

func TestManager_RangedModule(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "module.lua", `
		function count_actions() return #ranged.actions end
		function first_action() return ranged.actions[1] end
		function shout(msg) ranged.warn(msg) end
	`)
	require.NoError(t, mgr.Load(dir, 0))

	ret, err := mgr.CallHook(context.Background(), "count_actions")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(5), ret)
	ret, err = mgr.CallHook(context.Background(), "first_action")
	require.NoError(t, err)
	assert.Equal(t, lua.LString(event.Conjure), ret)

	_, err = mgr.CallHook(context.Background(), "shout", lua.LString("careful"))
	require.NoError(t, err)
	assert.Contains(t, messages(logs, zapcore.WarnLevel), "careful")
}

func TestProperty_CallHookUnknownNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(t.TempDir(), 0))
	rapid.Check(t, func(rt *rapid.T) {
		hook := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "hook")
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		for i := 0; i < count; i++ {
			mgr.CallHook(context.Background(), hook) //nolint:errcheck
		}
	})
}

func TestManager_CallHookConcurrent_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function concurrent_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook(context.Background(), "concurrent_hook", lua.LNumber(1), lua.LNumber(2))
				assert.NoError(t, err)
				assert.Equal(t, lua.LNumber(3), ret)
			}
		}()
	}
	wg.Wait()
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() { scripting.NewManager(nil) })
}

func TestManager_Close_ReleasesState(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "init.lua", `function get_x() return 1 end`)
	require.NoError(t, mgr.Load(dir, 0))
	mgr.Close()
	ret, err := mgr.CallHook(context.Background(), "get_x")
	assert.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}
