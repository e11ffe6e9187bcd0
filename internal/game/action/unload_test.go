package action_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/rangedcombat/internal/game/action"
	"github.com/cory-johannsen/rangedcombat/internal/game/event"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// TestScenario_UnloadSimpleWeaponReturnsRound verifies a loaded round goes
// back onto the stack it came from.
func TestScenario_UnloadSimpleWeaponReturnsRound(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Reload, req("crossbow-1"))
	assert.Equal(t, 2, h.stack("bolts").Quantity)

	h.must(h.svc.Unload, req("crossbow-1"))
	assert.Equal(t, 3, h.stack("bolts").Quantity)
	assert.False(t, loading.IsLoaded(h.state().Markers, crossbow))
	require.Len(t, h.notes.posts, 2)
	assert.Equal(t, "Vex unloads Crossbow Bolt from their Crossbow", h.notes.posts[1].Text)
	require.Len(t, h.events.events, 2)
	assert.Equal(t, event.Unload, h.events.events[1].Name)
}

// TestScenario_UnloadCapacityWeaponSelectedEntry verifies the chosen
// ammunition leaves the weapon and the rest stays loaded.
func TestScenario_UnloadCapacityWeaponSelectedEntry(t *testing.T) {
	h := newHarness(t)
	h.sel.ammo = "lead-bullet"
	h.must(h.svc.Reload, req("pepperbox-1"))
	h.sel.ammo = "silver-bullet"
	h.must(h.svc.Reload, req("pepperbox-1"))

	st := h.state()
	m, ok := loading.CapacityFor(st.Markers, pepperbox)
	require.True(t, ok)
	assert.Equal(t, 2, m.LoadedChambers)
	assert.Equal(t, "Pepperbox (2/3)", m.Name)
	_, ok = st.Inventory.Stack("silver")
	require.True(t, ok)
	assert.Equal(t, 0, h.stack("silver").Quantity)

	h.must(h.svc.Unload, req("pepperbox-1"))
	require.Len(t, h.sel.entries, 3)
	assert.Len(t, h.sel.entries[2], 2)

	st = h.state()
	m, ok = loading.CapacityFor(st.Markers, pepperbox)
	require.True(t, ok)
	assert.Equal(t, 1, m.LoadedChambers)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, "lead-bullet", m.Entries[0].TemplateID)
	assert.Equal(t, "Pepperbox (1/3)", m.Name)
	assert.Equal(t, "Lead Bullet x1", m.Description)
	assert.Equal(t, 1, h.stack("silver").Quantity)
	assert.Equal(t, 4, h.stack("lead").Quantity)

	notices := h.store.Notices(actorID)
	require.NotEmpty(t, notices)
	assert.Equal(t, "Pepperbox (1/3)", notices[len(notices)-1].Text)
}

// TestUnload_CapacityConjuredEntry verifies unloading a conjured round from a
// capacity weapon removes it and its chamber without touching inventory.
func TestUnload_CapacityConjuredEntry(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Conjure, req("pepperbox-1"))
	h.sel.ammo = "lead-bullet"
	h.must(h.svc.Reload, req("pepperbox-1"))
	before := h.state().Inventory.Stacks()

	h.sel.ammo = loading.ConjuredRoundID
	h.must(h.svc.Unload, req("pepperbox-1"))

	st := h.state()
	_, ok := loading.ConjuredFor(st.Markers, pepperbox)
	assert.False(t, ok)
	_, ok = loading.ChamberFor(st.Markers, pepperbox)
	assert.False(t, ok)
	assert.Equal(t, 1, loading.RoundsLoaded(st.Markers, pepperbox))
	assert.Equal(t, before, st.Inventory.Stacks())
	assert.Equal(t, "Vex unloads Conjured Round from their Pepperbox", h.notes.posts[len(h.notes.posts)-1].Text)
}

// TestUnload_ConjuredRoundGoesFirst verifies a non-capacity weapon gives up
// its conjured round before anything else.
func TestUnload_ConjuredRoundGoesFirst(t *testing.T) {
	h := newHarness(t)
	stacks := len(h.state().Inventory.Stacks())
	h.must(h.svc.Conjure, req("crossbow-1"))
	h.must(h.svc.Unload, req("crossbow-1"))
	assert.Equal(t, 0, h.state().Markers.Len())
	assert.Equal(t, 3, h.stack("bolts").Quantity)
	assert.Len(t, h.state().Inventory.Stacks(), stacks)
}

// TestScenario_UnloadFreshMagazine verifies an unfired magazine goes back
// onto its source stack.
func TestScenario_UnloadFreshMagazine(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Reload, req("repeater-1"))
	mags := h.stack("mags")
	assert.Equal(t, 1, mags.Quantity)
	m, ok := loading.MagazineFor(h.state().Markers, repeater)
	require.True(t, ok)
	assert.Equal(t, 6, m.Magazine.Remaining)

	h.must(h.svc.Unload, req("repeater-1"))
	assert.Equal(t, 2, h.stack("mags").Quantity)
	assert.Equal(t, 0, h.state().Markers.Len())
	assert.Equal(t, "Vex unloads Bolt Magazine from their Repeating Crossbow", h.notes.posts[1].Text)
}

// TestScenario_UnloadSpentMagazine verifies a partly fired magazine becomes a
// new stack holding its remaining charges.
func TestScenario_UnloadSpentMagazine(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Reload, req("repeater-1"))
	h.must(h.svc.Fire, req("repeater-1"))
	h.must(h.svc.Unload, req("repeater-1"))

	st := h.state()
	assert.Equal(t, 0, st.Markers.Len())
	stacks := st.Inventory.Stacks()
	require.Len(t, stacks, 5)
	created := stacks[4]
	assert.Equal(t, "bolt-magazine", created.TemplateID)
	assert.Equal(t, 1, created.Quantity)
	assert.Equal(t, 5, created.Uses.Value)
	assert.Equal(t, 11, st.Inventory.TotalCharges("bolt-magazine"))
}

func TestUnload_NothingLoaded(t *testing.T) {
	h := newHarness(t)
	err := h.svc.Unload(context.Background(), req(""))
	h.requireWarning(err, "You have no loaded weapons", 0)

	err = h.svc.Unload(context.Background(), req("crossbow-1"))
	h.requireWarning(err, "Crossbow cannot be used for this action", 0)
}

func TestUnload_CancelledAmmunitionSelection(t *testing.T) {
	h := newHarness(t)
	h.sel.ammo = "lead-bullet"
	h.must(h.svc.Reload, req("pepperbox-1"))
	h.sel.ammo = "silver-bullet"
	h.must(h.svc.Reload, req("pepperbox-1"))
	h.sel.cancel = true
	err := h.svc.Unload(context.Background(), req("pepperbox-1"))
	assert.ErrorIs(t, err, action.ErrCancelled)
	assert.Equal(t, 2, loading.RoundsLoaded(h.state().Markers, pepperbox))
}

// TestUnload_SimpleSystem verifies rounds are removed without returning
// anything to inventory.
func TestUnload_SimpleSystem(t *testing.T) {
	h := newHarness(t, simpleSystem)
	h.must(h.svc.Reload, req("pepperbox-1"))
	h.must(h.svc.Reload, req("pepperbox-1"))
	before := h.state().Inventory.Stacks()

	h.must(h.svc.Unload, req("pepperbox-1"))
	st := h.state()
	m, ok := loading.CapacityFor(st.Markers, pepperbox)
	require.True(t, ok)
	assert.Equal(t, 1, m.LoadedChambers)
	assert.Empty(t, m.Entries)
	assert.Equal(t, before, st.Inventory.Stacks())
	assert.Equal(t, "Vex unloads their Pepperbox", h.notes.posts[len(h.notes.posts)-1].Text)

	h.must(h.svc.Unload, req("pepperbox-1"))
	assert.False(t, loading.IsLoaded(h.state().Markers, pepperbox))
}
