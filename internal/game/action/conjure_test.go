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

// TestScenario_ConjureOutOfCombat verifies a conjured round lasting one round
// is created, announced and broadcast once.
func TestScenario_ConjureOutOfCombat(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Conjure, req("crossbow-1"))

	st := h.state()
	c, ok := loading.ConjuredFor(st.Markers, crossbow)
	require.True(t, ok)
	assert.Equal(t, 1, c.DurationRounds)
	assert.Equal(t, "Conjured Round", c.Name)
	assert.Equal(t, "conjure.webp", c.Image)
	assert.True(t, loading.IsLoaded(st.Markers, crossbow))

	require.Len(t, h.notes.posts, 1)
	assert.Equal(t, "Vex conjures a round into their Crossbow", h.notes.posts[0].Text)
	assert.Equal(t, []string{"magical", "manipulate"}, h.notes.posts[0].Traits)
	require.Len(t, h.events.events, 1)
	assert.Equal(t, event.Conjure, h.events.events[0].Name)
	assert.Equal(t, "crossbow-1", h.events.events[0].WeaponID)
	assert.False(t, h.events.events[0].At.IsZero())
}

func TestConjure_InCombatKeepsTemplateDuration(t *testing.T) {
	h := newHarness(t)
	r := req("crossbow-1")
	r.InCombat = true
	h.must(h.svc.Conjure, r)
	c, ok := loading.ConjuredFor(h.state().Markers, crossbow)
	require.True(t, ok)
	assert.Equal(t, 0, c.DurationRounds)
}

// TestConjure_ChambersCapacityWeapon verifies the conjured round is chambered
// next in a capacity weapon.
func TestConjure_ChambersCapacityWeapon(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Conjure, req("pepperbox-1"))
	st := h.state()
	ch, ok := loading.ChamberFor(st.Markers, pepperbox)
	require.True(t, ok)
	assert.True(t, ch.Ammunition.IsConjured())
	assert.Equal(t, 1, loading.RoundsLoaded(st.Markers, pepperbox))
	assert.False(t, loading.IsFullyLoaded(st.Markers, pepperbox))
}

func TestConjure_RequiresFeature(t *testing.T) {
	h := newHarness(t, withoutFeature)
	err := h.svc.Conjure(context.Background(), req("crossbow-1"))
	h.requireWarning(err, "Vex does not have the Conjure Bullet action", 0)
	assert.Equal(t, 0, h.state().Markers.Len())
}

func TestConjure_RejectsSecondRound(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Conjure, req("pepperbox-1"))
	err := h.svc.Conjure(context.Background(), req("pepperbox-1"))
	h.requireWarning(err, "Pepperbox already has a conjured round", 1)
}

func TestConjure_RejectsLoadedWeapons(t *testing.T) {
	h := newHarness(t)
	h.must(h.svc.Reload, req("crossbow-1"))
	err := h.svc.Conjure(context.Background(), req("crossbow-1"))
	h.requireWarning(err, "Crossbow is already loaded", 1)

	h.sel.ammo = "lead-bullet"
	for i := 0; i < 3; i++ {
		h.must(h.svc.Reload, req("pepperbox-1"))
	}
	err = h.svc.Conjure(context.Background(), req("pepperbox-1"))
	h.requireWarning(err, "Pepperbox is already fully loaded", 4)
}

func TestConjure_RejectsRepeatingWeapon(t *testing.T) {
	h := newHarness(t)
	err := h.svc.Conjure(context.Background(), req("repeater-1"))
	h.requireWarning(err, "Repeating Crossbow cannot be used for this action", 0)
}

func TestConjure_NoEligibleWeapons(t *testing.T) {
	h := newHarness(t, onlyWeapons(repeater))
	err := h.svc.Conjure(context.Background(), req(""))
	h.requireWarning(err, "You have no reloadable weapons", 0)
}

// TestConjure_OffersUnloadedWeaponsFirst verifies the selector sees weapons
// that are not fully loaded ahead of loaded ones.
func TestConjure_OffersUnloadedWeaponsFirst(t *testing.T) {
	h := newHarness(t, onlyWeapons(crossbow, pepperbox))
	h.must(h.svc.Reload, req("crossbow-1"))
	h.sel.weapon = "pepperbox-1"
	h.must(h.svc.Conjure, req(""))

	require.Len(t, h.sel.weapons, 1)
	assert.Equal(t, []string{"pepperbox-1", "crossbow-1"}, h.sel.weapons[0])
	_, ok := loading.ConjuredFor(h.state().Markers, pepperbox)
	assert.True(t, ok)
}

func TestConjure_CancelledSelection(t *testing.T) {
	h := newHarness(t)
	h.sel.cancel = true
	err := h.svc.Conjure(context.Background(), req(""))
	assert.ErrorIs(t, err, action.ErrCancelled)
	assert.Equal(t, 0, h.state().Markers.Len())
	assert.Empty(t, h.events.events)
}
