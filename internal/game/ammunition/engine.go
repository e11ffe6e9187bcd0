// Package ammunition computes how loading, firing and unloading change a
// weapon's markers and its owner's inventory, and how partly spent ammunition
// stacks are consolidated. Every function stages operations in a ledger and
// never mutates the state it reads.
package ammunition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/ledger"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

var (
	// ErrNotLoaded is returned when a weapon holds no marker to act on.
	ErrNotLoaded = errors.New("ammunition: weapon is not loaded")
	// ErrEntryNotLoaded is returned when the named ammunition is not in the weapon.
	ErrEntryNotLoaded = errors.New("ammunition: ammunition is not loaded in weapon")
	// ErrMixedTracking is returned when tracked and untracked rounds would share
	// one capacity marker.
	ErrMixedTracking = errors.New("ammunition: cannot mix tracked and untracked rounds")
)

// StackFinder looks up an actor's unstowed ammunition stacks.
type StackFinder interface {
	FindUnstowed(id string) (inventory.Stack, bool)
	FindUnstowedByTemplate(templateID string) (inventory.Stack, bool)
}

// Engine computes ammunition transfers for one actor against a snapshot of
// that actor's markers and inventory.
type Engine struct {
	actorID   string
	markers   loading.Lookup
	stacks    StackFinder
	templates inventory.TemplateSource
}

// NewEngine returns an Engine reading actorID's state.
//
// Precondition: markers, stacks and templates are non-nil.
func NewEngine(actorID string, markers loading.Lookup, stacks StackFinder, templates inventory.TemplateSource) *Engine {
	return &Engine{actorID: actorID, markers: markers, stacks: stacks, templates: templates}
}

// LoadedName formats the display name of a partly loaded weapon.
func LoadedName(name string, loaded, capacity int) string {
	return fmt.Sprintf("%s (%d/%d)", name, loaded, capacity)
}

// LoadedDescription appends one "<name> x<quantity>" line per entry to the
// original description.
func LoadedDescription(original string, entries []loading.AmmunitionEntry) string {
	lines := make([]string, 0, len(entries)+1)
	if original != "" {
		lines = append(lines, original)
	}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s x%d", e.Name, e.Quantity))
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) find(kind loading.Kind, weaponID string) (loading.Marker, bool) {
	return e.markers.Find(e.actorID, kind, weaponID)
}

// LoadRound stages loading one round into w. A round with an empty TemplateID
// is untracked and only counts a chamber.
//
// Capacity weapons gain one chamber and the round is merged into the entry
// from the same source, or appended. Other weapons get their simple marker set
// or replaced.
//
// Precondition: w is not fully loaded; the engine does not guard against overfill.
// Postcondition: exactly one create or update is staged.
func (e *Engine) LoadRound(l *ledger.Ledger, w inventory.Weapon, round loading.AmmunitionEntry) error {
	tracked := round.TemplateID != ""
	round.Quantity = 1
	if !w.IsCapacity() {
		m := &loading.SimpleLoad{ID: uuid.New().String(), WeaponID: w.ID, Name: w.Name}
		if tracked {
			m.Ammunition = &round
		}
		if cur, ok := loading.SimpleFor(e.markers, w); ok {
			m.ID = cur.ID
			l.Update(m)
			return nil
		}
		l.Create(m)
		return nil
	}

	cur, exists := loading.CapacityFor(e.markers, w)
	var m *loading.CapacityLoad
	if exists {
		m = loading.Clone(cur).(*loading.CapacityLoad)
	} else {
		m = &loading.CapacityLoad{
			ID:           uuid.New().String(),
			WeaponID:     w.ID,
			OriginalName: w.Name,
			Capacity:     w.Capacity,
		}
	}
	if m.LoadedChambers > 0 && tracked != (len(m.Entries) > 0) {
		return fmt.Errorf("%w: weapon %q", ErrMixedTracking, w.ID)
	}
	if tracked {
		merged := false
		for i := range m.Entries {
			if m.Entries[i].SameSource(round) {
				m.Entries[i].Quantity++
				merged = true
				break
			}
		}
		if !merged {
			m.Entries = append(m.Entries, round)
		}
	}
	m.LoadedChambers++
	m.Name = LoadedName(m.OriginalName, m.LoadedChambers, m.Capacity)
	m.Description = LoadedDescription(m.OriginalDescription, m.Entries)
	if exists {
		l.Update(m)
	} else {
		l.Create(m)
	}
	return nil
}

// RemoveRounds stages the removal of n rounds held by m.
//
//   - Capacity: chambers drop by n, spending tracked entries front first. While
//     rounds remain the marker is renamed "<name> (<n>/<capacity>)" and the
//     same text is shown; otherwise the marker and any chamber marker go.
//   - Simple: deleted.
//   - Magazine: n rounds are fired; the marker is updated while rounds
//     remain, otherwise deleted.
//   - Conjured: deleted with no inventory effect, clearing a chamber that
//     pointed at it.
//
// Precondition: n > 0 (panics otherwise).
func (e *Engine) RemoveRounds(l *ledger.Ledger, m loading.Marker, n int) error {
	if n <= 0 {
		panic(fmt.Sprintf("ammunition: Engine.RemoveRounds: n must be > 0, got %d", n))
	}
	switch cur := m.(type) {
	case *loading.CapacityLoad:
		return e.removeCapacityRounds(l, cur, n)
	case *loading.SimpleLoad:
		l.Delete(cur)
		return nil
	case *loading.MagazineLoad:
		next := loading.Clone(cur).(*loading.MagazineLoad)
		if err := next.Magazine.Consume(n); err != nil {
			return fmt.Errorf("ammunition: firing %d from magazine in %q: %w", n, cur.WeaponID, err)
		}
		if next.Magazine.IsEmpty() {
			l.Delete(cur)
			return nil
		}
		l.Update(next)
		l.Notify(LoadedName(next.AmmunitionName, next.Magazine.Remaining, next.Magazine.Capacity), false)
		return nil
	case *loading.ConjuredRound:
		l.Delete(cur)
		entry := loading.ConjuredEntry(cur)
		e.ClearChamber(l, cur.WeaponID, &entry)
		return nil
	case *loading.ChamberLoad:
		return fmt.Errorf("ammunition: chamber marker %q holds no rounds", cur.ID)
	default:
		return fmt.Errorf("ammunition: unsupported marker %T", m)
	}
}

func (e *Engine) removeCapacityRounds(l *ledger.Ledger, cur *loading.CapacityLoad, n int) error {
	remaining := cur.LoadedChambers - n
	if remaining <= 0 {
		l.Delete(cur)
		e.ClearChamber(l, cur.WeaponID, nil)
		return nil
	}
	next := loading.Clone(cur).(*loading.CapacityLoad)
	next.LoadedChambers = remaining
	toSpend := n
	var spent []loading.AmmunitionEntry
	for toSpend > 0 && len(next.Entries) > 0 {
		head := &next.Entries[0]
		take := min(toSpend, head.Quantity)
		head.Quantity -= take
		toSpend -= take
		if head.Quantity == 0 {
			spent = append(spent, *head)
			next.Entries = next.Entries[1:]
		}
	}
	for i := range spent {
		if e.chamberHolds(cur.WeaponID, spent[i]) {
			e.ClearChamber(l, cur.WeaponID, &spent[i])
			break
		}
	}
	next.Name = LoadedName(next.OriginalName, remaining, next.Capacity)
	next.Description = LoadedDescription(next.OriginalDescription, next.Entries)
	l.Update(next)
	l.Notify(next.Name, false)
	return nil
}

// UnloadMagazine stages taking the magazine out of its weapon.
//
// A magazine never fired whose source stack is still unstowed goes back onto
// that stack as one more item. Otherwise a magazine with rounds left becomes a
// new stack from its template holding the remaining charges. The magazine
// marker, and the weapon's load marker if any, are always deleted.
//
// Postcondition: on a template error nothing is staged.
func (e *Engine) UnloadMagazine(l *ledger.Ledger, m *loading.MagazineLoad) error {
	var restore *inventory.Stack
	var create *inventory.Stack
	if src, ok := e.stacks.FindUnstowed(m.AmmunitionItemID); ok && m.Magazine.IsFresh() {
		src.Quantity++
		restore = &src
	} else if m.Magazine.Remaining > 0 {
		tmpl, err := e.templates.Template(m.AmmunitionTemplateID)
		if err != nil {
			return fmt.Errorf("ammunition: recreating magazine stack: %w", err)
		}
		st := inventory.NewStack(tmpl)
		st.Uses.Value = min(m.Magazine.Remaining, st.Uses.Max)
		create = &st
	}

	if restore != nil {
		l.Update(*restore)
	}
	if create != nil {
		l.Create(*create)
	}
	l.Delete(m)
	for _, kind := range []loading.Kind{loading.KindSimple, loading.KindCapacity} {
		if load, ok := e.find(kind, m.WeaponID); ok {
			l.Delete(load)
		}
	}
	return nil
}

// RemoveEntry stages taking one round of entry out of w's capacity marker.
//
// A depleted entry is dropped, clearing a chamber marker that pointed at it.
// Chambers are recomputed from the remaining entries; an empty marker is
// deleted, otherwise its name and description are rebuilt. The new count is
// shown as floating text.
func (e *Engine) RemoveEntry(l *ledger.Ledger, w inventory.Weapon, entry loading.AmmunitionEntry) error {
	cur, ok := loading.CapacityFor(e.markers, w)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotLoaded, w.ID)
	}
	idx := entryIndex(cur.Entries, entry)
	if idx < 0 {
		return fmt.Errorf("%w: %q in %q", ErrEntryNotLoaded, entry.Name, w.ID)
	}
	next := loading.Clone(cur).(*loading.CapacityLoad)
	next.Entries[idx].Quantity--
	if next.Entries[idx].Quantity == 0 {
		spent := next.Entries[idx]
		next.Entries = append(next.Entries[:idx], next.Entries[idx+1:]...)
		e.ClearChamber(l, w.ID, &spent)
	}
	next.LoadedChambers = 0
	for _, en := range next.Entries {
		next.LoadedChambers += en.Quantity
	}
	l.Notify(LoadedName(next.OriginalName, next.LoadedChambers, next.Capacity), false)
	if len(next.Entries) == 0 {
		l.Delete(cur)
		return nil
	}
	next.Name = LoadedName(next.OriginalName, next.LoadedChambers, next.Capacity)
	next.Description = LoadedDescription(next.OriginalDescription, next.Entries)
	l.Update(next)
	return nil
}

func entryIndex(entries []loading.AmmunitionEntry, entry loading.AmmunitionEntry) int {
	for i, en := range entries {
		if en.SameSource(entry) {
			return i
		}
	}
	for i, en := range entries {
		if en.TemplateID == entry.TemplateID {
			return i
		}
	}
	return -1
}

// ReturnToInventory stages putting one unloaded round back into inventory:
// onto the unstowed stack it came from, else onto an unstowed stack of the
// same template, else into a new single-item stack. Conjured rounds vanish.
//
// Postcondition: on a template error nothing is staged.
func (e *Engine) ReturnToInventory(l *ledger.Ledger, entry loading.AmmunitionEntry) error {
	if entry.IsConjured() {
		return nil
	}
	st, ok := e.stacks.FindUnstowed(entry.ID)
	if !ok {
		st, ok = e.stacks.FindUnstowedByTemplate(entry.TemplateID)
	}
	if ok {
		l.Update(st.AdjustQuantity(1))
		return nil
	}
	tmpl, err := e.templates.Template(entry.TemplateID)
	if err != nil {
		return fmt.Errorf("ammunition: returning %q to inventory: %w", entry.Name, err)
	}
	l.Create(inventory.NewStack(tmpl))
	return nil
}

// SetChamber stages entry as the ammunition chambered next in w.
func (e *Engine) SetChamber(l *ledger.Ledger, w inventory.Weapon, entry loading.AmmunitionEntry) {
	if cur, ok := loading.ChamberFor(e.markers, w); ok {
		next := loading.Clone(cur).(*loading.ChamberLoad)
		next.Ammunition = entry
		l.Update(next)
		return
	}
	l.Create(&loading.ChamberLoad{ID: uuid.New().String(), WeaponID: w.ID, Ammunition: entry})
}

// ClearChamber stages deleting weaponID's chamber marker when it points at
// entry, or unconditionally when entry is nil.
func (e *Engine) ClearChamber(l *ledger.Ledger, weaponID string, entry *loading.AmmunitionEntry) {
	m, ok := e.find(loading.KindChamber, weaponID)
	if !ok {
		return
	}
	if entry == nil || e.chamberHolds(weaponID, *entry) {
		l.Delete(m)
	}
}

func (e *Engine) chamberHolds(weaponID string, entry loading.AmmunitionEntry) bool {
	m, ok := e.find(loading.KindChamber, weaponID)
	if !ok {
		return false
	}
	return m.(*loading.ChamberLoad).Ammunition.TemplateID == entry.TemplateID
}
