package loading

import "github.com/cory-johannsen/rangedcombat/internal/game/inventory"

func find[T Marker](l Lookup, w inventory.Weapon, kind Kind) (T, bool) {
	var zero T
	m, ok := l.Find(w.ActorID, kind, w.ID)
	if !ok {
		return zero, false
	}
	t, ok := m.(T)
	return t, ok
}

// SimpleFor returns the weapon's simple load marker.
func SimpleFor(l Lookup, w inventory.Weapon) (*SimpleLoad, bool) {
	return find[*SimpleLoad](l, w, KindSimple)
}

// CapacityFor returns the weapon's capacity load marker.
func CapacityFor(l Lookup, w inventory.Weapon) (*CapacityLoad, bool) {
	return find[*CapacityLoad](l, w, KindCapacity)
}

// MagazineFor returns the weapon's magazine marker.
func MagazineFor(l Lookup, w inventory.Weapon) (*MagazineLoad, bool) {
	return find[*MagazineLoad](l, w, KindMagazine)
}

// ConjuredFor returns the weapon's conjured round.
func ConjuredFor(l Lookup, w inventory.Weapon) (*ConjuredRound, bool) {
	return find[*ConjuredRound](l, w, KindConjured)
}

// ChamberFor returns the weapon's chamber marker.
func ChamberFor(l Lookup, w inventory.Weapon) (*ChamberLoad, bool) {
	return find[*ChamberLoad](l, w, KindChamber)
}

// LoadMarker returns whichever shape of the load slot the weapon holds.
func LoadMarker(l Lookup, w inventory.Weapon) (Marker, bool) {
	if m, ok := CapacityFor(l, w); ok {
		return m, true
	}
	if m, ok := SimpleFor(l, w); ok {
		return m, true
	}
	return nil, false
}

func loadable(w inventory.Weapon) bool {
	return w.RequiresLoading || w.IsCapacity()
}

// IsLoaded reports whether the weapon holds a load marker or a conjured round.
//
// Postcondition: always false for a weapon with no capacity that does not
// require loading.
func IsLoaded(l Lookup, w inventory.Weapon) bool {
	if !loadable(w) {
		return false
	}
	if _, ok := LoadMarker(l, w); ok {
		return true
	}
	_, ok := ConjuredFor(l, w)
	return ok
}

// RoundsLoaded returns the rounds held across the capacity marker and any
// conjured round.
func RoundsLoaded(l Lookup, w inventory.Weapon) int {
	rounds := 0
	if m, ok := CapacityFor(l, w); ok {
		rounds += m.LoadedChambers
	} else if _, ok := SimpleFor(l, w); ok {
		rounds++
	}
	if _, ok := ConjuredFor(l, w); ok {
		rounds++
	}
	return rounds
}

// IsFullyLoaded reports whether the weapon can take no further round.
//
// Capacity weapons are full when loaded chambers plus any conjured round reach
// capacity. Other weapons are full whenever they are loaded.
func IsFullyLoaded(l Lookup, w inventory.Weapon) bool {
	if !loadable(w) {
		return false
	}
	if !w.IsCapacity() {
		return IsLoaded(l, w)
	}
	rounds := 0
	if m, ok := CapacityFor(l, w); ok {
		rounds += m.LoadedChambers
	}
	if _, ok := ConjuredFor(l, w); ok {
		rounds++
	}
	return rounds >= w.Capacity
}

// LoadedAmmunition lists the ammunition held by the weapon: capacity entries
// in storage order, then a synthetic entry for a conjured round.
//
// Postcondition: the result is a copy; a conjured round is always last.
func LoadedAmmunition(l Lookup, w inventory.Weapon) []AmmunitionEntry {
	var out []AmmunitionEntry
	if m, ok := CapacityFor(l, w); ok {
		out = append(out, m.Entries...)
	}
	if c, ok := ConjuredFor(l, w); ok {
		out = append(out, ConjuredEntry(c))
	}
	return out
}

// ConjuredEntry returns the synthetic ammunition entry standing for c.
func ConjuredEntry(c *ConjuredRound) AmmunitionEntry {
	name := c.Name
	if name == "" {
		name = ConjuredRoundName
	}
	return AmmunitionEntry{ID: ConjuredRoundID, TemplateID: ConjuredRoundID, Name: name, Quantity: 1}
}

// IsConjured reports whether e is the synthetic conjured-round entry.
func (e AmmunitionEntry) IsConjured() bool {
	return e.ID == ConjuredRoundID
}

// IsWeaponLoaded reports whether the weapon has anything to unload. Under the
// advanced ammunition system an inserted magazine counts for repeating weapons.
func IsWeaponLoaded(l Lookup, w inventory.Weapon, advanced bool) bool {
	if advanced && w.Repeating {
		if _, ok := MagazineFor(l, w); ok {
			return true
		}
	}
	return w.RequiresLoading && IsLoaded(l, w)
}
