// Package loading models what a ranged weapon currently has loaded. Loaded
// state is a set of markers owned by the weapon's actor; each marker kind is a
// distinct type and callers switch on the concrete type.
package loading

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
)

// Kind discriminates marker variants.
type Kind string

const (
	// KindSimple marks a weapon loaded without chamber tracking.
	KindSimple Kind = "simple"
	// KindCapacity marks a multi-chamber weapon with per-chamber tracking.
	KindCapacity Kind = "capacity"
	// KindMagazine marks a repeating weapon with a magazine inserted.
	KindMagazine Kind = "magazine"
	// KindConjured marks a conjured round held by the weapon.
	KindConjured Kind = "conjured"
	// KindChamber records which ammunition is up next in a capacity weapon.
	KindChamber Kind = "chamber"
)

// Kinds lists every marker kind.
var Kinds = []Kind{KindSimple, KindCapacity, KindMagazine, KindConjured, KindChamber}

// ConjuredRoundID identifies the synthetic ammunition entry of a conjured round.
const ConjuredRoundID = "conjured-round"

// ConjuredRoundName is the display name of the synthetic conjured entry.
const ConjuredRoundName = "Conjured Round"

// Marker is one persisted piece of a weapon's loaded state. The set of
// implementations is closed: SimpleLoad, CapacityLoad, MagazineLoad,
// ConjuredRound and ChamberLoad.
type Marker interface {
	RecordID() string
	Kind() Kind
	// Weapon returns the ID of the weapon the marker belongs to.
	Weapon() string
	Validate() error
	clone() Marker
}

// Clone returns a deep copy of m, safe to modify and stage as an update.
func Clone(m Marker) Marker {
	return m.clone()
}

// AmmunitionEntry describes one kind of ammunition occupying chambers.
type AmmunitionEntry struct {
	// ID is the inventory stack the rounds were taken from.
	ID string `json:"id"`
	// TemplateID is the ammunition template the rounds were made from.
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// SameSource reports whether e and o came from the same stack and template.
func (e AmmunitionEntry) SameSource(o AmmunitionEntry) bool {
	return e.ID == o.ID && e.TemplateID == o.TemplateID
}

// SimpleLoad marks a weapon as loaded with one round.
type SimpleLoad struct {
	ID       string `json:"id"`
	WeaponID string `json:"weapon_id"`
	Name     string `json:"name"`
	// Ammunition is the round loaded, when rounds are tracked.
	Ammunition *AmmunitionEntry `json:"ammunition,omitempty"`
}

func (m *SimpleLoad) RecordID() string { return m.ID }
func (m *SimpleLoad) Kind() Kind       { return KindSimple }
func (m *SimpleLoad) Weapon() string   { return m.WeaponID }

func (m *SimpleLoad) Validate() error {
	if err := validateIdentity(m.ID, m.WeaponID); err != nil {
		return err
	}
	if m.Ammunition != nil && m.Ammunition.Quantity != 1 {
		return fmt.Errorf("simple load holds exactly one round, got %d", m.Ammunition.Quantity)
	}
	return nil
}

func (m *SimpleLoad) clone() Marker {
	cp := *m
	if m.Ammunition != nil {
		a := *m.Ammunition
		cp.Ammunition = &a
	}
	return &cp
}

// CapacityLoad tracks the loaded chambers of a multi-chamber weapon.
// Invariant: 0 <= LoadedChambers <= Capacity; when Entries is non-empty the
// entry quantities sum to LoadedChambers and none is zero.
type CapacityLoad struct {
	ID                  string            `json:"id"`
	WeaponID            string            `json:"weapon_id"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	OriginalName        string            `json:"original_name"`
	OriginalDescription string            `json:"original_description"`
	Capacity            int               `json:"capacity"`
	LoadedChambers      int               `json:"loaded_chambers"`
	Entries             []AmmunitionEntry `json:"entries,omitempty"`
}

func (m *CapacityLoad) RecordID() string { return m.ID }
func (m *CapacityLoad) Kind() Kind       { return KindCapacity }
func (m *CapacityLoad) Weapon() string   { return m.WeaponID }

func (m *CapacityLoad) Validate() error {
	if err := validateIdentity(m.ID, m.WeaponID); err != nil {
		return err
	}
	if m.Capacity <= 0 {
		return fmt.Errorf("capacity must be > 0, got %d", m.Capacity)
	}
	if m.LoadedChambers < 0 || m.LoadedChambers > m.Capacity {
		return fmt.Errorf("loaded chambers %d outside [0, %d]", m.LoadedChambers, m.Capacity)
	}
	if len(m.Entries) == 0 {
		return nil
	}
	sum := 0
	for _, e := range m.Entries {
		if e.Quantity <= 0 {
			return fmt.Errorf("entry %q has non-positive quantity %d", e.ID, e.Quantity)
		}
		sum += e.Quantity
	}
	if sum != m.LoadedChambers {
		return fmt.Errorf("entry quantities sum to %d, loaded chambers is %d", sum, m.LoadedChambers)
	}
	return nil
}

func (m *CapacityLoad) clone() Marker {
	cp := *m
	cp.Entries = append([]AmmunitionEntry(nil), m.Entries...)
	return &cp
}

// EntryIndex returns the index of the entry with the given template identity, or -1.
func (m *CapacityLoad) EntryIndex(templateID string) int {
	for i, e := range m.Entries {
		if e.TemplateID == templateID {
			return i
		}
	}
	return -1
}

// MagazineLoad marks a repeating weapon with a magazine inserted.
type MagazineLoad struct {
	ID             string `json:"id"`
	WeaponID       string `json:"weapon_id"`
	Name           string `json:"name"`
	AmmunitionName string `json:"ammunition_name"`
	// AmmunitionItemID is the stack the magazine was drawn from.
	AmmunitionItemID string `json:"ammunition_item_id"`
	// AmmunitionTemplateID recreates the stack if it no longer exists.
	AmmunitionTemplateID string             `json:"ammunition_template_id"`
	Magazine             inventory.Magazine `json:"magazine"`
}

func (m *MagazineLoad) RecordID() string { return m.ID }
func (m *MagazineLoad) Kind() Kind       { return KindMagazine }
func (m *MagazineLoad) Weapon() string   { return m.WeaponID }

func (m *MagazineLoad) Validate() error {
	if err := validateIdentity(m.ID, m.WeaponID); err != nil {
		return err
	}
	if m.AmmunitionTemplateID == "" {
		return errors.New("magazine must record its ammunition template")
	}
	if m.Magazine.Capacity <= 0 {
		return fmt.Errorf("magazine capacity must be > 0, got %d", m.Magazine.Capacity)
	}
	if m.Magazine.Remaining < 0 || m.Magazine.Remaining > m.Magazine.Capacity {
		return fmt.Errorf("magazine remaining %d outside [0, %d]", m.Magazine.Remaining, m.Magazine.Capacity)
	}
	return nil
}

func (m *MagazineLoad) clone() Marker {
	cp := *m
	return &cp
}

// ConjuredRound marks an ephemeral round created without inventory. It always
// counts as exactly one loaded round.
type ConjuredRound struct {
	ID          string `json:"id"`
	WeaponID    string `json:"weapon_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	// DurationRounds is 0 when the round lasts until fired or unloaded.
	DurationRounds int `json:"duration_rounds"`
}

func (m *ConjuredRound) RecordID() string { return m.ID }
func (m *ConjuredRound) Kind() Kind       { return KindConjured }
func (m *ConjuredRound) Weapon() string   { return m.WeaponID }

func (m *ConjuredRound) Validate() error {
	if err := validateIdentity(m.ID, m.WeaponID); err != nil {
		return err
	}
	if m.DurationRounds < 0 {
		return fmt.Errorf("duration must be >= 0, got %d", m.DurationRounds)
	}
	return nil
}

func (m *ConjuredRound) clone() Marker {
	cp := *m
	return &cp
}

// ChamberLoad records the ammunition chambered next in a capacity weapon.
type ChamberLoad struct {
	ID         string          `json:"id"`
	WeaponID   string          `json:"weapon_id"`
	Ammunition AmmunitionEntry `json:"ammunition"`
}

func (m *ChamberLoad) RecordID() string { return m.ID }
func (m *ChamberLoad) Kind() Kind       { return KindChamber }
func (m *ChamberLoad) Weapon() string   { return m.WeaponID }

func (m *ChamberLoad) Validate() error {
	if err := validateIdentity(m.ID, m.WeaponID); err != nil {
		return err
	}
	if m.Ammunition.TemplateID == "" {
		return errors.New("chamber must name its ammunition")
	}
	return nil
}

func (m *ChamberLoad) clone() Marker {
	cp := *m
	return &cp
}

func validateIdentity(id, weaponID string) error {
	if id == "" {
		return errors.New("marker ID must not be empty")
	}
	if weaponID == "" {
		return errors.New("marker weapon ID must not be empty")
	}
	return nil
}
