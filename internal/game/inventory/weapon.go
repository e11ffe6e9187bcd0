// Package inventory provides weapon and ammunition definitions, the template
// registry, and the actor-owned ammunition stacks that loading draws from.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WeaponDef defines the static properties of a ranged weapon loaded from YAML.
type WeaponDef struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	ReloadActions int    `yaml:"reload_actions"` // 0 = never needs loading
	Repeating     bool   `yaml:"repeating"`
	Capacity      int    `yaml:"capacity"` // 0 = single round
	// Ammunition lists accepted ammunition template IDs; empty accepts any.
	Ammunition []string `yaml:"ammunition"`
}

// RequiresLoading reports whether the weapon must be loaded before firing.
func (w *WeaponDef) RequiresLoading() bool {
	return w.ReloadActions > 0
}

// Validate checks that the WeaponDef satisfies its invariants.
// Precondition: w is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (w *WeaponDef) Validate() error {
	var errs []error
	if w.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if w.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if w.ReloadActions < 0 {
		errs = append(errs, errors.New("ReloadActions must be >= 0"))
	}
	if w.Capacity < 0 {
		errs = append(errs, errors.New("Capacity must be >= 0"))
	}
	if w.Repeating && w.Capacity > 0 {
		errs = append(errs, errors.New("repeating weapons load magazines and cannot have Capacity"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("weapon validation failed: %v", errs)
	}
	return nil
}

// Weapon is one actor-owned instance of a WeaponDef. It is immutable for the
// duration of an action.
type Weapon struct {
	ID              string
	ActorID         string
	DefID           string
	Name            string
	RequiresLoading bool
	Repeating       bool
	Capacity        int
	Ammunition      []string
}

// NewWeapon instantiates def for actorID under the instance id.
//
// Precondition: def is non-nil and valid; id and actorID are non-empty.
// Postcondition: the returned Weapon copies def's loading properties.
func NewWeapon(def *WeaponDef, id, actorID string) Weapon {
	return Weapon{
		ID:              id,
		ActorID:         actorID,
		DefID:           def.ID,
		Name:            def.Name,
		RequiresLoading: def.RequiresLoading(),
		Repeating:       def.Repeating,
		Capacity:        def.Capacity,
		Ammunition:      append([]string(nil), def.Ammunition...),
	}
}

// IsCapacity reports whether the weapon tracks rounds per chamber.
func (w Weapon) IsCapacity() bool {
	return w.Capacity > 0
}

// Accepts reports whether ammunition made from templateID fits this weapon.
func (w Weapon) Accepts(templateID string) bool {
	if len(w.Ammunition) == 0 {
		return true
	}
	for _, id := range w.Ammunition {
		if id == templateID {
			return true
		}
	}
	return false
}

// LoadWeapons reads all *.yaml files from dir, parses each as a WeaponDef,
// validates it, and returns the collected slice.
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid WeaponDefs or the first encountered error.
func LoadWeapons(dir string) ([]*WeaponDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadWeapons: cannot read directory %q: %w", dir, err)
	}

	var weapons []*WeaponDef
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot read file %q: %w", path, err)
		}
		var w WeaponDef
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("LoadWeapons: cannot parse file %q: %w", path, err)
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("LoadWeapons: invalid weapon in %q: %w", path, err)
		}
		weapons = append(weapons, &w)
	}
	return weapons, nil
}
