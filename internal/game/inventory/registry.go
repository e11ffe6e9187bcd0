package inventory

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTemplateNotFound is returned when a template identity is unknown.
var ErrTemplateNotFound = errors.New("inventory: template not found")

// TemplateSource fetches editable record templates by stable identity.
type TemplateSource interface {
	// Template returns a copy of the template registered under id, or an
	// error wrapping ErrTemplateNotFound.
	Template(id string) (*ItemDef, error)
}

// Registry holds all loaded weapon and item definitions indexed by ID.
type Registry struct {
	weapons map[string]*WeaponDef
	items   map[string]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		weapons: make(map[string]*WeaponDef),
		items:   make(map[string]*ItemDef),
	}
}

// LoadRegistry loads item templates from itemsDir and weapon definitions from
// weaponsDir into a new Registry.
//
// Precondition: both directories are readable.
// Postcondition: returns a populated Registry or the first load/registration error.
func LoadRegistry(itemsDir, weaponsDir string) (*Registry, error) {
	reg := NewRegistry()
	items, err := LoadItems(itemsDir)
	if err != nil {
		return nil, err
	}
	for _, d := range items {
		if err := reg.RegisterItem(d); err != nil {
			return nil, err
		}
	}
	weapons, err := LoadWeapons(weaponsDir)
	if err != nil {
		return nil, err
	}
	for _, w := range weapons {
		if err := reg.RegisterWeapon(w); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// RegisterWeapon adds w to the registry.
//
// Precondition:  w must not be nil.
// Postcondition: Weapon(w.ID) returns w; returns error if w.ID already registered.
func (r *Registry) RegisterWeapon(w *WeaponDef) error {
	if _, exists := r.weapons[w.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterWeapon: weapon ID %q already registered", w.ID)
	}
	r.weapons[w.ID] = w
	return nil
}

// Weapon returns the WeaponDef for the given id, or nil if not found.
func (r *Registry) Weapon(id string) *WeaponDef {
	return r.weapons[id]
}

// RegisterItem adds d to the registry.
//
// Precondition:  d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) RegisterItem(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("inventory: Registry.RegisterItem: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for the given id and whether it was found.
//
// Postcondition: ok is true iff the id is registered.
func (r *Registry) Item(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// Template returns an editable copy of the item registered under id.
//
// Postcondition: mutating the result never affects the registry; unknown ids
// yield an error wrapping ErrTemplateNotFound.
func (r *Registry) Template(id string) (*ItemDef, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	cp := *d
	return &cp, nil
}

// AllWeapons returns all registered WeaponDefs ordered by ID.
//
// Postcondition: len(result) == number of registered weapons.
func (r *Registry) AllWeapons() []*WeaponDef {
	out := make([]*WeaponDef, 0, len(r.weapons))
	for _, w := range r.weapons {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
