package memory

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/rangedcombat/internal/game/actorstate"
	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
	"github.com/cory-johannsen/rangedcombat/internal/game/loading"
)

// Definitions resolves the weapon definitions and ammunition templates a seed
// file refers to. *inventory.Registry satisfies it.
type Definitions interface {
	Weapon(id string) *inventory.WeaponDef
	inventory.TemplateSource
}

// SeedFile is the YAML layout of an actor seed file.
type SeedFile struct {
	Actors []ActorSeed `yaml:"actors"`
}

// ActorSeed describes one actor's starting weapons and ammunition.
type ActorSeed struct {
	ID         string       `yaml:"id"`
	Name       string       `yaml:"name"`
	Features   []string     `yaml:"features"`
	Weapons    []WeaponSeed `yaml:"weapons"`
	Ammunition []StackSeed  `yaml:"ammunition"`
}

// WeaponSeed instantiates a weapon definition under an instance ID.
type WeaponSeed struct {
	ID  string `yaml:"id"`
	Def string `yaml:"def"`
}

// StackSeed instantiates an ammunition template. Quantity defaults to 1 and
// Value to a full item.
type StackSeed struct {
	ID       string `yaml:"id"`
	Template string `yaml:"template"`
	Quantity int    `yaml:"quantity"`
	Value    int    `yaml:"value"`
	Stowed   bool   `yaml:"stowed"`
}

// LoadSeed reads the actor seed file at path and builds one State per actor.
//
// Precondition: defs must be non-nil.
// Postcondition: returns every actor's State, or an error naming each invalid entry.
func LoadSeed(path string, defs Definitions) ([]*actorstate.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSeed: cannot read file %q: %w", path, err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("LoadSeed: cannot parse file %q: %w", path, err)
	}
	states := make([]*actorstate.State, 0, len(f.Actors))
	var errs []error
	for _, a := range f.Actors {
		st, err := a.build(defs)
		if err != nil {
			errs = append(errs, fmt.Errorf("actor %q: %w", a.ID, err))
			continue
		}
		states = append(states, st)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("LoadSeed: invalid seed %q: %w", path, errors.Join(errs...))
	}
	return states, nil
}

func (a ActorSeed) build(defs Definitions) (*actorstate.State, error) {
	if a.ID == "" {
		return nil, errors.New("id must not be empty")
	}
	var errs []error
	actor := actorstate.Actor{ID: a.ID, Name: a.Name, Features: a.Features}
	for _, ws := range a.Weapons {
		def := defs.Weapon(ws.Def)
		if def == nil {
			errs = append(errs, fmt.Errorf("weapon %q: unknown definition %q", ws.ID, ws.Def))
			continue
		}
		actor.Weapons = append(actor.Weapons, inventory.NewWeapon(def, ws.ID, a.ID))
	}
	var stacks []inventory.Stack
	for _, ss := range a.Ammunition {
		st, err := ss.build(defs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		stacks = append(stacks, st)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	markers, err := loading.NewSet(a.ID)
	if err != nil {
		return nil, err
	}
	return actorstate.New(actor, markers, inventory.NewInventory(a.ID, stacks...))
}

func (s StackSeed) build(defs inventory.TemplateSource) (inventory.Stack, error) {
	tmpl, err := defs.Template(s.Template)
	if err != nil {
		return inventory.Stack{}, fmt.Errorf("ammunition %q: %w", s.ID, err)
	}
	if tmpl.Kind != inventory.KindAmmunition {
		return inventory.Stack{}, fmt.Errorf("ammunition %q: template %q is %q", s.ID, s.Template, tmpl.Kind)
	}
	st := inventory.NewStack(tmpl)
	if s.ID != "" {
		st.ID = s.ID
	}
	if s.Quantity > 0 {
		st.Quantity = s.Quantity
	}
	if s.Value > 0 {
		if s.Value > st.Uses.Max {
			return inventory.Stack{}, fmt.Errorf("ammunition %q: value %d exceeds %d", s.ID, s.Value, st.Uses.Max)
		}
		st.Uses.Value = s.Value
	}
	st.Stowed = s.Stowed
	return st, nil
}
