package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Kind constants for ItemDef.Kind.
const (
	KindAmmunition = "ammunition"
	KindEffect     = "effect"
)

// validKinds is the set of valid ItemDef kinds.
var validKinds = map[string]bool{
	KindAmmunition: true,
	KindEffect:     true,
}

// ItemDef is a record template loaded from YAML. Ammunition templates
// materialise inventory stacks; effect templates materialise markers such as
// the conjured round.
type ItemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	Image       string `yaml:"image"`
	// Uses is the number of charges in one item; 0 and 1 both mean single-charge.
	Uses        int  `yaml:"uses"`
	AutoDestroy bool `yaml:"auto_destroy"`
	// DurationRounds applies to effects; 0 lasts until removed.
	DurationRounds int `yaml:"duration_rounds"`
}

// MaxUses returns the per-item charge count, never less than 1.
func (d *ItemDef) MaxUses() int {
	if d.Uses < 1 {
		return 1
	}
	return d.Uses
}

// Validate checks that the ItemDef satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of ammunition, effect; got %q", d.Kind))
	}
	if d.Uses < 0 {
		errs = append(errs, errors.New("Uses must be >= 0"))
	}
	if d.DurationRounds < 0 {
		errs = append(errs, errors.New("DurationRounds must be >= 0"))
	}
	if d.Kind == KindEffect && d.AutoDestroy {
		errs = append(errs, errors.New("AutoDestroy applies only to ammunition"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	return items, nil
}
