package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
)

func revolverDef() *inventory.WeaponDef {
	return &inventory.WeaponDef{
		ID:            "pepperbox",
		Name:          "Pepperbox",
		ReloadActions: 1,
		Capacity:      3,
		Ammunition:    []string{"lead-bullet"},
	}
}

func TestWeaponDef_Validate_RejectsEmpty(t *testing.T) {
	w := &inventory.WeaponDef{}
	if err := w.Validate(); err == nil {
		t.Fatal("expected error for empty WeaponDef, got nil")
	}
}

func TestWeaponDef_Validate_AcceptsMinimal(t *testing.T) {
	w := &inventory.WeaponDef{ID: "shortbow", Name: "Shortbow"}
	if err := w.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

// TestWeaponDef_Validate_RejectsRepeatingCapacity verifies that repeating
// weapons cannot also declare chambers.
func TestWeaponDef_Validate_RejectsRepeatingCapacity(t *testing.T) {
	w := &inventory.WeaponDef{ID: "repeater", Name: "Repeater", ReloadActions: 1, Repeating: true, Capacity: 4}
	if err := w.Validate(); err == nil {
		t.Fatal("expected error for repeating weapon with Capacity, got nil")
	}
}

func TestWeaponDef_Validate_RejectsNegativeNumbers(t *testing.T) {
	w := &inventory.WeaponDef{ID: "x", Name: "X", ReloadActions: -1, Capacity: -2}
	if err := w.Validate(); err == nil {
		t.Fatal("expected error for negative fields, got nil")
	}
}

func TestLoadWeapons_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	content := `id: pepperbox
name: Pepperbox
reload_actions: 1
capacity: 3
ammunition: [lead-bullet, silver-bullet]
`
	if err := os.WriteFile(filepath.Join(dir, "pepperbox.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp YAML: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	weapons, err := inventory.LoadWeapons(dir)
	if err != nil {
		t.Fatalf("LoadWeapons failed: %v", err)
	}
	if len(weapons) != 1 {
		t.Fatalf("expected 1 weapon, got %d", len(weapons))
	}
	w := weapons[0]
	if w.ID != "pepperbox" {
		t.Errorf("expected ID 'pepperbox', got %q", w.ID)
	}
	if w.Capacity != 3 {
		t.Errorf("expected Capacity 3, got %d", w.Capacity)
	}
	if !w.RequiresLoading() {
		t.Error("expected RequiresLoading=true for reload_actions: 1")
	}
	if len(w.Ammunition) != 2 || w.Ammunition[1] != "silver-bullet" {
		t.Errorf("unexpected ammunition: %v", w.Ammunition)
	}
}

func TestLoadWeapons_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	content := "id: broken\nname: Broken\nrepeating: true\ncapacity: 2\n"
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp YAML: %v", err)
	}
	if _, err := inventory.LoadWeapons(dir); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

// TestNewWeapon_CopiesLoadingProperties verifies an instance carries its
// definition's loading properties and owner.
func TestNewWeapon_CopiesLoadingProperties(t *testing.T) {
	def := revolverDef()
	w := inventory.NewWeapon(def, "w-1", "actor-1")
	if w.ID != "w-1" || w.ActorID != "actor-1" || w.DefID != "pepperbox" {
		t.Fatalf("unexpected identity: %+v", w)
	}
	if !w.RequiresLoading || !w.IsCapacity() || w.Repeating {
		t.Fatalf("unexpected loading flags: %+v", w)
	}
	def.Ammunition[0] = "mutated"
	if w.Ammunition[0] != "lead-bullet" {
		t.Fatal("expected weapon ammunition list to be a copy")
	}
}

func TestWeapon_Accepts(t *testing.T) {
	w := inventory.NewWeapon(revolverDef(), "w-1", "actor-1")
	if !w.Accepts("lead-bullet") {
		t.Error("expected lead-bullet to be accepted")
	}
	if w.Accepts("quiver-arrows") {
		t.Error("expected quiver-arrows to be rejected")
	}
	unrestricted := inventory.Weapon{ID: "w-2"}
	if !unrestricted.Accepts("quiver-arrows") {
		t.Error("expected an empty ammunition list to accept anything")
	}
}

// TestProperty_WeaponDef_RequiresLoadingMatchesReloadActions asserts that
// RequiresLoading is exactly ReloadActions > 0.
func TestProperty_WeaponDef_RequiresLoadingMatchesReloadActions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ra := rapid.IntRange(0, 5).Draw(rt, "reload_actions")
		w := &inventory.WeaponDef{ID: "w", Name: "W", ReloadActions: ra}
		if w.RequiresLoading() != (ra > 0) {
			rt.Fatalf("RequiresLoading=%v for ReloadActions=%d", w.RequiresLoading(), ra)
		}
	})
}
