package inventory_test

import (
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/rangedcombat/internal/game/inventory"
)

func TestItemDef_Validate_RejectsEmptyID(t *testing.T) {
	d := &inventory.ItemDef{Name: "Lead Bullet", Kind: inventory.KindAmmunition}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty ID, got nil")
	}
}

func TestItemDef_Validate_RejectsInvalidKind(t *testing.T) {
	d := &inventory.ItemDef{ID: "x", Name: "X", Kind: "junk"}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for invalid Kind, got nil")
	}
}

func TestItemDef_Validate_RejectsNegativeUses(t *testing.T) {
	d := &inventory.ItemDef{ID: "x", Name: "X", Kind: inventory.KindAmmunition, Uses: -1}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for negative Uses, got nil")
	}
}

// TestItemDef_Validate_RejectsAutoDestroyEffect verifies auto-destroy is
// reserved for ammunition.
func TestItemDef_Validate_RejectsAutoDestroyEffect(t *testing.T) {
	d := &inventory.ItemDef{ID: "x", Name: "X", Kind: inventory.KindEffect, AutoDestroy: true}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for auto-destroy effect, got nil")
	}
}

func TestItemDef_Validate_AcceptsConjuredRoundEffect(t *testing.T) {
	d := &inventory.ItemDef{ID: "conjured-round", Name: "Conjured Round", Kind: inventory.KindEffect, DurationRounds: 10}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestLoadItems_LoadsYAMLAndYML(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"quiver.yaml": "id: quiver-arrows\nname: Quiver of Arrows\nkind: ammunition\nuses: 10\nauto_destroy: true\n",
		"bullet.yml":  "id: lead-bullet\nname: Lead Bullet\nkind: ammunition\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	items, err := inventory.LoadItems(dir)
	if err != nil {
		t.Fatalf("LoadItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	byID := map[string]*inventory.ItemDef{}
	for _, d := range items {
		byID[d.ID] = d
	}
	q := byID["quiver-arrows"]
	if q == nil || q.Uses != 10 || !q.AutoDestroy {
		t.Fatalf("unexpected quiver definition: %+v", q)
	}
}

func TestLoadItems_MissingDir(t *testing.T) {
	if _, err := inventory.LoadItems(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory, got nil")
	}
}

// TestProperty_ItemDef_MaxUsesAtLeastOne asserts MaxUses never reports fewer
// than one charge.
func TestProperty_ItemDef_MaxUsesAtLeastOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		uses := rapid.IntRange(0, 50).Draw(rt, "uses")
		d := &inventory.ItemDef{ID: "a", Name: "A", Kind: inventory.KindAmmunition, Uses: uses}
		got := d.MaxUses()
		if got < 1 {
			rt.Fatalf("MaxUses=%d for Uses=%d", got, uses)
		}
		if uses > 1 && got != uses {
			rt.Fatalf("MaxUses=%d, want %d", got, uses)
		}
	})
}
