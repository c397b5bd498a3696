package selection

import (
	"testing"

	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
)

func TestCommitEmptySelectionRejected(t *testing.T) {
	c := NewController()
	c.OpenCreate(geometry.Fraction{FX: 0.25, FY: 0.75})

	if c.CanCommit() {
		t.Fatal("commit must be disabled while the selection is empty")
	}
	if _, err := c.CommitSelection(); err == nil {
		t.Fatal("expected empty commit to fail")
	}
	if c.State() != StateCreate {
		t.Fatalf("rejected commit must leave the dropdown open, state=%s", c.State())
	}
}

func TestCreateFlow(t *testing.T) {
	c := NewController()
	c.OpenCreate(geometry.Fraction{FX: 0.5, FY: 0.5})
	c.Toggle("a")
	c.Toggle("b")
	c.Toggle("a") // deselect

	commit, err := c.CommitSelection()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if commit.Mode != ModeCreate {
		t.Fatalf("expected create mode, got %s", commit.Mode)
	}
	if len(commit.ItemIDs) != 1 || commit.ItemIDs[0] != "b" {
		t.Fatalf("expected only item b, got %v", commit.ItemIDs)
	}
	if commit.Position.FX != 0.5 || commit.Position.FY != 0.5 {
		t.Fatalf("expected click position carried, got %+v", commit.Position)
	}
	if c.State() != StateClosed {
		t.Fatalf("commit must close the dropdown, state=%s", c.State())
	}
}

func TestEditFlowPreSeedsItems(t *testing.T) {
	c := NewController()
	c.OpenEdit("tag-1", []string{"a", "b"})

	pending := c.Pending()
	if len(pending) != 2 || pending[0] != "a" || pending[1] != "b" {
		t.Fatalf("expected pre-seeded items a,b got %v", pending)
	}

	commit, err := c.CommitSelection()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if commit.Mode != ModeUpdate || commit.TagID != "tag-1" {
		t.Fatalf("expected update of tag-1, got %s %s", commit.Mode, commit.TagID)
	}
}

func TestCancelDiscardsPending(t *testing.T) {
	c := NewController()
	c.OpenCreate(geometry.Fraction{})
	c.Toggle("a")
	c.Cancel()

	if c.State() != StateClosed {
		t.Fatalf("expected closed state, got %s", c.State())
	}
	if len(c.Pending()) != 0 {
		t.Fatal("cancel must discard the pending selection")
	}
}

func TestClearIfEditing(t *testing.T) {
	c := NewController()
	c.OpenEdit("tag-1", []string{"a"})
	c.ClearIfEditing("tag-2")
	if c.State() != StateEdit {
		t.Fatal("unrelated delete must not close the edit session")
	}
	c.ClearIfEditing("tag-1")
	if c.State() != StateClosed {
		t.Fatal("deleting the edited tag must close the dropdown")
	}
}

func TestFilterMatchesAnyDisplayField(t *testing.T) {
	items := []catalog.Item{
		{ID: "1", PartName: "Bracket", PartNo: "BD010", MaterialName: "Steel"},
		{ID: "2", PartName: "Bolt M10", PartNo: "X-22", SupplierName: "Acme"},
		{ID: "3", PartName: "Washer", PartNo: "W-1", MakerName: "Denso"},
	}

	// "10" matches both the part number BD010 and the name Bolt M10
	got := Filter(items, "10")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for %q, got %d", "10", len(got))
	}

	got = Filter(items, "STEEL")
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected case-insensitive material match, got %v", got)
	}

	got = Filter(items, "")
	if len(got) != 3 {
		t.Fatalf("empty query must match everything, got %d", len(got))
	}
}
