package cart

import (
	"testing"

	"github.com/wirasakti/partmap/internal/catalog"
)

func item(id string) catalog.Item {
	return catalog.Item{ID: id, PartName: "part " + id}
}

func TestRebuildCountsTagsPerItem(t *testing.T) {
	lines := Rebuild([][]catalog.Item{
		{item("a"), item("b")},
		{item("a")},
		{item("c"), item("a")},
	})

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Item.ID != "a" || lines[0].Quantity != 3 {
		t.Fatalf("expected a x3 first, got %s x%d", lines[0].Item.ID, lines[0].Quantity)
	}
	if lines[1].Item.ID != "b" || lines[1].Quantity != 1 {
		t.Fatalf("expected b x1 second, got %s x%d", lines[1].Item.ID, lines[1].Quantity)
	}
	if lines[2].Item.ID != "c" || lines[2].Quantity != 1 {
		t.Fatalf("expected c x1 third, got %s x%d", lines[2].Item.ID, lines[2].Quantity)
	}
}

func TestRebuildFirstEncounterOrder(t *testing.T) {
	// tag 1 references A, tag 2 references B then A again: order is A, B.
	lines := Rebuild([][]catalog.Item{
		{item("A")},
		{item("B"), item("A")},
	})
	if lines[0].Item.ID != "A" || lines[1].Item.ID != "B" {
		t.Fatalf("expected order A,B got %s,%s", lines[0].Item.ID, lines[1].Item.ID)
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected A quantity 2, got %d", lines[0].Quantity)
	}
}

func TestRebuildDuplicateWithinOneTagCountsOnce(t *testing.T) {
	lines := Rebuild([][]catalog.Item{
		{item("a"), item("a")},
	})
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("expected single line with quantity 1, got %+v", lines)
	}
}

func TestRebuildNeverEmitsZeroQuantity(t *testing.T) {
	lines := Rebuild([][]catalog.Item{})
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			t.Fatalf("line %s has non-positive quantity %d", line.Item.ID, line.Quantity)
		}
	}
}

func TestRebuildIgnoresCatalogQuantity(t *testing.T) {
	it := item("x")
	it.Quantity = 99
	lines := Rebuild([][]catalog.Item{{it}})
	if lines[0].Quantity != 1 {
		t.Fatalf("cart quantity must count tags, got %d", lines[0].Quantity)
	}
}

func TestPageViewResetsAfterShrink(t *testing.T) {
	lines := make([]Line, 0, 7)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		lines = append(lines, Line{Item: item(id), Quantity: 1})
	}

	view := PageView(lines, 2, 5)
	if view.Page.Number != 2 || len(view.Lines) != 2 {
		t.Fatalf("expected page 2 with 2 lines, got page %d with %d", view.Page.Number, len(view.Lines))
	}

	// cart shrinks from 7 lines to 4: page 2 is gone, view resets to page 1
	view = PageView(lines[:4], 2, 5)
	if view.Page.Number != 1 {
		t.Fatalf("expected reset to page 1, got %d", view.Page.Number)
	}
	if len(view.Lines) != 4 {
		t.Fatalf("expected all 4 lines on page 1, got %d", len(view.Lines))
	}
}
