package pagination

import "testing"

func TestClampWithinRange(t *testing.T) {
	page := Clamp(2, 12, 5)
	if page.Number != 2 {
		t.Fatalf("expected page 2, got %d", page.Number)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	start, end := page.Bounds()
	if start != 5 || end != 10 {
		t.Fatalf("expected bounds [5,10), got [%d,%d)", start, end)
	}
}

func TestClampResetsWhenPageFallsOut(t *testing.T) {
	// 7 items on page 2, then shrink to 4: page 2 no longer exists.
	page := Clamp(2, 4, 5)
	if page.Number != 1 {
		t.Fatalf("expected reset to page 1, got %d", page.Number)
	}
	if page.TotalPages != 1 {
		t.Fatalf("expected 1 total page, got %d", page.TotalPages)
	}
}

func TestClampEmptyList(t *testing.T) {
	page := Clamp(3, 0, 5)
	if page.Number != 1 || page.TotalPages != 1 {
		t.Fatalf("expected page 1 of 1, got %d of %d", page.Number, page.TotalPages)
	}
	start, end := page.Bounds()
	if start != 0 || end != 0 {
		t.Fatalf("expected empty bounds, got [%d,%d)", start, end)
	}
}
