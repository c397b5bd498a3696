package workspace

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
)

func testCatalog() []catalog.Item {
	return []catalog.Item{
		{ID: "a", PartName: "Bracket", PartNo: "BD010"},
		{ID: "b", PartName: "Bolt M10", PartNo: "X-22"},
		{ID: "c", PartName: "Washer", PartNo: "W-1"},
	}
}

func newTestWorkspace() *Workspace {
	return New(uuid.New(), testCatalog(), 5)
}

func TestCreateTagRejectsEmptyItems(t *testing.T) {
	w := newTestWorkspace()
	_, err := w.CreateTag(geometry.Fraction{FX: 0.5, FY: 0.5}, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(w.Tags()) != 0 {
		t.Fatal("rejected create must not add a tag")
	}
}

func TestCreateTagRejectsItemsOutsideCatalog(t *testing.T) {
	w := newTestWorkspace()
	_, err := w.CreateTag(geometry.Fraction{}, []string{"a", "ghost"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(w.CartLines()) != 0 {
		t.Fatal("rejected create must not touch the cart")
	}
}

func TestCartConsistencyAcrossMutations(t *testing.T) {
	w := newTestWorkspace()

	t1, _ := w.CreateTag(geometry.Fraction{FX: 0.1, FY: 0.1}, []string{"a", "b"})
	t2, _ := w.CreateTag(geometry.Fraction{FX: 0.2, FY: 0.2}, []string{"a"})
	if _, err := w.UpdateTagItems(t2.ID, []string{"c"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := w.DeleteTag(t1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// brute-force recount must match the derived cart at any point
	counts := map[string]int{}
	for _, tag := range w.Tags() {
		for _, item := range tag.Items {
			counts[item.ID]++
		}
	}
	lines := w.CartLines()
	if len(lines) != len(counts) {
		t.Fatalf("cart has %d lines, recount has %d", len(lines), len(counts))
	}
	for _, line := range lines {
		if line.Quantity != counts[line.Item.ID] {
			t.Fatalf("line %s quantity %d, recount %d", line.Item.ID, line.Quantity, counts[line.Item.ID])
		}
		if line.Quantity <= 0 {
			t.Fatalf("line %s has non-positive quantity", line.Item.ID)
		}
	}
}

func TestDeleteTagRenumbers(t *testing.T) {
	w := newTestWorkspace()
	t1, _ := w.CreateTag(geometry.Fraction{}, []string{"a"})
	t2, _ := w.CreateTag(geometry.Fraction{}, []string{"b"})
	t3, _ := w.CreateTag(geometry.Fraction{}, []string{"c"})

	if err := w.DeleteTag(t2.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tags := w.Tags()
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	// what was tag #3 is now tag #2
	if tags[0].ID != t1.ID || tags[1].ID != t3.ID {
		t.Fatalf("expected order %s,%s got %s,%s", t1.ID, t3.ID, tags[0].ID, tags[1].ID)
	}
}

func TestMoveTagDoesNotTouchCart(t *testing.T) {
	w := newTestWorkspace()
	tag, _ := w.CreateTag(geometry.Fraction{FX: 0.2, FY: 0.2}, []string{"a"})
	before := w.CartLines()

	if err := w.MoveTag(tag.ID, geometry.Fraction{FX: 0.9, FY: 0.9}); err != nil {
		t.Fatalf("move: %v", err)
	}

	after := w.CartLines()
	if len(before) != len(after) || before[0].Quantity != after[0].Quantity {
		t.Fatal("moving a tag must not change the cart")
	}
	if got := w.Tags()[0].Position; got.FX != 0.9 || got.FY != 0.9 {
		t.Fatalf("expected moved position, got %+v", got)
	}
}

func TestCartPageResetsAfterShrink(t *testing.T) {
	items := make([]catalog.Item, 0, 7)
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	for _, id := range ids {
		items = append(items, catalog.Item{ID: id, PartName: id})
	}
	w := New(uuid.New(), items, 5)

	tagIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		tag, err := w.CreateTag(geometry.Fraction{}, []string{id})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	view := w.CartView(2)
	if view.Page.Number != 2 || len(view.Lines) != 2 {
		t.Fatalf("expected page 2 with 2 lines, got page %d with %d", view.Page.Number, len(view.Lines))
	}

	// drop three tags: 4 lines remain, page 2 no longer exists
	for _, id := range tagIDs[4:] {
		if err := w.DeleteTag(id); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}

	view = w.CartView(0)
	if view.Page.Number != 1 {
		t.Fatalf("expected auto-reset to page 1, got %d", view.Page.Number)
	}
	if len(view.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(view.Lines))
	}
}

func TestCommitSelectionCreateAndEdit(t *testing.T) {
	w := newTestWorkspace()
	w.SetImage(&ImageState{
		Bitmap:  image.NewRGBA(image.Rect(0, 0, 10, 10)),
		Natural: geometry.Size{Width: 10, Height: 10},
		Display: geometry.Size{Width: 10, Height: 10},
	})

	if err := w.OpenCreate(geometry.Fraction{FX: 0.3, FY: 0.4}); err != nil {
		t.Fatalf("open create: %v", err)
	}
	if _, err := w.CommitSelection(); err == nil {
		t.Fatal("empty commit must fail")
	}

	if _, err := w.ToggleSelection("a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	tag, err := w.CommitSelection()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if tag.Position.FX != 0.3 || tag.Position.FY != 0.4 {
		t.Fatalf("expected pin at click position, got %+v", tag.Position)
	}

	if err := w.OpenEdit(tag.ID); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	_, _, pending := w.SelectionState()
	if len(pending) != 1 || pending[0] != "a" {
		t.Fatalf("expected edit pre-seeded with a, got %v", pending)
	}
	if _, err := w.ToggleSelection("b"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	updated, err := w.CommitSelection()
	if err != nil {
		t.Fatalf("commit edit: %v", err)
	}
	if updated.ID != tag.ID || len(updated.Items) != 2 {
		t.Fatalf("expected tag %s updated to 2 items, got %s with %d", tag.ID, updated.ID, len(updated.Items))
	}
}

func TestDeleteTagClosesEditSession(t *testing.T) {
	w := newTestWorkspace()
	tag, _ := w.CreateTag(geometry.Fraction{}, []string{"a"})
	if err := w.OpenEdit(tag.ID); err != nil {
		t.Fatalf("open edit: %v", err)
	}
	if err := w.DeleteTag(tag.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	state, _, _ := w.SelectionState()
	if state != "closed" {
		t.Fatalf("expected dropdown closed after deleting edited tag, got %s", state)
	}
}

func TestToggleSelectionRejectsUnknownItem(t *testing.T) {
	w := newTestWorkspace()
	w.SetImage(&ImageState{Bitmap: image.NewRGBA(image.Rect(0, 0, 4, 4)), Natural: geometry.Size{Width: 4, Height: 4}})
	if err := w.OpenCreate(geometry.Fraction{}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := w.ToggleSelection("ghost"); err == nil {
		t.Fatal("expected toggle of unknown item to fail")
	}
}

func TestSetImageResetsState(t *testing.T) {
	w := newTestWorkspace()
	w.SetImage(&ImageState{Bitmap: image.NewRGBA(image.Rect(0, 0, 4, 4))})
	if _, err := w.CreateTag(geometry.Fraction{}, []string{"a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	w.SetImage(&ImageState{Bitmap: image.NewRGBA(image.Rect(0, 0, 8, 8))})
	if len(w.Tags()) != 0 || len(w.CartLines()) != 0 {
		t.Fatal("new image must reset tags and cart")
	}
}

func TestDecodeUploadAcceptsPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1600, 1200))); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	state, err := DecodeUpload(buf.Bytes(), geometry.Size{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if state.Natural.Width != 1600 || state.Natural.Height != 1200 {
		t.Fatalf("expected natural 1600x1200, got %+v", state.Natural)
	}
	if state.Display.Width != 800 || state.Display.Height != 600 {
		t.Fatalf("expected display fitted to 800x600, got %+v", state.Display)
	}
}

func TestDecodeUploadRejectsNonImage(t *testing.T) {
	_, err := DecodeUpload([]byte("%PDF-1.4 not an image"), geometry.Size{Width: 800, Height: 600})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for non-image payload, got %v", err)
	}
}

func TestStoreOwnership(t *testing.T) {
	store := NewStore()
	owner := uuid.New()
	w := New(owner, testCatalog(), 5)
	store.Put(w)

	if _, err := store.Get(w.ID, owner); err != nil {
		t.Fatalf("owner get: %v", err)
	}

	_, err := store.Get(w.ID, uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for other user, got %v", err)
	}

	if err := store.Delete(w.ID, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(w.ID, owner); err == nil {
		t.Fatal("expected workspace gone after delete")
	}
}
