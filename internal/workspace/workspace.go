// Package workspace holds the per-session tagging state: the uploaded
// image, the ordered tag collection, the derived cart, and the dropdown
// selection. Workspaces live in memory only and die with the process.
package workspace

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wirasakti/partmap/internal/cart"
	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
	"github.com/wirasakti/partmap/internal/selection"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
)

// Tag is one placed pin. Its displayed number is the 1-based index in the
// workspace's tag slice, never a stored field, so deleting a tag renumbers
// everything after it.
type Tag struct {
	ID       string            `json:"id"`
	Position geometry.Fraction `json:"position"`
	Items    []catalog.Item    `json:"items"`
}

// ImageState is the decoded upload plus its derived geometry.
type ImageState struct {
	Bitmap  image.Image
	Natural geometry.Size
	Display geometry.Size
	Format  string
}

// Workspace is one user's tagging session. All mutations go through the
// mutex; there is exactly one logical mutator at a time.
type Workspace struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time

	mu          sync.Mutex
	catalog     []catalog.Item
	catalogByID map[string]catalog.Item
	img         *ImageState
	tags        []Tag
	lines       []cart.Line
	currentPage int
	pageSize    int
	sel         *selection.Controller
}

// New builds an empty workspace around a catalog snapshot. The snapshot is
// immutable for the workspace's lifetime; tag item sets are always subsets
// of it.
func New(userID uuid.UUID, items []catalog.Item, pageSize int) *Workspace {
	byID := make(map[string]catalog.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Workspace{
		ID:          uuid.New(),
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		catalog:     items,
		catalogByID: byID,
		currentPage: 1,
		pageSize:    pageSize,
		sel:         selection.NewController(),
	}
}

// SetImage installs a freshly decoded upload and resets tags, cart, paging
// and any open dropdown.
func (w *Workspace) SetImage(img *ImageState) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.img = img
	w.tags = nil
	w.lines = nil
	w.currentPage = 1
	w.sel.Cancel()
}

// Image returns the current image state, or nil before any upload.
func (w *Workspace) Image() *ImageState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.img
}

// Catalog returns the workspace's catalog snapshot.
func (w *Workspace) Catalog() []catalog.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]catalog.Item, len(w.catalog))
	copy(out, w.catalog)
	return out
}

// SearchCatalog filters the snapshot with the dropdown's OR-across-fields
// substring semantics.
func (w *Workspace) SearchCatalog(query string) []catalog.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return selection.Filter(w.catalog, query)
}

// Tags returns a copy of the ordered tag collection.
func (w *Workspace) Tags() []Tag {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.copyTagsLocked()
}

// CreateTag appends a pin at the given position referencing the given
// catalog items. Empty item sets and items outside the catalog snapshot are
// rejected before any state changes.
func (w *Workspace) CreateTag(position geometry.Fraction, itemIDs []string) (*Tag, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	items, err := w.resolveItemsLocked(itemIDs)
	if err != nil {
		return nil, err
	}

	tag := Tag{
		ID:       uuid.NewString(),
		Position: position,
		Items:    items,
	}
	w.tags = append(w.tags, tag)
	w.rebuildCartLocked()
	return &tag, nil
}

// MoveTag updates only the pin position. The cart is untouched because
// position never affects quantities.
func (w *Workspace) MoveTag(id string, position geometry.Fraction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.indexOfLocked(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
	}
	w.tags[idx].Position = position
	return nil
}

// UpdateTagItems replaces a tag's item set and rebuilds the cart.
func (w *Workspace) UpdateTagItems(id string, itemIDs []string) (*Tag, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.indexOfLocked(id)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
	}

	items, err := w.resolveItemsLocked(itemIDs)
	if err != nil {
		return nil, err
	}

	w.tags[idx].Items = items
	w.rebuildCartLocked()
	tag := w.tags[idx]
	return &tag, nil
}

// DeleteTag removes the pin, renumbers later tags implicitly, rebuilds the
// cart, and closes any dropdown editing the deleted tag.
func (w *Workspace) DeleteTag(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.indexOfLocked(id)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
	}

	w.tags = append(w.tags[:idx], w.tags[idx+1:]...)
	w.sel.ClearIfEditing(id)
	w.rebuildCartLocked()
	return nil
}

// CartView returns the requested page of the derived cart, clamped against
// the current cart size.
func (w *Workspace) CartView(requestedPage int) cart.View {
	w.mu.Lock()
	defer w.mu.Unlock()

	if requestedPage <= 0 {
		requestedPage = w.currentPage
	}
	view := cart.PageView(w.lines, requestedPage, w.pageSize)
	w.currentPage = view.Page.Number
	return view
}

// CartLines returns the full derived cart.
func (w *Workspace) CartLines() []cart.Line {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]cart.Line, len(w.lines))
	copy(out, w.lines)
	return out
}

// OpenCreate starts a create-selection for a pin at the clicked position.
func (w *Workspace) OpenCreate(position geometry.Fraction) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.img == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "upload an image first")
	}
	w.sel.OpenCreate(position)
	return nil
}

// OpenEdit starts an edit-selection pre-seeded with the tag's items.
func (w *Workspace) OpenEdit(tagID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := w.indexOfLocked(tagID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
	}

	ids := make([]string, 0, len(w.tags[idx].Items))
	for _, item := range w.tags[idx].Items {
		ids = append(ids, item.ID)
	}
	w.sel.OpenEdit(tagID, ids)
	return nil
}

// ToggleSelection flips one catalog item in the pending set.
func (w *Workspace) ToggleSelection(itemID string) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sel.State() == selection.StateClosed {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "no selection in progress")
	}
	if _, ok := w.catalogByID[itemID]; !ok {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "item not in catalog")
	}
	return w.sel.Toggle(itemID), nil
}

// SetSelectionQuery updates the dropdown search filter.
func (w *Workspace) SetSelectionQuery(query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.SetQuery(query)
}

// SelectionState reports the dropdown state for the UI.
func (w *Workspace) SelectionState() (selection.State, string, []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.State(), w.sel.EditingTagID(), w.sel.Pending()
}

// CommitSelection confirms the pending selection, creating or updating a
// tag. Empty selections are rejected with the dropdown left open.
func (w *Workspace) CommitSelection() (*Tag, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	commit, err := w.sel.CommitSelection()
	if err != nil {
		return nil, err
	}

	items, err := w.resolveItemsLocked(commit.ItemIDs)
	if err != nil {
		return nil, err
	}

	switch commit.Mode {
	case selection.ModeUpdate:
		idx := w.indexOfLocked(commit.TagID)
		if idx < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
		}
		w.tags[idx].Items = items
		w.rebuildCartLocked()
		tag := w.tags[idx]
		return &tag, nil
	default:
		tag := Tag{
			ID:       uuid.NewString(),
			Position: commit.Position,
			Items:    items,
		}
		w.tags = append(w.tags, tag)
		w.rebuildCartLocked()
		return &tag, nil
	}
}

// CancelSelection closes the dropdown discarding the pending set.
func (w *Workspace) CancelSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Cancel()
}

// ExportSnapshot is an immutable copy of everything an export needs, taken
// under the lock so rendering can happen outside it.
type ExportSnapshot struct {
	Bitmap  image.Image
	Natural geometry.Size
	Tags    []Tag
	Lines   []cart.Line
}

// Snapshot captures the current image, tags, and cart for export. Returns a
// validation error before any image is uploaded.
func (w *Workspace) Snapshot() (*ExportSnapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.img == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload an image first")
	}

	lines := make([]cart.Line, len(w.lines))
	copy(lines, w.lines)

	return &ExportSnapshot{
		Bitmap:  w.img.Bitmap,
		Natural: w.img.Natural,
		Tags:    w.copyTagsLocked(),
		Lines:   lines,
	}, nil
}

func (w *Workspace) copyTagsLocked() []Tag {
	out := make([]Tag, len(w.tags))
	for i, tag := range w.tags {
		items := make([]catalog.Item, len(tag.Items))
		copy(items, tag.Items)
		out[i] = Tag{ID: tag.ID, Position: tag.Position, Items: items}
	}
	return out
}

func (w *Workspace) indexOfLocked(id string) int {
	for i := range w.tags {
		if w.tags[i].ID == id {
			return i
		}
	}
	return -1
}

func (w *Workspace) resolveItemsLocked(itemIDs []string) ([]catalog.Item, error) {
	if len(itemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag requires at least one item")
	}

	items := make([]catalog.Item, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, ok := w.catalogByID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item not in catalog").
				WithDetails(map[string]any{"item_id": id})
		}
		items = append(items, item)
	}
	return items, nil
}

func (w *Workspace) rebuildCartLocked() {
	tagItems := make([][]catalog.Item, len(w.tags))
	for i, tag := range w.tags {
		tagItems[i] = tag.Items
	}
	w.lines = cart.Rebuild(tagItems)

	// re-clamp paging after the cart changed size
	view := cart.PageView(w.lines, w.currentPage, w.pageSize)
	w.currentPage = view.Page.Number
}
