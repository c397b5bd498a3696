// Package selection models the dropdown state machine: which tag (if any)
// is being edited, the in-progress item selection, and the search filter.
// The pending set lives only while the dropdown is open.
package selection

import (
	"strings"

	"github.com/wirasakti/partmap/internal/catalog"
	"github.com/wirasakti/partmap/internal/geometry"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
)

type State string

const (
	StateClosed State = "closed"
	StateCreate State = "create"
	StateEdit   State = "edit"
)

// Mode distinguishes what a commit should do to the tag store.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// Commit carries the outcome of a confirmed selection.
type Commit struct {
	Mode     Mode
	TagID    string
	Position geometry.Fraction
	ItemIDs  []string
}

// Controller tracks one workspace's dropdown session.
type Controller struct {
	state     State
	position  geometry.Fraction
	editTagID string
	pending   []string
	query     string
}

func NewController() *Controller {
	return &Controller{state: StateClosed}
}

func (c *Controller) State() State {
	return c.state
}

// EditingTagID returns the tag under edit, or "" outside edit mode.
func (c *Controller) EditingTagID() string {
	return c.editTagID
}

func (c *Controller) Query() string {
	return c.query
}

// Pending returns a copy of the selected item ids in toggle order.
func (c *Controller) Pending() []string {
	out := make([]string, len(c.pending))
	copy(out, c.pending)
	return out
}

// OpenCreate starts a fresh selection for a pin at the clicked position.
func (c *Controller) OpenCreate(position geometry.Fraction) {
	c.state = StateCreate
	c.position = position
	c.editTagID = ""
	c.pending = nil
	c.query = ""
}

// OpenEdit starts an edit session pre-seeded with the tag's current items.
func (c *Controller) OpenEdit(tagID string, currentItems []string) {
	c.state = StateEdit
	c.editTagID = tagID
	c.pending = make([]string, len(currentItems))
	copy(c.pending, currentItems)
	c.query = ""
}

// Toggle flips an item in or out of the pending set and reports whether it
// is selected afterwards.
func (c *Controller) Toggle(itemID string) bool {
	if c.state == StateClosed {
		return false
	}
	for i, id := range c.pending {
		if id == itemID {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return false
		}
	}
	c.pending = append(c.pending, itemID)
	return true
}

func (c *Controller) SetQuery(query string) {
	if c.state == StateClosed {
		return
	}
	c.query = query
}

// CanCommit reports whether confirm is currently allowed.
func (c *Controller) CanCommit() bool {
	return c.state != StateClosed && len(c.pending) > 0
}

// CommitSelection closes the dropdown and returns what the tag store should
// apply. Committing an empty selection is rejected and leaves the dropdown
// open.
func (c *Controller) CommitSelection() (Commit, error) {
	if c.state == StateClosed {
		return Commit{}, pkgerrors.New(pkgerrors.CodeValidation, "no selection in progress")
	}
	if len(c.pending) == 0 {
		return Commit{}, pkgerrors.New(pkgerrors.CodeValidation, "select at least one item")
	}

	out := Commit{
		Position: c.position,
		ItemIDs:  c.Pending(),
	}
	if c.state == StateEdit {
		out.Mode = ModeUpdate
		out.TagID = c.editTagID
	} else {
		out.Mode = ModeCreate
	}

	c.reset()
	return out, nil
}

// Cancel closes the dropdown and discards the pending selection.
func (c *Controller) Cancel() {
	c.reset()
}

// ClearIfEditing drops an in-flight edit session when its tag is deleted,
// so the dropdown never references a dead tag.
func (c *Controller) ClearIfEditing(tagID string) {
	if c.state == StateEdit && c.editTagID == tagID {
		c.reset()
	}
}

func (c *Controller) reset() {
	c.state = StateClosed
	c.position = geometry.Fraction{}
	c.editTagID = ""
	c.pending = nil
	c.query = ""
}

// Filter returns the items whose display fields contain the query,
// case-insensitively, with OR semantics across fields. An empty query
// matches everything.
func Filter(items []catalog.Item, query string) []catalog.Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]catalog.Item, len(items))
		copy(out, items)
		return out
	}

	matched := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		for _, field := range item.DisplayFields() {
			if strings.Contains(strings.ToLower(field), query) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}
