package workspace

import (
	"sync"

	"github.com/google/uuid"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
)

// Store keeps the live workspaces in process memory, keyed by workspace id.
// A user sees only their own workspaces.
type Store struct {
	mu         sync.RWMutex
	workspaces map[uuid.UUID]*Workspace
}

func NewStore() *Store {
	return &Store{workspaces: make(map[uuid.UUID]*Workspace)}
}

// Put registers a workspace.
func (s *Store) Put(w *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
}

// Get returns the workspace if it exists and belongs to the user.
func (s *Store) Get(id, userID uuid.UUID) (*Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workspaces[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workspace not found")
	}
	if w.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "workspace belongs to another user")
	}
	return w, nil
}

// Delete discards a workspace. Missing ids are not an error.
func (s *Store) Delete(id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workspaces[id]
	if !ok {
		return nil
	}
	if w.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "workspace belongs to another user")
	}
	delete(s.workspaces, id)
	return nil
}

// ListByUser returns the user's workspaces in no particular order.
func (s *Store) ListByUser(userID uuid.UUID) []*Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Workspace, 0)
	for _, w := range s.workspaces {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out
}
