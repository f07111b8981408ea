package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/nikogura/career-tailor/pkg/repository"
	"github.com/pkg/errors"
)

// PendingFile is the default name of the pending-additions file.
const PendingFile = "pending_positions.json"

// PendingStore holds positions extracted from transcripts until they are
// merged into the repository by hand.
type PendingStore struct {
	path string
	mu   sync.Mutex
}

// NewPendingStore creates a store backed by path.
func NewPendingStore(path string) (s *PendingStore, err error) {
	if path == "" {
		err = errors.New("pending positions path is required")
		return s, err
	}

	s = &PendingStore{path: path}
	return s, err
}

// Path returns the backing file.
func (s *PendingStore) Path() (path string) {
	return s.path
}

// Add validates position and stages it. The position id is made unique
// against staged positions and the reserved ids (typically those already in
// the repository). The stored position is returned.
func (s *PendingStore) Add(ctx context.Context, position repository.Position, reserved []string) (stored repository.Position, err error) {
	err = ctx.Err()
	if err != nil {
		return stored, err
	}

	err = position.Validate()
	if err != nil {
		err = errors.Wrap(err, "extracted position is invalid")
		return stored, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []repository.Position
	pending, err = s.load()
	if err != nil {
		return stored, err
	}

	taken := make(map[string]bool, len(pending)+len(reserved))
	for _, id := range reserved {
		taken[id] = true
	}
	for _, p := range pending {
		taken[p.ID] = true
	}

	stored = position
	stored.ID = uniqueID(position.ID, taken)

	pending = append(pending, stored)
	err = writeJSON(s.path, pending)
	return stored, err
}

// List returns staged positions in the order they were added.
func (s *PendingStore) List(ctx context.Context) (positions []repository.Position, err error) {
	err = ctx.Err()
	if err != nil {
		return positions, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	positions, err = s.load()
	return positions, err
}

// Remove drops a staged position.
func (s *PendingStore) Remove(ctx context.Context, id string) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []repository.Position
	pending, err = s.load()
	if err != nil {
		return err
	}

	kept := make([]repository.Position, 0, len(pending))
	for _, p := range pending {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if len(kept) == len(pending) {
		err = errors.Wrapf(ErrNotFound, "pending position %q", id)
		return err
	}

	err = writeJSON(s.path, kept)
	return err
}

func (s *PendingStore) load() (positions []repository.Position, err error) {
	positions = make([]repository.Position, 0)
	err = readJSON(s.path, &positions)
	if err != nil {
		err = errors.Wrap(err, "failed to load pending positions")
		return positions, err
	}
	return positions, err
}

func uniqueID(id string, taken map[string]bool) (unique string) {
	if id == "" {
		id = "position"
	}

	unique = id
	for taken[unique] {
		unique = id + "-" + uuid.NewString()[:8]
	}
	return unique
}
