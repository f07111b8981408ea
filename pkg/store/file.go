package store

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// AnalysesFile is the file name FileStore keeps inside its directory.
const AnalysesFile = "analyses.json"

// FileStore keeps analyses in a single JSON file, newest first.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by dir/analyses.json.
func NewFileStore(dir string) (s *FileStore, err error) {
	if dir == "" {
		err = errors.New("history directory is required")
		return s, err
	}

	s = &FileStore{
		path: filepath.Join(dir, AnalysesFile),
	}

	return s, err
}

// Path returns the backing file.
func (s *FileStore) Path() (path string) {
	return s.path
}

// Append stores analysis ahead of all existing records.
func (s *FileStore) Append(ctx context.Context, analysis Analysis) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	err = analysis.Validate()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var analyses []Analysis
	analyses, err = s.load()
	if err != nil {
		return err
	}

	for _, a := range analyses {
		if a.ID == analysis.ID {
			err = errors.Wrapf(ErrExists, "analysis %q", analysis.ID)
			return err
		}
	}

	analyses = append([]Analysis{analysis}, analyses...)

	err = writeJSON(s.path, analyses)
	return err
}

// List returns every stored analysis, newest first.
func (s *FileStore) List(ctx context.Context) (analyses []Analysis, err error) {
	err = ctx.Err()
	if err != nil {
		return analyses, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	analyses, err = s.load()
	return analyses, err
}

// Delete removes the analysis with the given id.
func (s *FileStore) Delete(ctx context.Context, id string) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var analyses []Analysis
	analyses, err = s.load()
	if err != nil {
		return err
	}

	kept := make([]Analysis, 0, len(analyses))
	for _, a := range analyses {
		if a.ID != id {
			kept = append(kept, a)
		}
	}

	if len(kept) == len(analyses) {
		err = errors.Wrapf(ErrNotFound, "analysis %q", id)
		return err
	}

	err = writeJSON(s.path, kept)
	return err
}

func (s *FileStore) load() (analyses []Analysis, err error) {
	analyses = make([]Analysis, 0)
	err = readJSON(s.path, &analyses)
	if err != nil {
		err = errors.Wrap(err, "failed to load analyses")
		return analyses, err
	}
	return analyses, err
}
