package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore keeps the alert state mapping in a single JSON document on disk.
// The document is replaced wholesale on every save; a half-written file can
// never shadow the previous run's state.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore builds a file-backed store rooted at path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "state_store").Logger(),
	}
}

// Load reads the state document. An absent or malformed file degrades to an
// empty mapping so a corrupt record never blocks price checking.
func (f *FileStore) Load(ctx context.Context) (Mapping, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn().Err(err).Str("path", f.path).Msg("state file unreadable, starting from empty state")
		}
		return Mapping{}, nil
	}

	var mapping Mapping
	if err := json.Unmarshal(raw, &mapping); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("state file malformed, starting from empty state")
		return Mapping{}, nil
	}
	if mapping == nil {
		mapping = Mapping{}
	}
	return mapping, nil
}

// Save writes the full mapping atomically via a temp file rename.
func (f *FileStore) Save(ctx context.Context, m Mapping) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
