package file

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/protokoll/internal/core/domain"
	"github.com/custodia-labs/protokoll/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusSource = (*CorpusStore)(nil)

//go:embed default_corpus.toml
var defaultCorpus []byte

type corpusFile struct {
	Items []domain.CorpusItem `toml:"items"`
}

// CorpusStore reads the knowledge corpus from a TOML file, falling back to
// the built-in corpus when the file does not exist.
type CorpusStore struct {
	path string

	once  sync.Once
	items []domain.CorpusItem
	err   error
	used  string
}

// NewCorpusStore creates a corpus store.
// If path is empty, defaults to ~/.protokoll/corpus.toml.
func NewCorpusStore(path string) (*CorpusStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(dir, "corpus.toml")
	}
	return &CorpusStore{path: path}, nil
}

// Items returns the corpus. The file is read once.
func (s *CorpusStore) Items(_ context.Context) ([]domain.CorpusItem, error) {
	s.once.Do(s.load)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.CorpusItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Path returns the corpus file in use, or "" for the built-in corpus.
func (s *CorpusStore) Path() string {
	s.once.Do(s.load)
	return s.used
}

func (s *CorpusStore) load() {
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = defaultCorpus
	case err != nil:
		s.err = fmt.Errorf("read corpus: %w", err)
		return
	default:
		s.used = s.path
	}

	items, err := ParseCorpus(data)
	if err != nil {
		s.err = err
		return
	}
	s.items = items
}

// ParseCorpus decodes a corpus TOML document.
// Items need a unique, non-empty id and a description.
func ParseCorpus(data []byte) ([]domain.CorpusItem, error) {
	var f corpusFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	seen := make(map[string]bool, len(f.Items))
	for i, item := range f.Items {
		if item.ID == "" || item.Description == "" {
			return nil, fmt.Errorf("%w: corpus item %d needs id and description", domain.ErrInvalidInput, i)
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: duplicate corpus id %q", domain.ErrInvalidInput, item.ID)
		}
		seen[item.ID] = true
	}

	return f.Items, nil
}
