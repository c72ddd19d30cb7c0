package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
)

const ext = ".json"

// Store reads themes from a directory. Nothing is cached between calls.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) Load(name string) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return Theme{}, fmt.Errorf("%w: %q", model.ErrThemeNotFound, name)
	}
	path := filepath.Join(s.dir, name+ext)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Theme{}, fmt.Errorf("%w: %q in %s", model.ErrThemeNotFound, name, s.dir)
		}
		return Theme{}, fmt.Errorf("read theme %s: %w", path, err)
	}
	return Parse(name, data)
}

// List returns theme names in lexical order. A missing directory yields none.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list themes in %s: %w", s.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(out)
	return out, nil
}

type Summary struct {
	ID          string
	Name        string
	Description string
}

// Describe lists every theme with its display name; unreadable files still appear
// under their stem.
func (s *Store) Describe() ([]Summary, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(names))
	for _, n := range names {
		sum := Summary{ID: n, Name: n}
		if t, err := s.Load(n); err == nil {
			sum.Name = t.DisplayName()
			sum.Description = t.Description
		}
		out = append(out, sum)
	}
	return out, nil
}
