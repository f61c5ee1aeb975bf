package input

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/model"
)

// errNoSearchDirs is returned when none of an enumerator's directories exist.
var errNoSearchDirs = errors.New("no sound directories found")

// searchDir is one directory scanned for sound files.
type searchDir struct {
	path   string
	system bool
}

// scanner walks a list of directories in order, yielding one entry per sound file.
// Files inside a directory are visited in name order.
type scanner struct {
	dirs       []searchDir
	extensions []string
}

// existing returns the search directories that exist, or errNoSearchDirs.
func (s *scanner) existing() ([]searchDir, error) {
	var found []searchDir
	for _, d := range s.dirs {
		if info, err := os.Stat(d.path); err == nil && info.IsDir() {
			found = append(found, d)
		}
	}
	if len(found) == 0 {
		paths := make([]string, 0, len(s.dirs))
		for _, d := range s.dirs {
			paths = append(paths, d.path)
		}
		return nil, fmt.Errorf("%w (searched %s)", errNoSearchDirs, strings.Join(paths, ", "))
	}
	return found, nil
}

// enumerate checks the directories up front and returns a lazy sequence over their files.
func (s *scanner) enumerate(ctx context.Context) (iter.Seq2[catalog.RawEntry, error], error) {
	dirs, err := s.existing()
	if err != nil {
		return nil, err
	}

	return func(yield func(catalog.RawEntry, error) bool) {
		for _, dir := range dirs {
			if ctx.Err() != nil {
				return
			}

			entries, err := os.ReadDir(dir.path)
			if err != nil {
				if !yield(catalog.RawEntry{}, fmt.Errorf("read %s: %w", dir.path, err)) {
					return
				}
				continue
			}

			for _, de := range entries {
				if !s.accepts(de.Name()) {
					continue
				}

				full := filepath.Join(dir.path, de.Name())
				info, err := os.Stat(full)
				if err != nil {
					if !yield(catalog.RawEntry{}, fmt.Errorf("stat %s: %w", full, err)) {
						return
					}
					continue
				}
				if info.IsDir() {
					continue
				}

				stem := strings.TrimSuffix(de.Name(), filepath.Ext(de.Name()))
				raw := catalog.RawEntry{
					RawID:   stem,
					Title:   model.TitleFromName(stem),
					Locator: full,
					System:  dir.system,
				}
				if !yield(raw, nil) {
					return
				}
			}
		}
	}, nil
}

// find returns the first existing file named name+ext across the directories.
func (s *scanner) find(names ...string) (string, bool) {
	for _, d := range s.dirs {
		for _, name := range names {
			candidates := []string{name}
			if filepath.Ext(name) == "" {
				candidates = candidates[:0]
				for _, ext := range s.extensions {
					candidates = append(candidates, name+ext)
				}
			}
			for _, c := range candidates {
				full := filepath.Join(d.path, c)
				if info, err := os.Stat(full); err == nil && !info.IsDir() {
					return full, true
				}
			}
		}
	}
	return "", false
}

func (s *scanner) accepts(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(s.extensions, strings.ToLower(filepath.Ext(name)))
}
