package catalog

import (
	"strconv"
	"strings"

	"github.com/jmylchreest/chime/internal/model"
)

// LookupByID finds an entry by its id.
// Returns nil if not found.
func LookupByID(entries []model.SoundEntry, id string) *model.SoundEntry {
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

// LookupByIndex finds an entry by its index (1-based for user-friendliness).
// Returns nil if index is out of bounds.
func LookupByIndex(entries []model.SoundEntry, index int) *model.SoundEntry {
	idx := index - 1
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	return &entries[idx]
}

// Lookup resolves a user-supplied key against a catalog snapshot.
// It tries, in order: exact id, exact locator, case-insensitive display name,
// and finally a 1-based index.
func Lookup(entries []model.SoundEntry, key string) (model.SoundEntry, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.SoundEntry{}, false
	}

	if e := LookupByID(entries, key); e != nil {
		return *e, true
	}

	for _, e := range entries {
		if e.SourceLocator == key {
			return e, true
		}
	}

	for _, e := range entries {
		if strings.EqualFold(e.DisplayName, key) {
			return e, true
		}
	}

	if idx, err := strconv.Atoi(key); err == nil {
		if e := LookupByIndex(entries, idx); e != nil {
			return *e, true
		}
	}

	return model.SoundEntry{}, false
}

// Search returns the entries whose id or display name contains term.
// Case-insensitive substring match.
func Search(entries []model.SoundEntry, term string) []model.SoundEntry {
	if term == "" {
		return entries
	}

	term = strings.ToLower(term)
	var result []model.SoundEntry

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.DisplayName), term) ||
			strings.Contains(strings.ToLower(e.ID), term) {
			result = append(result, e)
		}
	}

	return result
}
