package catalog

import (
	"sort"
	"strings"

	"github.com/jmylchreest/chime/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCatalog SortField = "catalog" // Enumeration order
	SortByName    SortField = "name"
	SortByID      SortField = "id"
	SortByOrigin  SortField = "origin"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns the catalog's own order.
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByCatalog,
		Order: SortAsc,
	}
}

// Sort sorts a catalog snapshot in place for display.
// The system default entry stays first regardless of field and order.
func Sort(entries []model.SoundEntry, opts SortOptions) {
	if len(entries) == 0 || opts.Field == SortByCatalog || opts.Field == "" {
		return
	}

	rest := entries
	if entries[0].IsDefault() {
		rest = entries[1:]
	}

	sort.SliceStable(rest, func(i, j int) bool {
		if opts.Order == SortDesc {
			i, j = j, i
		}

		switch opts.Field {
		case SortByName:
			return strings.ToLower(rest[i].DisplayName) < strings.ToLower(rest[j].DisplayName)
		case SortByID:
			return rest[i].ID < rest[j].ID
		case SortByOrigin:
			// system before app
			return rest[i].IsSystemSound && !rest[j].IsSystemSound
		default:
			return false
		}
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "title", "n":
		return SortByName
	case "id", "i":
		return SortByID
	case "origin", "o":
		return SortByOrigin
	default:
		return SortByCatalog
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}

// FilterOptions specifies criteria for filtering a catalog snapshot.
type FilterOptions struct {
	Origin string // "system" or "app" (empty=any)
	Search string // Case-insensitive substring of id or display name
}

// Filter returns the entries matching opts. The system default entry is kept
// when it matches the search, regardless of origin.
func Filter(entries []model.SoundEntry, opts FilterOptions) []model.SoundEntry {
	result := make([]model.SoundEntry, 0, len(entries))

	for _, e := range Search(entries, opts.Search) {
		if opts.Origin != "" && !e.IsDefault() && e.Origin() != opts.Origin {
			continue
		}
		result = append(result, e)
	}

	return result
}
