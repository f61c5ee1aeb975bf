package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/chime/internal/model"
)

func sortFixture() []model.SoundEntry {
	return []model.SoundEntry{
		model.NewSystemDefault(""),
		{ID: "ding", DisplayName: "Ding", SourceLocator: "/a/ding.wav"},
		{ID: "bell", DisplayName: "bell", SourceLocator: "/s/bell.oga", IsSystemSound: true},
		{ID: "chime", DisplayName: "Chime", SourceLocator: "/a/chime.wav"},
	}
}

func ids(entries []model.SoundEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestSort(t *testing.T) {
	tests := []struct {
		name string
		opts SortOptions
		want []string
	}{
		{"catalog order", DefaultSortOptions(), []string{model.SystemDefaultID, "ding", "bell", "chime"}},
		{"name asc", SortOptions{Field: SortByName, Order: SortAsc}, []string{model.SystemDefaultID, "bell", "chime", "ding"}},
		{"name desc", SortOptions{Field: SortByName, Order: SortDesc}, []string{model.SystemDefaultID, "ding", "chime", "bell"}},
		{"id asc", SortOptions{Field: SortByID, Order: SortAsc}, []string{model.SystemDefaultID, "bell", "chime", "ding"}},
		{"origin", SortOptions{Field: SortByOrigin, Order: SortAsc}, []string{model.SystemDefaultID, "bell", "ding", "chime"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := sortFixture()
			Sort(entries, tt.opts)
			assert.Equal(t, tt.want, ids(entries))
		})
	}
}

func TestSort_Empty(t *testing.T) {
	var entries []model.SoundEntry
	Sort(entries, SortOptions{Field: SortByName})
	assert.Len(t, entries, 0)
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortByName, ParseSortField(" Name "))
	assert.Equal(t, SortByID, ParseSortField("id"))
	assert.Equal(t, SortByOrigin, ParseSortField("o"))
	assert.Equal(t, SortByCatalog, ParseSortField("bogus"))

	assert.Equal(t, SortDesc, ParseSortOrder("descending"))
	assert.Equal(t, SortAsc, ParseSortOrder(""))
}

func TestFilter(t *testing.T) {
	entries := sortFixture()

	assert.Equal(t, []string{model.SystemDefaultID, "ding", "bell", "chime"}, ids(Filter(entries, FilterOptions{})))
	assert.Equal(t, []string{model.SystemDefaultID, "bell"}, ids(Filter(entries, FilterOptions{Origin: "system"})))
	assert.Equal(t, []string{model.SystemDefaultID, "ding", "chime"}, ids(Filter(entries, FilterOptions{Origin: "app"})))
	assert.Equal(t, []string{"chime"}, ids(Filter(entries, FilterOptions{Search: "CHI"})))
	assert.Empty(t, Filter(entries, FilterOptions{Search: "nothing"}))
}
