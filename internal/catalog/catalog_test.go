package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jmylchreest/chime/internal/model"
)

// fakeItem is one slot in a fake enumeration: either an entry or a per-entry error.
type fakeItem struct {
	entry RawEntry
	err   error
}

// fakeEnumerator is an in-memory Enumerator.
type fakeEnumerator struct {
	items         []fakeItem
	defaultLoc    string
	defaultErr    error
	initErr       error
	yielded       int
	cursorsOpen   int
	cursorsClosed int
}

func (f *fakeEnumerator) Name() string { return "fake" }

func (f *fakeEnumerator) DefaultSoundLocator(context.Context) (string, error) {
	return f.defaultLoc, f.defaultErr
}

func (f *fakeEnumerator) Enumerate(context.Context) (iter.Seq2[RawEntry, error], error) {
	if f.initErr != nil {
		return nil, f.initErr
	}
	return func(yield func(RawEntry, error) bool) {
		f.cursorsOpen++
		defer func() { f.cursorsClosed++ }()
		for _, item := range f.items {
			f.yielded++
			if !yield(item.entry, item.err) {
				return
			}
		}
	}, nil
}

func validItems(n int) []fakeItem {
	items := make([]fakeItem, n)
	for i := range items {
		id := fmt.Sprintf("sound-%02d", i)
		items[i] = fakeItem{entry: RawEntry{RawID: id, Title: "Sound " + id, Locator: "/sounds/" + id + ".oga", System: true}}
	}
	return items
}

func TestListAvailableSounds_DefaultFirst(t *testing.T) {
	e := &fakeEnumerator{defaultLoc: "/sounds/default.oga", items: validItems(2)}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, model.SystemDefaultID, entries[0].ID)
	assert.Equal(t, "System Default", entries[0].DisplayName)
	assert.Equal(t, "/sounds/default.oga", entries[0].SourceLocator)
	assert.True(t, entries[0].IsSystemSound)

	assert.Equal(t, "sound-00", entries[1].ID)
	assert.Equal(t, "sound-01", entries[2].ID)
}

func TestListAvailableSounds_CapsAtTwenty(t *testing.T) {
	e := &fakeEnumerator{items: validItems(25)}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)

	assert.Len(t, entries, 21)
	assert.Equal(t, "sound-19", entries[20].ID)
	assert.Equal(t, 20, e.yielded, "enumeration should stop once the cap is reached")
	assert.Equal(t, e.cursorsOpen, e.cursorsClosed, "enumerator cursor should be released")
}

func TestListAvailableSounds_SkipsUnresolvableEntries(t *testing.T) {
	items := validItems(3)
	items[1] = fakeItem{err: errors.New("cannot read title")}
	e := &fakeEnumerator{items: items}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 3)
	assert.Equal(t, model.SystemDefaultID, entries[0].ID)
	assert.Equal(t, "sound-00", entries[1].ID)
	assert.Equal(t, "sound-02", entries[2].ID)
}

func TestListAvailableSounds_SkipsEntriesThatFailToMap(t *testing.T) {
	e := &fakeEnumerator{items: []fakeItem{
		{entry: RawEntry{RawID: "", Locator: "/a.oga"}},
		{entry: RawEntry{RawID: "b", Locator: "  "}},
		{entry: RawEntry{RawID: "c", Locator: "/c.oga"}},
	}}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[1].ID)
	assert.Equal(t, "c", entries[1].DisplayName, "empty title falls back to id")
}

func TestListAvailableSounds_Deduplicates(t *testing.T) {
	e := &fakeEnumerator{items: []fakeItem{
		{entry: RawEntry{RawID: "bell", Title: "Bell", Locator: "/a/bell.oga"}},
		{entry: RawEntry{RawID: model.SystemDefaultID, Title: "Shadow", Locator: "/x.oga"}},
		{entry: RawEntry{RawID: "bell", Title: "Bell", Locator: "/b/bell.oga"}},
		{entry: RawEntry{RawID: "glass", Title: "Glass", Locator: "/a/glass.oga"}},
	}}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/a/bell.oga", entries[1].SourceLocator, "first occurrence wins")
	assert.Equal(t, "glass", entries[2].ID)
}

func TestListAvailableSounds_DuplicatesDoNotCountTowardsLimit(t *testing.T) {
	items := append(validItems(2), validItems(3)...)
	e := &fakeEnumerator{items: items}

	entries, err := New(e, WithLimit(3)).ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "sound-02", entries[3].ID)
}

func TestListAvailableSounds_WholesaleFailure(t *testing.T) {
	cause := errors.New("ringtone provider missing")
	e := &fakeEnumerator{initErr: cause}

	entries, err := New(e).ListAvailableSounds(context.Background())
	assert.Nil(t, entries)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestListAvailableSounds_EmptyEnumerator(t *testing.T) {
	e := &fakeEnumerator{}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.SystemDefaultID, entries[0].ID)
}

func TestListAvailableSounds_DefaultLocatorError(t *testing.T) {
	e := &fakeEnumerator{defaultErr: errors.New("no default"), items: validItems(1)}

	entries, err := New(e).ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.SystemDefaultID, entries[0].SourceLocator)
}

func TestListAvailableSounds_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &fakeEnumerator{items: validItems(5)}
	_, err := New(e).ListAvailableSounds(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, e.cursorsOpen, e.cursorsClosed)
}

func TestListAvailableSounds_NoCachingAcrossCalls(t *testing.T) {
	e := &fakeEnumerator{items: validItems(1)}
	c := New(e)

	first, err := c.ListAvailableSounds(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)

	e.items = validItems(4)
	second, err := c.ListAvailableSounds(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 5)
}

func TestWithLimit_IgnoresNonPositive(t *testing.T) {
	c := New(&fakeEnumerator{}, WithLimit(0))
	assert.Equal(t, model.DefaultCatalogLimit, c.Limit())

	c = New(&fakeEnumerator{}, WithLimit(5))
	assert.Equal(t, 5, c.Limit())
	assert.Equal(t, "fake", c.Source())
}

func TestListAvailableSounds_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(t, "n")
		items := make([]fakeItem, n)
		var want []string
		for i := range items {
			id := fmt.Sprintf("s%d", i)
			if rapid.Bool().Draw(t, fmt.Sprintf("fail-%d", i)) {
				items[i] = fakeItem{err: ErrEntryUnresolvable}
				continue
			}
			items[i] = fakeItem{entry: RawEntry{RawID: id, Title: id, Locator: id + ".wav"}}
			want = append(want, id)
		}
		if len(want) > model.DefaultCatalogLimit {
			want = want[:model.DefaultCatalogLimit]
		}

		e := &fakeEnumerator{items: items}
		entries, err := New(e).ListAvailableSounds(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(entries) < 1 || len(entries) > model.DefaultCatalogLimit+1 {
			t.Fatalf("catalog length %d out of bounds", len(entries))
		}
		if entries[0].ID != model.SystemDefaultID {
			t.Fatalf("first entry is %q", entries[0].ID)
		}
		if len(entries)-1 != len(want) {
			t.Fatalf("got %d enumerated entries, want %d", len(entries)-1, len(want))
		}
		for i, id := range want {
			if entries[i+1].ID != id {
				t.Fatalf("entry %d is %q, want %q", i+1, entries[i+1].ID, id)
			}
		}
		if e.cursorsOpen != e.cursorsClosed {
			t.Fatalf("cursor left open")
		}
	})
}
