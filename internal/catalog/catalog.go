package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/jmylchreest/chime/internal/model"
)

// Catalog errors.
var (
	// ErrCatalogUnavailable is returned when the enumerator fails wholesale.
	ErrCatalogUnavailable = errors.New("sound catalog unavailable")
	// ErrEntryUnresolvable marks a single raw entry that could not be mapped.
	// It is never returned by ListAvailableSounds.
	ErrEntryUnresolvable = errors.New("sound entry unresolvable")
)

// RawEntry is one sound as reported by a platform enumerator.
type RawEntry struct {
	RawID   string
	Title   string
	Locator string
	System  bool
}

// Enumerator is the platform sound enumeration capability.
type Enumerator interface {
	// Name returns the enumerator identifier (e.g., "freedesktop", "static").
	Name() string

	// DefaultSoundLocator returns the platform's default notification sound reference.
	DefaultSoundLocator(ctx context.Context) (string, error)

	// Enumerate returns a lazy, finite sequence of raw entries in native order.
	// A non-nil error means the enumerator could not be initialized at all.
	// Errors yielded by the sequence concern a single entry only.
	Enumerate(ctx context.Context) (iter.Seq2[RawEntry, error], error)
}

// Catalog lists available sounds. It holds no state between calls.
type Catalog struct {
	enumerator Enumerator
	limit      int
	logger     *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLimit sets the maximum number of enumerated entries kept after the default entry.
// Values below 1 are ignored.
func WithLimit(limit int) Option {
	return func(c *Catalog) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Catalog backed by the given enumerator.
func New(enumerator Enumerator, opts ...Option) *Catalog {
	c := &Catalog{
		enumerator: enumerator,
		limit:      model.DefaultCatalogLimit,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Limit returns the configured cap on enumerated entries.
func (c *Catalog) Limit() int {
	return c.limit
}

// Source returns the name of the underlying enumerator.
func (c *Catalog) Source() string {
	return c.enumerator.Name()
}

// ListAvailableSounds returns the current sound list, default entry first.
// The result is never empty on success. Entries the enumerator fails to resolve are
// skipped; only a wholesale enumerator failure is reported, as ErrCatalogUnavailable.
func (c *Catalog) ListAvailableSounds(ctx context.Context) ([]model.SoundEntry, error) {
	seq, err := c.enumerator.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, c.enumerator.Name(), err)
	}

	defaultLocator, err := c.enumerator.DefaultSoundLocator(ctx)
	if err != nil {
		c.logger.Debug("default sound locator unavailable", "source", c.enumerator.Name(), "error", err)
		defaultLocator = ""
	}

	entries := make([]model.SoundEntry, 0, c.limit+1)
	entries = append(entries, model.NewSystemDefault(defaultLocator))

	seen := map[string]bool{model.SystemDefaultID: true}
	skipped := 0

	for raw, entryErr := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entryErr != nil {
			skipped++
			c.logger.Debug("skipping sound entry", "source", c.enumerator.Name(), "error", entryErr)
			continue
		}

		entry, err := toEntry(raw)
		if err != nil {
			skipped++
			c.logger.Debug("skipping sound entry", "source", c.enumerator.Name(), "raw_id", raw.RawID, "error", err)
			continue
		}

		if seen[entry.ID] {
			c.logger.Debug("skipping duplicate sound entry", "id", entry.ID)
			continue
		}
		seen[entry.ID] = true

		entries = append(entries, entry)
		if len(entries)-1 >= c.limit {
			break
		}
	}

	c.logger.Debug("listed sounds", "source", c.enumerator.Name(), "count", len(entries), "skipped", skipped)
	return entries, nil
}

// toEntry maps a raw enumerator entry to a SoundEntry.
func toEntry(raw RawEntry) (model.SoundEntry, error) {
	id := strings.TrimSpace(raw.RawID)
	locator := strings.TrimSpace(raw.Locator)

	if id == "" {
		return model.SoundEntry{}, fmt.Errorf("%w: %w", ErrEntryUnresolvable, model.ErrEmptyID)
	}
	if locator == "" {
		return model.SoundEntry{}, fmt.Errorf("%w: %w", ErrEntryUnresolvable, model.ErrEmptyLocator)
	}

	name := strings.TrimSpace(raw.Title)
	if name == "" {
		name = id
	}

	return model.SoundEntry{
		ID:            id,
		DisplayName:   name,
		SourceLocator: locator,
		IsSystemSound: raw.System,
	}, nil
}
