package input

import (
	"context"
	"iter"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/model"
)

// StaticEnumerator serves a fixed, configured list of sounds.
// Locators are usually aliases that the player resolves.
type StaticEnumerator struct {
	sounds []config.StaticSound
}

// NewStaticEnumerator creates an enumerator over sounds, kept in the given order.
func NewStaticEnumerator(sounds []config.StaticSound) *StaticEnumerator {
	return &StaticEnumerator{sounds: append([]config.StaticSound(nil), sounds...)}
}

// Name returns the enumerator identifier.
func (e *StaticEnumerator) Name() string {
	return "static"
}

// DefaultSoundLocator always returns the system_default alias.
func (e *StaticEnumerator) DefaultSoundLocator(context.Context) (string, error) {
	return model.SystemDefaultID, nil
}

// Enumerate never fails.
func (e *StaticEnumerator) Enumerate(context.Context) (iter.Seq2[catalog.RawEntry, error], error) {
	return func(yield func(catalog.RawEntry, error) bool) {
		for _, s := range e.sounds {
			raw := catalog.RawEntry{
				RawID:   s.ID,
				Title:   s.Name,
				Locator: s.Locator,
				System:  s.System,
			}
			if !yield(raw, nil) {
				return
			}
		}
	}, nil
}
