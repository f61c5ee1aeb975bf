// Package input provides platform sound enumerators for the catalog.
package input

import (
	"context"
	"runtime"
	"strings"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/config"
)

// Audio file extensions each enumerator accepts.
var (
	freedesktopExtensions = []string{".oga", ".ogg", ".wav", ".mp3"}
	darwinExtensions      = []string{".aiff", ".aif", ".wav", ".mp3"}
	windowsExtensions     = []string{".wav"}
)

// DetectSource returns the catalog source suited to the running platform.
func DetectSource() string {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return config.SourceFreedesktop
	case "darwin", "windows":
		return config.SourceDirectory
	default:
		return config.SourceStatic
	}
}

// NewEnumerator creates a catalog.Enumerator for the configured source.
// A source of "auto" (or empty) is resolved with DetectSource.
func NewEnumerator(cfg config.CatalogConfig) (catalog.Enumerator, error) {
	source := cfg.Source
	if source == "" || source == config.SourceAuto {
		source = DetectSource()
	}

	var e catalog.Enumerator
	switch source {
	case config.SourceFreedesktop:
		e = NewFreedesktopEnumerator(cfg.Theme, expandAll(cfg.Dirs))
	case config.SourceDirectory:
		e = NewDirectoryEnumerator(expandAll(cfg.Dirs))
	case config.SourceStatic:
		e = NewStaticEnumerator(cfg.StaticSounds())
	default:
		return nil, &AdapterError{
			Source:  source,
			Message: "unknown or unavailable sound source",
		}
	}

	if locator := strings.TrimSpace(cfg.DefaultSound); locator != "" {
		e = &defaultOverride{Enumerator: e, locator: config.ExpandPath(locator)}
	}
	return e, nil
}

// defaultOverride replaces the platform default locator with a configured one.
type defaultOverride struct {
	catalog.Enumerator
	locator string
}

func (d *defaultOverride) DefaultSoundLocator(context.Context) (string, error) {
	return d.locator, nil
}

func expandAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, config.ExpandPath(p))
		}
	}
	return out
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
