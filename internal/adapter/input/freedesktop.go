package input

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/model"
)

// fallbackTheme is the theme every XDG sound theme inherits from.
const fallbackTheme = "freedesktop"

// defaultEventSounds are the event names tried, in order, for the default sound.
var defaultEventSounds = []string{"message-new-instant", "message", "bell"}

// FreedesktopEnumerator lists sounds installed per the XDG sound theme layout
// (sounds/<theme>/stereo below each XDG data directory).
type FreedesktopEnumerator struct {
	theme string
	scan  scanner
}

// NewFreedesktopEnumerator creates an enumerator for the given theme.
// XDG_DATA_HOME and XDG_DATA_DIRS are read once, here.
// Extra directories are scanned after the theme directories and are not system sounds.
func NewFreedesktopEnumerator(theme string, extraDirs []string) *FreedesktopEnumerator {
	if theme == "" {
		theme = fallbackTheme
	}

	themes := []string{theme}
	if theme != fallbackTheme {
		themes = append(themes, fallbackTheme)
	}

	var dirs []searchDir
	for _, t := range themes {
		for _, base := range xdgDataDirs() {
			dirs = append(dirs, searchDir{path: filepath.Join(base, "sounds", t, "stereo"), system: true})
		}
	}
	for _, d := range extraDirs {
		dirs = append(dirs, searchDir{path: d})
	}

	return &FreedesktopEnumerator{
		theme: theme,
		scan:  scanner{dirs: dirs, extensions: freedesktopExtensions},
	}
}

// Name returns the enumerator identifier.
func (e *FreedesktopEnumerator) Name() string {
	return "freedesktop"
}

// Theme returns the configured sound theme.
func (e *FreedesktopEnumerator) Theme() string {
	return e.theme
}

// DefaultSoundLocator returns the theme's message sound, or the system_default alias.
func (e *FreedesktopEnumerator) DefaultSoundLocator(context.Context) (string, error) {
	if path, ok := e.scan.find(defaultEventSounds...); ok {
		return path, nil
	}
	return model.SystemDefaultID, nil
}

// Enumerate returns the theme's sound files. It fails only when no sound directory exists.
func (e *FreedesktopEnumerator) Enumerate(ctx context.Context) (iter.Seq2[catalog.RawEntry, error], error) {
	return e.scan.enumerate(ctx)
}

// xdgDataDirs returns $XDG_DATA_HOME followed by $XDG_DATA_DIRS, with the
// XDG Base Directory defaults for unset variables.
func xdgDataDirs() []string {
	var dirs []string

	home := os.Getenv("XDG_DATA_HOME")
	if home == "" {
		if userHome, err := os.UserHomeDir(); err == nil {
			home = filepath.Join(userHome, ".local", "share")
		}
	}
	if home != "" {
		dirs = append(dirs, home)
	}

	system := os.Getenv("XDG_DATA_DIRS")
	if system == "" {
		system = "/usr/local/share:/usr/share"
	}
	for _, d := range strings.Split(system, ":") {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
