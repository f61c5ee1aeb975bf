package input

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/model"
)

// DirectoryEnumerator lists sound files from the platform's system sound
// directory followed by any configured directories.
type DirectoryEnumerator struct {
	defaults []string
	scan     scanner
}

// NewDirectoryEnumerator creates an enumerator for the running platform.
func NewDirectoryEnumerator(extraDirs []string) *DirectoryEnumerator {
	dirs, exts, defaults := platformSoundDirs(runtime.GOOS)
	return newDirectoryEnumerator(dirs, extraDirs, exts, defaults)
}

func newDirectoryEnumerator(system, extra, exts, defaults []string) *DirectoryEnumerator {
	var dirs []searchDir
	for _, d := range system {
		dirs = append(dirs, searchDir{path: d, system: true})
	}
	for _, d := range extra {
		dirs = append(dirs, searchDir{path: d})
	}
	return &DirectoryEnumerator{
		defaults: defaults,
		scan:     scanner{dirs: dirs, extensions: exts},
	}
}

// Name returns the enumerator identifier.
func (e *DirectoryEnumerator) Name() string {
	return "directory"
}

// DefaultSoundLocator returns the platform's default alert file, or the system_default alias.
func (e *DirectoryEnumerator) DefaultSoundLocator(context.Context) (string, error) {
	if path, ok := e.scan.find(e.defaults...); ok {
		return path, nil
	}
	return model.SystemDefaultID, nil
}

// Enumerate returns the sound files. It fails only when no directory exists.
func (e *DirectoryEnumerator) Enumerate(ctx context.Context) (iter.Seq2[catalog.RawEntry, error], error) {
	return e.scan.enumerate(ctx)
}

// platformSoundDirs returns the system sound directories, accepted extensions
// and default alert file names for goos.
func platformSoundDirs(goos string) (dirs, exts, defaults []string) {
	switch goos {
	case "darwin":
		dirs = []string{"/System/Library/Sounds"}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, "Library", "Sounds"))
		}
		return dirs, darwinExtensions, []string{"Glass", "Ping"}
	case "windows":
		root := os.Getenv("SYSTEMROOT")
		if root == "" {
			root = `C:\Windows`
		}
		return []string{filepath.Join(root, "Media")}, windowsExtensions,
			[]string{"Windows Notify System Generic", "Windows Notify"}
	default:
		return []string{"/usr/share/sounds"}, freedesktopExtensions, nil
	}
}
