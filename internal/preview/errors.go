package preview

import (
	"errors"

	"github.com/jmylchreest/chime/internal/catalog"
)

// Preview errors.
var (
	// ErrInvalidLocator is returned when StartPreview receives an empty locator.
	ErrInvalidLocator = errors.New("invalid locator")
	// ErrLoadFailed is returned when the player cannot resolve, decode or start a source.
	ErrLoadFailed = errors.New("load failed")
	// ErrStopFailed wraps player stop errors. It is logged, never returned.
	ErrStopFailed = errors.New("stop failed")
	// ErrClosed is returned by StartPreview after Close.
	ErrClosed = errors.New("preview controller closed")
)

// Error kinds exposed across the process boundary.
const (
	KindInvalidLocator     = "InvalidLocator"
	KindLoadFailed         = "LoadFailed"
	KindCatalogUnavailable = "CatalogUnavailable"
	KindClosed             = "Closed"
	KindFailed             = "Failed"
)

// ErrorKind maps an error to its boundary error kind.
// Returns an empty string for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidLocator):
		return KindInvalidLocator
	case errors.Is(err, ErrLoadFailed):
		return KindLoadFailed
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return KindCatalogUnavailable
	case errors.Is(err, ErrClosed):
		return KindClosed
	default:
		return KindFailed
	}
}

// ErrorForKind returns the sentinel error for a boundary error kind.
// Unknown kinds map to nil.
func ErrorForKind(kind string) error {
	switch kind {
	case KindInvalidLocator:
		return ErrInvalidLocator
	case KindLoadFailed:
		return ErrLoadFailed
	case KindCatalogUnavailable:
		return catalog.ErrCatalogUnavailable
	case KindClosed:
		return ErrClosed
	default:
		return nil
	}
}
