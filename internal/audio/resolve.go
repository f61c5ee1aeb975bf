package audio

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"runtime"
	"strings"

	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/model"
)

// Audio errors.
var (
	ErrEmptyLocator      = errors.New("empty sound locator")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrUnknownHandle     = errors.New("unknown sound handle")
	ErrNoCommand         = errors.New("no audio command available")
)

// DefaultAliases returns the built-in locator aliases for goos.
func DefaultAliases(goos string) map[string]string {
	switch goos {
	case "darwin":
		return map[string]string{
			model.SystemDefaultID: "/System/Library/Sounds/Glass.aiff",
			"tri-tone":            "/System/Library/Sounds/Glass.aiff",
			"chime":               "/System/Library/Sounds/Ping.aiff",
			"glass":               "/System/Library/Sounds/Glass.aiff",
			"horn":                "/System/Library/Sounds/Sosumi.aiff",
			"bell":                "/System/Library/Sounds/Tink.aiff",
			"electronic":          "/System/Library/Sounds/Funk.aiff",
		}
	case "windows":
		return map[string]string{
			model.SystemDefaultID: `C:\Windows\Media\Windows Notify System Generic.wav`,
			"chime":               `C:\Windows\Media\chimes.wav`,
			"bell":                `C:\Windows\Media\Windows Ding.wav`,
		}
	default:
		const stereo = "/usr/share/sounds/freedesktop/stereo/"
		return map[string]string{
			model.SystemDefaultID: stereo + "message-new-instant.oga",
			"tri-tone":            stereo + "message.oga",
			"chime":               stereo + "complete.oga",
			"glass":               stereo + "window-attention.oga",
			"horn":                stereo + "alarm-clock-elapsed.oga",
			"bell":                stereo + "bell.oga",
			"electronic":          stereo + "service-login.oga",
		}
	}
}

// Resolver maps a locator to a local file path.
type Resolver struct {
	aliases map[string]string
}

// NewResolver creates a resolver from the platform aliases overlaid with configured ones.
func NewResolver(aliases map[string]string) *Resolver {
	merged := DefaultAliases(runtime.GOOS)
	maps.Copy(merged, aliases)
	return &Resolver{aliases: merged}
}

// Resolve returns the file path for locator.
// Aliases are looked up first, then file:// URIs are unwrapped and ~ expanded.
func (r *Resolver) Resolve(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", ErrEmptyLocator
	}

	if target, ok := r.aliases[locator]; ok {
		locator = target
	}

	if strings.HasPrefix(locator, "file://") {
		u, err := url.Parse(locator)
		if err != nil {
			return "", fmt.Errorf("invalid file URI %q: %w", locator, err)
		}
		locator = u.Path
	}

	return config.ExpandPath(locator), nil
}
