// Package output provides output formatters for sound catalogs.
package output

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/chime/internal/model"
)

// Formatter formats sound entries for output.
type Formatter interface {
	// Format writes formatted entries to the writer.
	Format(w io.Writer, sounds []model.SoundEntry) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// FormatTypes returns every supported format name.
func FormatTypes() []string {
	return []string{string(FormatPlain), string(FormatJSON), string(FormatYAML), string(FormatDmenu), string(FormatIDs)}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // Custom template for dmenu/plain format
	ShowIndex bool   // Show 1-based index prefix
	ShowSize  bool   // Show file size of the resolved locator
	Separator string // Field separator for dmenu format

	// Resolve maps a locator to a file path for ShowSize (aliases, file:// URIs).
	// Locators are used as paths when nil.
	Resolve func(locator string) (string, error)
}

// DefaultFormatterOptions returns sensible defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex: true,
		Separator: " | ",
	}
}

// fileSize returns the human-readable size of the file behind locator, or "-".
func (o FormatterOptions) fileSize(locator string) string {
	path := locator
	if o.Resolve != nil {
		resolved, err := o.Resolve(locator)
		if err != nil {
			return "-"
		}
		path = resolved
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "-"
	}
	return humanize.Bytes(uint64(info.Size()))
}
