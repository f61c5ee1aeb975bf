package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/chime/internal/model"
)

// DmenuFormatter formats sound entries for dmenu/rofi/fuzzel.
// The index is the first field so the selection can be passed back to chime play.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	f := &DmenuFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("dmenu").Funcs(templateFuncs(opts)).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes entries in dmenu format (one per line).
func (f *DmenuFormatter) Format(w io.Writer, sounds []model.SoundEntry) error {
	for i, s := range sounds {
		if _, err := fmt.Fprintln(w, f.formatLine(i+1, s)); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single entry line.
func (f *DmenuFormatter) formatLine(index int, s model.SoundEntry) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, templateData{Index: index, Sound: s}); err == nil {
			return buf.String()
		}
	}

	// Default format: index | name | origin [| size]
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	var parts []string
	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", index))
	}
	parts = append(parts, s.DisplayName, s.Origin())
	if f.opts.ShowSize {
		parts = append(parts, f.opts.fileSize(s.SourceLocator))
	}

	return strings.Join(parts, sep)
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	Sound model.SoundEntry
}

// templateFuncs returns template helper functions.
func templateFuncs(opts FormatterOptions) template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 || len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"size": opts.fileSize,
		"originIcon": func(s model.SoundEntry) string {
			switch {
			case s.IsDefault():
				return "*"
			case s.IsSystemSound:
				return "S"
			default:
				return "A"
			}
		},
	}
}
