package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/jmylchreest/chime/internal/model"
)

// PlainFormatter formats sound entries as tab-separated text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	// Parse custom template if provided
	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs(opts)).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes one line per entry: [index] id, name, origin, [size], locator.
func (f *PlainFormatter) Format(w io.Writer, sounds []model.SoundEntry) error {
	for i, s := range sounds {
		if err := f.formatSound(w, i+1, s); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatSound(w io.Writer, index int, s model.SoundEntry) error {
	if f.template != nil {
		if err := f.template.Execute(w, templateData{Index: index, Sound: s}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var fields []string
	if f.opts.ShowIndex {
		fields = append(fields, fmt.Sprintf("%d", index))
	}
	fields = append(fields, s.ID, s.DisplayName, s.Origin())
	if f.opts.ShowSize {
		fields = append(fields, f.opts.fileSize(s.SourceLocator))
	}
	fields = append(fields, s.SourceLocator)

	_, err := fmt.Fprintln(w, strings.Join(fields, "\t"))
	return err
}
