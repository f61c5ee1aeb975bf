package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/chime/internal/model"
)

// JSONFormatter formats sound entries as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes entries as a JSON array. An empty list is written as [].
func (f *JSONFormatter) Format(w io.Writer, sounds []model.SoundEntry) error {
	if sounds == nil {
		sounds = []model.SoundEntry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sounds)
}

// FormatSingle writes a single value as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
