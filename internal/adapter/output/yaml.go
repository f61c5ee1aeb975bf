package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/chime/internal/model"
)

// YAMLFormatter formats sound entries as a YAML sequence.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// Format writes entries as YAML.
func (f *YAMLFormatter) Format(w io.Writer, sounds []model.SoundEntry) error {
	if sounds == nil {
		sounds = []model.SoundEntry{}
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(sounds); err != nil {
		return err
	}
	return encoder.Close()
}
