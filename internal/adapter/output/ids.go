package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/chime/internal/model"
)

// IDsFormatter outputs just the sound ids, one per line.
// Useful for piping to other commands (e.g., chime play).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes sound ids to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, sounds []model.SoundEntry) error {
	for _, s := range sounds {
		if _, err := fmt.Fprintln(w, s.ID); err != nil {
			return err
		}
	}
	return nil
}
