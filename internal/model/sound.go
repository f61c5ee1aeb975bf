// Package model defines the core data structures for chime.
package model

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Catalog constants shared by every enumerator and formatter.
const (
	// SystemDefaultID is the id of the synthetic entry that always heads a catalog.
	SystemDefaultID = "system_default"
	// SystemDefaultName is the display name of the synthetic default entry.
	SystemDefaultName = "System Default"
	// DefaultCatalogLimit is the number of enumerated entries kept after the default entry.
	DefaultCatalogLimit = 20
)

// SoundEntry is one selectable notification sound.
// Entries are value snapshots; nothing mutates them after construction.
// The json/yaml field names are part of the wire contract.
type SoundEntry struct {
	ID            string `json:"id" yaml:"id"`
	DisplayName   string `json:"displayName" yaml:"displayName"`
	SourceLocator string `json:"sourceLocator" yaml:"sourceLocator"`
	IsSystemSound bool   `json:"isSystemSound" yaml:"isSystemSound"`
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrEmptyDisplayName = errors.New("displayName cannot be empty")
	ErrEmptyLocator     = errors.New("sourceLocator cannot be empty")
)

// NewSystemDefault builds the synthetic default entry for the given locator.
// An empty locator falls back to the SystemDefaultID alias, which players resolve themselves.
func NewSystemDefault(locator string) SoundEntry {
	if strings.TrimSpace(locator) == "" {
		locator = SystemDefaultID
	}
	return SoundEntry{
		ID:            SystemDefaultID,
		DisplayName:   SystemDefaultName,
		SourceLocator: locator,
		IsSystemSound: true,
	}
}

// Validate checks that the entry has all required fields.
func (e SoundEntry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if e.DisplayName == "" {
		return ErrEmptyDisplayName
	}
	if e.SourceLocator == "" {
		return ErrEmptyLocator
	}
	return nil
}

// IsDefault reports whether this is the synthetic system default entry.
func (e SoundEntry) IsDefault() bool {
	return e.ID == SystemDefaultID
}

// Origin returns "system" or "app" for display purposes.
func (e SoundEntry) Origin() string {
	if e.IsSystemSound {
		return "system"
	}
	return "app"
}

// TitleFromName turns a file stem such as "dialog-warning" or "message_new"
// into a display label ("Dialog Warning", "Message New").
func TitleFromName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
