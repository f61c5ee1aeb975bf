package dbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

const (
	// DBusInterface is the chime interface name.
	DBusInterface = "io.github.jmylchreest.Chime"
	// DBusPath is the chime object path.
	DBusPath = dbus.ObjectPath("/io/github/jmylchreest/Chime")
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.Chime"
	// ErrorPrefix prefixes every D-Bus error name returned by the service.
	ErrorPrefix = DBusInterface + ".Error."
)

// WireSound is a sound entry as marshaled on the bus: (sssb).
type WireSound struct {
	ID            string
	DisplayName   string
	SourceLocator string
	IsSystemSound bool
}

// ToWire converts catalog entries to their bus form.
func ToWire(sounds []model.SoundEntry) []WireSound {
	wire := make([]WireSound, 0, len(sounds))
	for _, s := range sounds {
		wire = append(wire, WireSound{
			ID:            s.ID,
			DisplayName:   s.DisplayName,
			SourceLocator: s.SourceLocator,
			IsSystemSound: s.IsSystemSound,
		})
	}
	return wire
}

// FromWire converts bus entries back to catalog entries.
func FromWire(wire []WireSound) []model.SoundEntry {
	sounds := make([]model.SoundEntry, 0, len(wire))
	for _, w := range wire {
		sounds = append(sounds, model.SoundEntry{
			ID:            w.ID,
			DisplayName:   w.DisplayName,
			SourceLocator: w.SourceLocator,
			IsSystemSound: w.IsSystemSound,
		})
	}
	return sounds
}

// StatusToWire flattens a controller status to (state, source, session).
func StatusToWire(st preview.Status) (string, string, string) {
	return st.State.String(), st.Source, st.SessionID
}

// StatusFromWire rebuilds a controller status from its bus form.
// StartedAt is not carried over the bus.
func StatusFromWire(state, source, session string) (preview.Status, error) {
	s, err := preview.ParseState(state)
	if err != nil {
		return preview.Status{}, err
	}
	return preview.Status{State: s, Source: source, SessionID: session}, nil
}

// ErrorName returns the D-Bus error name for a boundary error kind.
func ErrorName(kind string) string {
	if kind == "" {
		kind = preview.KindFailed
	}
	return ErrorPrefix + kind
}

// ToDBusError maps a Go error to a named D-Bus error. Returns nil for nil.
func ToDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	return dbus.NewError(ErrorName(preview.ErrorKind(err)), []any{err.Error()})
}

// FromDBusError maps a D-Bus error reply back to the typed Go errors, so callers
// can use errors.Is with the preview and catalog sentinels.
// Errors from other services or the bus itself are returned unchanged.
func FromDBusError(err error) error {
	if err == nil {
		return nil
	}

	var dbusErr dbus.Error
	switch e := err.(type) {
	case dbus.Error:
		dbusErr = e
	case *dbus.Error:
		dbusErr = *e
	default:
		if !errors.As(err, &dbusErr) {
			return err
		}
	}

	kind, ok := strings.CutPrefix(dbusErr.Name, ErrorPrefix)
	if !ok {
		return err
	}

	msg := kind
	if len(dbusErr.Body) > 0 {
		if s, ok := dbusErr.Body[0].(string); ok && s != "" {
			msg = s
		}
	}

	if sentinel := preview.ErrorForKind(kind); sentinel != nil {
		if strings.HasPrefix(msg, sentinel.Error()) {
			msg = strings.TrimPrefix(strings.TrimPrefix(msg, sentinel.Error()), ": ")
		}
		if msg == "" {
			return sentinel
		}
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return errors.New(msg)
}
