package dbus

import (
	"errors"
	"fmt"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

func TestWireRoundTrip(t *testing.T) {
	sounds := []model.SoundEntry{
		model.NewSystemDefault(""),
		{ID: "ping", DisplayName: "Ping", SourceLocator: "/tmp/ping.wav"},
	}

	wire := ToWire(sounds)
	require.Len(t, wire, 2)
	assert.Equal(t, WireSound{ID: "system_default", DisplayName: "System Default", SourceLocator: "system_default", IsSystemSound: true}, wire[0])
	assert.Equal(t, sounds, FromWire(wire))
}

func TestWireSoundSignature(t *testing.T) {
	sig := dbus.SignatureOf([]WireSound{})
	assert.Equal(t, "a(sssb)", sig.String())
}

func TestStatusWire(t *testing.T) {
	st := preview.Status{State: preview.Playing, Source: "/tmp/a.wav", SessionID: "01J"}

	state, source, session := StatusToWire(st)
	assert.Equal(t, "playing", state)

	back, err := StatusFromWire(state, source, session)
	require.NoError(t, err)
	assert.Equal(t, st, back)

	_, err = StatusFromWire("bogus", "", "")
	assert.Error(t, err)
}

func TestErrorName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: preview.ErrInvalidLocator, want: "io.github.jmylchreest.Chime.Error.InvalidLocator"},
		{err: fmt.Errorf("%w: x: boom", preview.ErrLoadFailed), want: "io.github.jmylchreest.Chime.Error.LoadFailed"},
		{err: fmt.Errorf("%w: static: boom", catalog.ErrCatalogUnavailable), want: "io.github.jmylchreest.Chime.Error.CatalogUnavailable"},
		{err: errors.New("other"), want: "io.github.jmylchreest.Chime.Error.Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dbusErr := ToDBusError(tt.err)
			require.NotNil(t, dbusErr)
			assert.Equal(t, tt.want, dbusErr.Name)
			assert.Equal(t, []any{tt.err.Error()}, dbusErr.Body)
		})
	}

	assert.Nil(t, ToDBusError(nil))
}

func TestFromDBusError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "invalid locator",
			err:      *ToDBusError(preview.ErrInvalidLocator),
			sentinel: preview.ErrInvalidLocator,
			message:  "invalid locator",
		},
		{
			name:     "load failed pointer",
			err:      ToDBusError(fmt.Errorf("%w: /x.wav: no such file", preview.ErrLoadFailed)),
			sentinel: preview.ErrLoadFailed,
			message:  "load failed: /x.wav: no such file",
		},
		{
			name:     "catalog unavailable",
			err:      *ToDBusError(fmt.Errorf("%w: freedesktop: no dirs", catalog.ErrCatalogUnavailable)),
			sentinel: catalog.ErrCatalogUnavailable,
			message:  "sound catalog unavailable: freedesktop: no dirs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDBusError(tt.err)
			assert.ErrorIs(t, got, tt.sentinel)
			assert.Equal(t, tt.message, got.Error())
		})
	}
}

func TestFromDBusError_Passthrough(t *testing.T) {
	assert.NoError(t, FromDBusError(nil))

	foreign := dbus.Error{Name: "org.freedesktop.DBus.Error.ServiceUnknown", Body: []any{"no such name"}}
	assert.Equal(t, error(foreign), FromDBusError(foreign))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, FromDBusError(plain))

	failed := FromDBusError(*ToDBusError(errors.New("disk on fire")))
	assert.EqualError(t, failed, "disk on fire")
}

func TestStatusFromSignal(t *testing.T) {
	sig := &dbus.Signal{
		Name: DBusInterface + ".StateChanged",
		Body: []any{"loading", "chime", "01J"},
	}
	st, ok := statusFromSignal(sig)
	require.True(t, ok)
	assert.Equal(t, preview.Status{State: preview.Loading, Source: "chime", SessionID: "01J"}, st)

	_, ok = statusFromSignal(&dbus.Signal{Name: DBusInterface + ".StateChanged", Body: []any{"idle"}})
	assert.False(t, ok)

	_, ok = statusFromSignal(&dbus.Signal{Name: "org.example.Other", Body: []any{"idle", "", ""}})
	assert.False(t, ok)

	_, ok = statusFromSignal(nil)
	assert.False(t, ok)
}
