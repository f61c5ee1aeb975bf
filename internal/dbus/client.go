package dbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

// Client calls a running chime service over the session bus.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewClient connects a private session bus connection to the chime service.
func NewClient(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn:   conn,
		obj:    conn.Object(DBusBusName, DBusPath),
		logger: logger,
	}, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Available reports whether the service currently owns its bus name.
func (c *Client) Available(ctx context.Context) bool {
	var hasOwner bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, DBusBusName).Store(&hasOwner)
	return err == nil && hasOwner
}

// ListAvailableSounds fetches the service's catalog.
func (c *Client) ListAvailableSounds(ctx context.Context) ([]model.SoundEntry, error) {
	var wire []WireSound
	if err := c.obj.CallWithContext(ctx, DBusInterface+".ListAvailableSounds", 0).Store(&wire); err != nil {
		return nil, FromDBusError(err)
	}
	return FromWire(wire), nil
}

// StartPreview asks the service to play locator.
func (c *Client) StartPreview(ctx context.Context, locator string) error {
	return FromDBusError(c.obj.CallWithContext(ctx, DBusInterface+".StartPreview", 0, locator).Err)
}

// StopPreview asks the service to stop the current preview.
func (c *Client) StopPreview(ctx context.Context) error {
	return FromDBusError(c.obj.CallWithContext(ctx, DBusInterface+".StopPreview", 0).Err)
}

// GetState returns the service's controller status.
func (c *Client) GetState(ctx context.Context) (preview.Status, error) {
	var state, source, session string
	if err := c.obj.CallWithContext(ctx, DBusInterface+".GetState", 0).Store(&state, &source, &session); err != nil {
		return preview.Status{}, FromDBusError(err)
	}
	return StatusFromWire(state, source, session)
}

// WatchState calls fn for every StateChanged signal until ctx is done.
func (c *Client) WatchState(ctx context.Context, fn func(preview.Status)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
		dbus.WithMatchMember("StateChanged"),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return fmt.Errorf("failed to add signal match: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(opts...) }()

	ch := make(chan *dbus.Signal, 16)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig, ok := <-ch:
			if !ok {
				return nil
			}
			st, ok := statusFromSignal(sig)
			if !ok {
				c.logger.Debug("ignoring malformed StateChanged signal", "body_len", len(sig.Body))
				continue
			}
			fn(st)
		}
	}
}

// statusFromSignal parses a StateChanged(sss) signal body.
func statusFromSignal(sig *dbus.Signal) (preview.Status, bool) {
	if sig == nil || sig.Name != DBusInterface+".StateChanged" || len(sig.Body) < 3 {
		return preview.Status{}, false
	}

	var fields [3]string
	for i := range fields {
		s, ok := sig.Body[i].(string)
		if !ok {
			return preview.Status{}, false
		}
		fields[i] = s
	}

	st, err := StatusFromWire(fields[0], fields[1], fields[2])
	if err != nil {
		return preview.Status{}, false
	}
	return st, true
}
