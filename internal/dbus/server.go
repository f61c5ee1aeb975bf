package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

// DefaultCallTimeout bounds each method call that touches the catalog or player.
const DefaultCallTimeout = 30 * time.Second

// SoundLister lists the available sounds.
type SoundLister interface {
	ListAvailableSounds(ctx context.Context) ([]model.SoundEntry, error)
}

// PreviewController starts and stops previews.
type PreviewController interface {
	StartPreview(ctx context.Context, locator string) error
	StopPreview() error
	Status() preview.Status
}

// Service implements the io.github.jmylchreest.Chime D-Bus interface.
type Service struct {
	conn   *dbus.Conn
	logger *slog.Logger

	mu          sync.RWMutex
	catalog     SoundLister
	controller  PreviewController
	callTimeout time.Duration
	running     bool
}

// NewService creates a new Service.
func NewService(catalog SoundLister, controller PreviewController, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger:      logger,
		catalog:     catalog,
		controller:  controller,
		callTimeout: DefaultCallTimeout,
	}
}

// SetCatalog swaps the catalog used by ListAvailableSounds (config hot-reload).
func (s *Service) SetCatalog(catalog SoundLister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

// SetCallTimeout sets the per-call timeout.
func (s *Service) SetCallTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callTimeout = d
}

// Start connects to the session bus and exports the service.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("service already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := s.register(conn); err != nil {
		return err
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus service started", "interface", DBusInterface, "path", DBusPath)
	return nil
}

// introspectableInterface is the standard introspection interface name.
const introspectableInterface = "org.freedesktop.DBus.Introspectable"

// busConn is the part of *dbus.Conn used to publish the service.
type busConn interface {
	Export(v any, path dbus.ObjectPath, iface string) error
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
}

// register exports the service and its introspection data and claims the bus name.
// On failure nothing stays exported on the shared connection.
func (s *Service) register(conn busConn) error {
	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(DBusPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: serviceMethods(),
				Signals: serviceSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath, introspectableInterface); err != nil {
		s.unexport(conn)
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		s.unexport(conn)
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		s.unexport(conn)
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}
	return nil
}

// unexport removes the service and introspection objects from conn.
func (s *Service) unexport(conn busConn) {
	for _, iface := range []string{DBusInterface, introspectableInterface} {
		if err := conn.Export(nil, DBusPath, iface); err != nil {
			s.logger.Warn("failed to unexport object", "interface", iface, "error", err)
		}
	}
}

// Stop unexports the object and releases the bus name.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		s.unexport(s.conn)
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus service stopped")
	return nil
}

func (s *Service) callContext() (context.Context, context.CancelFunc) {
	s.mu.RLock()
	timeout := s.callTimeout
	s.mu.RUnlock()
	return context.WithTimeout(context.Background(), timeout)
}

// ListAvailableSounds returns the sound catalog.
// D-Bus method: ListAvailableSounds() -> a(sssb)
func (s *Service) ListAvailableSounds() ([]WireSound, *dbus.Error) {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()

	ctx, cancel := s.callContext()
	defer cancel()

	sounds, err := catalog.ListAvailableSounds(ctx)
	if err != nil {
		s.logger.Warn("ListAvailableSounds failed", "error", err)
		return nil, ToDBusError(err)
	}

	s.logger.Debug("ListAvailableSounds called", "count", len(sounds))
	return ToWire(sounds), nil
}

// StartPreview plays locator, replacing any current preview.
// D-Bus method: StartPreview(s) -> nothing
func (s *Service) StartPreview(locator string) *dbus.Error {
	s.logger.Debug("StartPreview called", "locator", locator)

	ctx, cancel := s.callContext()
	defer cancel()

	if err := s.controller.StartPreview(ctx, locator); err != nil {
		s.logger.Debug("StartPreview failed", "locator", locator, "error", err)
		return ToDBusError(err)
	}
	return nil
}

// StopPreview stops the current preview, if any.
// D-Bus method: StopPreview() -> nothing
func (s *Service) StopPreview() *dbus.Error {
	s.logger.Debug("StopPreview called")
	return ToDBusError(s.controller.StopPreview())
}

// GetState returns the controller state, current source and session id.
// D-Bus method: GetState() -> (sss)
func (s *Service) GetState() (string, string, string, *dbus.Error) {
	state, source, session := StatusToWire(s.controller.Status())
	return state, source, session, nil
}

// serviceMethods returns the D-Bus method introspection data.
func serviceMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "ListAvailableSounds",
			Args: []introspect.Arg{
				{Name: "sounds", Type: "a(sssb)", Direction: "out"},
			},
		},
		{
			Name: "StartPreview",
			Args: []introspect.Arg{
				{Name: "locator", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "StopPreview",
		},
		{
			Name: "GetState",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
				{Name: "source", Type: "s", Direction: "out"},
				{Name: "session", Type: "s", Direction: "out"},
			},
		},
	}
}

// serviceSignals returns the D-Bus signal introspection data.
func serviceSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "StateChanged",
			Args: []introspect.Arg{
				{Name: "state", Type: "s"},
				{Name: "source", Type: "s"},
				{Name: "session", Type: "s"},
			},
		},
	}
}
