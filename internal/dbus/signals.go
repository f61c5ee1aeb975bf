package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/chime/internal/preview"
)

// EmitStateChanged emits the StateChanged signal.
func (s *Service) EmitStateChanged(st preview.Status) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	state, source, session := StatusToWire(st)
	err := s.conn.Emit(DBusPath, DBusInterface+".StateChanged", state, source, session)
	if err != nil {
		return fmt.Errorf("failed to emit StateChanged signal: %w", err)
	}

	s.logger.Debug("emitted StateChanged signal", "state", state, "session", session)
	return nil
}

// OnStateChanged is a preview state listener that forwards transitions to the bus.
// Transitions before Start are dropped.
func (s *Service) OnStateChanged(st preview.Status) {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if !running {
		return
	}

	if err := s.EmitStateChanged(st); err != nil {
		s.logger.Warn("failed to emit StateChanged signal", "error", err)
	}
}

// Connection returns the underlying D-Bus connection.
func (s *Service) Connection() *dbus.Conn {
	return s.conn
}
