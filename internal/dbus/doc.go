// Package dbus exposes the sound catalog and preview controller on the session bus
// as io.github.jmylchreest.Chime, and provides a Client for calling it.
//
// Controller errors cross the bus as named D-Bus errors
// (io.github.jmylchreest.Chime.Error.InvalidLocator and friends) and are mapped
// back to the preview and catalog sentinel errors by the Client.
package dbus
