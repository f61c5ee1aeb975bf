// Package daemon provides the main orchestration for chimed.
// It wires the sound catalog, the audio player, the preview controller and the
// D-Bus service together, and hot-reloads the catalog when the config file changes.
package daemon
