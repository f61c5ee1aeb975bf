package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/chime/internal/adapter/input"
	"github.com/jmylchreest/chime/internal/audio"
	"github.com/jmylchreest/chime/internal/catalog"
	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/dbus"
	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

// BuildCatalog creates the catalog for cfg.
func BuildCatalog(cfg config.CatalogConfig, logger *slog.Logger) (*catalog.Catalog, error) {
	enumerator, err := input.NewEnumerator(cfg)
	if err != nil {
		return nil, err
	}
	return catalog.New(enumerator, catalog.WithLimit(cfg.Limit), catalog.WithLogger(logger)), nil
}

// Daemon owns every long-lived component of chimed.
type Daemon struct {
	logger     *slog.Logger
	configPath string

	mu      sync.RWMutex
	cfg     *config.Config
	catalog *catalog.Catalog

	audio      *audio.Manager
	controller *preview.Controller
	service    *dbus.Service
	watcher    *ConfigWatcher

	listenersMu sync.RWMutex
	listeners   []func(preview.Status)
}

// New builds the daemon components from cfg. configPath, if set, is watched
// for changes once the daemon starts.
func New(cfg *config.Config, configPath string, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := BuildCatalog(cfg.Catalog, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	manager, err := audio.NewManager(cfg.Player, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}

	d := &Daemon{
		logger:     logger,
		configPath: configPath,
		cfg:        cfg,
		catalog:    cat,
		audio:      manager,
	}

	d.controller = preview.NewController(manager.Player(),
		preview.WithLogger(logger),
		preview.WithStateListener(d.dispatch),
	)

	if cfg.DBus.Enabled {
		d.service = dbus.NewService(cat, d.controller, logger)
	}

	if configPath != "" {
		d.watcher = NewConfigWatcher(configPath, logger)
		d.watcher.SetReloadCallback(func(newConfig *config.Config) {
			if err := d.Reload(newConfig); err != nil {
				logger.Warn("failed to apply reloaded config", "error", err)
			}
		})
		d.watcher.SetErrorCallback(func(err error) {
			logger.Warn("keeping previous config", "error", err)
		})
	}

	return d, nil
}

// Start starts the audio manager, the D-Bus service and the config watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.audio.Start(ctx); err != nil {
		return err
	}

	if d.service != nil {
		if err := d.service.Start(); err != nil {
			return err
		}
	}

	if d.watcher != nil {
		if err := d.watcher.Start(ctx, d.Config()); err != nil {
			// Hot-reload is optional.
			d.logger.Warn("config watcher unavailable", "path", d.configPath, "error", err)
		}
	}

	d.logger.Info("daemon started", "source", d.Catalog().Source(), "dbus", d.service != nil)
	return nil
}

// Stop tears everything down. The controller is closed first so no preview outlives the daemon.
func (d *Daemon) Stop() {
	if err := d.controller.Close(); err != nil {
		d.logger.Warn("failed to close preview controller", "error", err)
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.service != nil {
		if err := d.service.Stop(); err != nil {
			d.logger.Warn("failed to stop D-Bus service", "error", err)
		}
	}
	d.audio.Stop()
	d.logger.Info("daemon stopped")
}

// Reload swaps in a catalog built from cfg. The player and controller are kept.
func (d *Daemon) Reload(cfg *config.Config) error {
	cat, err := BuildCatalog(cfg.Catalog, d.logger)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.cfg = cfg
	d.catalog = cat
	d.mu.Unlock()

	if d.service != nil {
		d.service.SetCatalog(cat)
	}

	d.logger.Info("catalog reloaded", "source", cat.Source(), "limit", cat.Limit())
	return nil
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Catalog returns the active catalog.
func (d *Daemon) Catalog() *catalog.Catalog {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.catalog
}

// ListAvailableSounds lists sounds from the active catalog.
func (d *Daemon) ListAvailableSounds(ctx context.Context) ([]model.SoundEntry, error) {
	return d.Catalog().ListAvailableSounds(ctx)
}

// Controller returns the preview controller.
func (d *Daemon) Controller() *preview.Controller {
	return d.controller
}

// AddStateListener registers fn for controller transitions.
func (d *Daemon) AddStateListener(fn func(preview.Status)) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// dispatch fans a transition out to the bus and local listeners.
func (d *Daemon) dispatch(st preview.Status) {
	d.logger.Debug("preview state changed", "state", st.State.String(), "source", st.Source, "session", st.SessionID)

	if d.service != nil {
		d.service.OnStateChanged(st)
	}

	d.listenersMu.RLock()
	listeners := append(([]func(preview.Status))(nil), d.listeners...)
	d.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(st)
	}
}
