package audio

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/jmylchreest/chime/internal/config"
	"github.com/jmylchreest/chime/internal/preview"
)

// Backend is a preview.Player owning audio resources.
type Backend interface {
	preview.Player
	Close() error
}

// DetectBackend returns the backend "auto" selects on goos.
func DetectBackend(goos string) string {
	if goos == "darwin" {
		return config.BackendExec
	}
	return config.BackendBeep
}

// NewPlayer creates the configured player backend.
func NewPlayer(cfg config.PlayerConfig, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend := cfg.Backend
	if backend == "" || backend == config.BackendAuto {
		backend = DetectBackend(runtime.GOOS)
	}

	switch backend {
	case config.BackendBeep:
		return NewBeepPlayer(cfg.Buffer.Duration(), cfg.CacheTTL.Duration(), cfg.Aliases, logger), nil
	case config.BackendExec:
		return NewExecPlayer(cfg.Command, cfg.Aliases, logger)
	default:
		return nil, fmt.Errorf("unknown player backend %q", backend)
	}
}

// Manager owns the player backend and, for cached backends, the file watcher
// that keeps the decode cache fresh.
type Manager struct {
	logger  *slog.Logger
	player  Backend
	watcher *CacheWatcher
}

// NewManager creates the player for cfg and, when cfg.Watch is set and the
// backend caches decoded sounds, a CacheWatcher wired to it.
func NewManager(cfg config.PlayerConfig, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	player, err := NewPlayer(cfg, logger)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger: logger,
		player: player,
	}

	if bp, ok := player.(*BeepPlayer); ok && cfg.Watch {
		watcher, err := NewCacheWatcher(bp, logger)
		if err != nil {
			// Playback still works without invalidation.
			logger.Warn("sound cache watcher unavailable", "error", err)
		} else {
			m.watcher = watcher
			bp.OnDecode(func(path string) {
				if err := watcher.Watch(path); err != nil {
					logger.Debug("failed to watch sound file", "path", path, "error", err)
				}
			})
		}
	}

	return m, nil
}

// Player returns the backend.
func (m *Manager) Player() Backend {
	return m.player
}

// Start starts the cache watcher, if any.
func (m *Manager) Start(ctx context.Context) error {
	if m.watcher != nil {
		if err := m.watcher.Start(ctx); err != nil {
			return err
		}
	}
	m.logger.Debug("audio manager started", "watching", m.watcher != nil)
	return nil
}

// Stop shuts down the watcher and the player.
func (m *Manager) Stop() {
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			m.logger.Debug("failed to stop sound cache watcher", "error", err)
		}
	}
	if err := m.player.Close(); err != nil {
		m.logger.Debug("failed to close player", "error", err)
	}
	m.logger.Debug("audio manager stopped")
}
