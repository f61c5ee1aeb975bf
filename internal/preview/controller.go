package preview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Controller owns the single concurrently playable preview.
type Controller struct {
	mu     sync.Mutex
	player Player
	logger *slog.Logger

	// Session state, guarded by mu
	state     State
	source    string
	sessionID string
	handle    Handle
	startedAt time.Time
	closed    bool

	// Cancels an in-flight Load so Stop and Close are not held up by a slow player.
	loadMu     sync.Mutex
	cancelLoad context.CancelFunc

	// Last published status, readable without waiting on mu during a slow Load.
	snapshot atomic.Pointer[Status]

	notifier *notifier
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStateListener registers fn to receive every state transition.
// fn runs on a dedicated goroutine, in transition order, and may call the Controller.
func WithStateListener(fn func(Status)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.notifier = newNotifier(fn)
		}
	}
}

// NewController creates a Controller driving the given player.
func NewController(player Player, opts ...Option) *Controller {
	c := &Controller{
		player: player,
		logger: slog.Default(),
		state:  Idle,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.snapshot.Store(&Status{State: Idle})
	if c.notifier != nil {
		go c.notifier.run()
	}
	return c
}

// StartPreview stops any current preview and starts playing locator.
// It returns once playback has begun; completion is observed asynchronously.
// Any prior session is released even when the new one fails.
func (c *Controller) StartPreview(ctx context.Context, locator string) error {
	c.abortLoad()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.releaseLocked("replaced")

	if strings.TrimSpace(locator) == "" {
		return ErrInvalidLocator
	}

	sessionID := ulid.Make().String()
	c.state = Loading
	c.source = locator
	c.sessionID = sessionID
	c.publishLocked()

	logger := c.logger.With("session", sessionID, "locator", locator)
	logger.Debug("loading preview")

	loadCtx, cancel := context.WithCancel(ctx)
	c.loadMu.Lock()
	c.cancelLoad = cancel
	c.loadMu.Unlock()

	h, err := c.player.Load(loadCtx, locator)

	c.loadMu.Lock()
	c.cancelLoad = nil
	c.loadMu.Unlock()
	cancel()

	if err != nil {
		c.resetLocked()
		logger.Warn("failed to load preview", "error", err)
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, locator, err)
	}

	c.handle = h
	c.player.OnCompletion(h, func() { c.complete(sessionID) })

	if err := c.player.Play(h); err != nil {
		c.player.Release(h)
		c.resetLocked()
		logger.Warn("failed to start preview", "error", err)
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, locator, err)
	}

	c.state = Playing
	c.startedAt = c.now()
	c.publishLocked()

	logger.Debug("preview playing", "handle", h.ID())
	return nil
}

// StopPreview halts and releases the current preview, if any.
// It is idempotent and always leaves the controller Idle.
func (c *Controller) StopPreview() error {
	c.abortLoad()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked("stopped")
	return nil
}

// Close releases any held player handle exactly as StopPreview does and rejects
// further previews. It stops the state listener after delivering pending transitions.
func (c *Controller) Close() error {
	c.abortLoad()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.releaseLocked("closed")
	c.closed = true
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.close()
	}

	c.logger.Debug("preview controller closed")
	return nil
}

// Status returns a snapshot of the current session.
// It does not block while a source is loading.
func (c *Controller) Status() Status {
	return *c.snapshot.Load()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.snapshot.Load().State
}

// complete handles natural end of playback for the given session.
func (c *Controller) complete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionID != sessionID || c.handle == nil {
		c.logger.Debug("ignoring completion of stale preview", "session", sessionID)
		return
	}

	c.player.Release(c.handle)
	c.logger.Debug("preview completed", "session", sessionID)
	c.resetLocked()
}

// releaseLocked stops and releases the active handle and returns to Idle.
// Player stop failures are logged and never block the transition.
func (c *Controller) releaseLocked(reason string) {
	if !c.state.Active() {
		return
	}

	if c.handle != nil {
		if err := c.player.Stop(c.handle); err != nil {
			c.logger.Warn("failed to halt preview",
				"session", c.sessionID,
				"error", fmt.Errorf("%w: %w", ErrStopFailed, err),
			)
		}
		c.player.Release(c.handle)
	}

	c.logger.Debug("preview released", "session", c.sessionID, "reason", reason)
	c.resetLocked()
}

// resetLocked returns to Idle and publishes the transition.
func (c *Controller) resetLocked() {
	c.state = Idle
	c.source = ""
	c.sessionID = ""
	c.handle = nil
	c.startedAt = time.Time{}
	c.publishLocked()
}

// abortLoad cancels the context of an in-flight Load, if any.
func (c *Controller) abortLoad() {
	c.loadMu.Lock()
	cancel := c.cancelLoad
	c.loadMu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (c *Controller) statusLocked() Status {
	return Status{
		State:     c.state,
		Source:    c.source,
		SessionID: c.sessionID,
		StartedAt: c.startedAt,
	}
}

// publishLocked records the current status and hands it to the listener.
func (c *Controller) publishLocked() {
	status := c.statusLocked()
	c.snapshot.Store(&status)
	if c.notifier != nil {
		c.notifier.publish(status)
	}
}
