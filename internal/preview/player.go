package preview

import "context"

// Handle identifies one loaded source inside a Player.
type Handle interface {
	// ID returns an identifier for logging.
	ID() string
}

// Player is the audio rendering capability driven by the Controller.
//
// Implementations must deliver the completion callback from a goroutine other than
// the one calling Play or Stop; the callback may call back into the Player.
type Player interface {
	// Load resolves and decodes locator, returning a handle ready to play.
	// Load runs with the Controller locked; it must return promptly once ctx is
	// cancelled, since StopPreview and Close cancel ctx and then wait for the lock.
	Load(ctx context.Context, locator string) (Handle, error)

	// Play starts playback of a loaded handle.
	Play(h Handle) error

	// Stop halts playback. The completion callback must not fire after Stop returns.
	Stop(h Handle) error

	// OnCompletion registers fn to run exactly once when playback of h ends naturally.
	OnCompletion(h Handle, fn func())

	// Release frees the resources of h. Releasing twice is a no-op.
	Release(h Handle)
}
