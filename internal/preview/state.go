package preview

import (
	"fmt"
	"time"
)

// State is the lifecycle state of the preview controller.
type State int

const (
	// Idle means no source is loaded.
	Idle State = iota
	// Loading means a source is being resolved and decoded.
	Loading
	// Playing means the loaded source is audible.
	Playing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Active reports whether a session is loading or playing.
func (s State) Active() bool {
	return s == Loading || s == Playing
}

// Status is a snapshot of the controller's session.
type Status struct {
	State     State     `json:"state"`
	Source    string    `json:"source,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// MarshalText lets State render as its name in JSON and YAML.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState parses the string form returned by State.String.
func ParseState(name string) (State, error) {
	switch name {
	case "idle":
		return Idle, nil
	case "loading":
		return Loading, nil
	case "playing":
		return Playing, nil
	default:
		return Idle, fmt.Errorf("unknown preview state %q", name)
	}
}
