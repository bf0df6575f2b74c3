package domain

// LoopMode represents how the player repeats tracks.
type LoopMode int

const (
	LoopModeNone      LoopMode = iota // Default: no looping
	LoopModeTrack                     // Repeat the looped track until disabled
	LoopModeTrackOnce                 // Replay the looped track a single time
	LoopModeQueue                     // Re-append everything played since looping began
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeTrackOnce:
		return "track_once"
	case LoopModeQueue:
		return "queue"
	default:
		return "none"
	}
}

// LoopsTrack reports whether the mode replays a single track.
func (m LoopMode) LoopsTrack() bool {
	return m == LoopModeTrack || m == LoopModeTrackOnce
}

// ParseLoopMode converts a string to a LoopMode.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "track":
		return LoopModeTrack
	case "track_once", "once":
		return LoopModeTrackOnce
	case "queue":
		return LoopModeQueue
	default:
		return LoopModeNone
	}
}
