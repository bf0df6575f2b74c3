package domain

// PlaybackState is the explicit playback state of a player.
type PlaybackState int

const (
	PlaybackStopped PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// HasTrack reports whether a track is loaded in the node for this state.
func (s PlaybackState) HasTrack() bool {
	return s != PlaybackStopped
}
