package domain

import (
	"strconv"
	"time"
)

// Track is the metadata of a playable track. Audio is handled by the node;
// the engine only forwards tracks to it.
type Track struct {
	Encoded    string // node-native encoded track, empty when resolved elsewhere
	Identifier string // source-specific identifier
	Title      string
	Author     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g. "youtube", "spotify", "soundcloud"
	IsStream   bool
}

// Source returns the parsed TrackSource for this track.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// HasNodeID reports whether the node can play the track without re-resolving it.
func (t *Track) HasNodeID() bool {
	return t.Encoded != ""
}

// PlaybackIdentifier returns the identifier handed to the node when no encoded
// track is available.
func (t *Track) PlaybackIdentifier() string {
	if t.URI != "" {
		return t.URI
	}
	return t.Identifier
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return FormatDuration(t.Duration)
}

// FormatDuration renders d as mm:ss, or hh:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return strconv.Itoa(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
