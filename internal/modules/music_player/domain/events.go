package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by a command.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another track was started over it.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the node cleaned up the player.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue reports whether the end reason is terminal for the track.
// Stop and replace are driven by the command that caused them.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackStartedEvent is published when the node starts a track.
type TrackStartedEvent struct {
	GuildID snowflake.ID
	Track   *Track
}

// TrackEndedEvent is published when the node reports the end of a track.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Track   *Track
	Reason  TrackEndReason
}

// TrackExceptionEvent is published when the node fails while playing a track
// or reports it stuck.
type TrackExceptionEvent struct {
	GuildID snowflake.ID
	Track   *Track
	Message string
	Stuck   bool
	// Threshold is how long the track was stuck, zero for exceptions.
	Threshold time.Duration
}
