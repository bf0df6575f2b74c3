package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// QueueEntry pairs a track with the user who requested it.
type QueueEntry struct {
	Track       *Track
	RequesterID snowflake.ID
	EnqueuedAt  time.Time
}

// NewQueueEntry creates a QueueEntry stamped with the current time.
func NewQueueEntry(track *Track, requesterID snowflake.ID) QueueEntry {
	return QueueEntry{
		Track:       track,
		RequesterID: requesterID,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// RequesterMention returns the Discord mention string for the requester.
func (e QueueEntry) RequesterMention() string {
	if e.RequesterID == 0 {
		return ""
	}
	return "<@" + e.RequesterID.String() + ">"
}
