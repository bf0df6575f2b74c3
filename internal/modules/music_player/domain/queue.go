package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/samber/lo/mutable"
)

// DefaultMaxQueueLength is the default capacity of a guild queue.
const DefaultMaxQueueLength = 500

// Queue is a bounded FIFO of pending entries.
// It is not safe for concurrent use; the owning player serializes access.
type Queue struct {
	entries []QueueEntry
	maxLen  int
}

// NewQueue creates an empty queue holding at most maxLen entries.
// A non-positive maxLen falls back to DefaultMaxQueueLength.
func NewQueue(maxLen int) *Queue {
	if maxLen <= 0 {
		maxLen = DefaultMaxQueueLength
	}
	return &Queue{
		entries: make([]QueueEntry, 0),
		maxLen:  maxLen,
	}
}

// MaxLen returns the configured capacity.
func (q *Queue) MaxLen() int {
	return q.maxLen
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// IsEmpty reports whether the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return len(q.entries) == 0
}

// EnqueueMany appends entries in order.
// It rejects the whole batch with ErrQueueFull when the resulting length
// would equal the capacity, leaving the queue unchanged.
func (q *Queue) EnqueueMany(entries []QueueEntry) error {
	if len(q.entries)+len(entries) == q.maxLen {
		return ErrQueueFull
	}
	q.entries = append(q.entries, entries...)
	return nil
}

// EnqueueOne appends a single entry. No capacity check is applied.
func (q *Queue) EnqueueOne(track *Track, requesterID snowflake.ID) {
	q.entries = append(q.entries, NewQueueEntry(track, requesterID))
}

// Take removes and returns the front entry.
func (q *Queue) Take() (QueueEntry, error) {
	if len(q.entries) == 0 {
		return QueueEntry{}, ErrQueueEmpty
	}
	entry := q.entries[0]
	q.entries[0] = QueueEntry{}
	q.entries = q.entries[1:]
	return entry, nil
}

// Skip discards the first n-1 entries and returns the n-th.
// If fewer than n entries are queued, it returns ErrQueueEmpty and the queue is untouched.
func (q *Queue) Skip(n int) (QueueEntry, error) {
	if n < 1 {
		return QueueEntry{}, ErrIndexOutOfRange
	}
	if len(q.entries) < n {
		return QueueEntry{}, ErrQueueEmpty
	}
	entry := q.entries[n-1]
	q.entries = append([]QueueEntry(nil), q.entries[n:]...)
	return entry, nil
}

// Shuffle randomizes the order of the queue in place.
func (q *Queue) Shuffle() {
	mutable.Shuffle(q.entries)
}

// Get returns the entry at index.
func (q *Queue) Get(index int) (QueueEntry, error) {
	if index < 0 || index >= len(q.entries) {
		return QueueEntry{}, ErrIndexOutOfRange
	}
	return q.entries[index], nil
}

// Insert places a new entry at index, shifting later entries back.
// An index equal to Len appends.
func (q *Queue) Insert(index int, track *Track, requesterID snowflake.ID) error {
	if index < 0 || index > len(q.entries) {
		return ErrIndexOutOfRange
	}
	q.insertEntry(index, NewQueueEntry(track, requesterID))
	return nil
}

func (q *Queue) insertEntry(index int, entry QueueEntry) {
	q.entries = append(q.entries, QueueEntry{})
	copy(q.entries[index+1:], q.entries[index:])
	q.entries[index] = entry
}

// RemoveAt removes and returns the entry at index.
func (q *Queue) RemoveAt(index int) (QueueEntry, error) {
	if index < 0 || index >= len(q.entries) {
		return QueueEntry{}, ErrIndexOutOfRange
	}
	entry := q.entries[index]
	q.entries = append(q.entries[:index], q.entries[index+1:]...)
	return entry, nil
}

// Move relocates the entry at from to position to.
func (q *Queue) Move(from, to int) error {
	if from < 0 || from >= len(q.entries) || to < 0 || to >= len(q.entries) {
		return ErrIndexOutOfRange
	}
	entry, _ := q.RemoveAt(from)
	q.insertEntry(to, entry)
	return nil
}

// Clear removes every entry and returns how many were removed.
func (q *Queue) Clear() int {
	n := len(q.entries)
	q.entries = make([]QueueEntry, 0)
	return n
}

// Entries returns a copy of the pending entries in order.
func (q *Queue) Entries() []QueueEntry {
	result := make([]QueueEntry, len(q.entries))
	copy(result, q.entries)
	return result
}

// TotalDuration sums the durations of queued non-stream tracks.
func (q *Queue) TotalDuration() time.Duration {
	return lo.SumBy(q.entries, func(e QueueEntry) time.Duration {
		if e.Track == nil || e.Track.IsStream {
			return 0
		}
		return e.Track.Duration
	})
}
