package usecases

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID               snowflake.ID
	Page                  int          // 1-indexed page number
	PageSize              int          // Items per page (optional, defaults to 10)
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Current       *domain.QueueEntry
	Entries       []domain.QueueEntry
	PageOffset    int // queue index of Entries[0]
	TotalEntries  int
	CurrentPage   int
	TotalPages    int
	TotalDuration time.Duration
	LoopMode      domain.LoopMode
}

// QueueRemoveInput contains the input for the QueueRemove use case.
type QueueRemoveInput struct {
	GuildID               snowflake.ID
	Position              int          // 1-indexed position in the queue
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueRemoveOutput contains the result of the QueueRemove use case.
type QueueRemoveOutput struct {
	Removed domain.QueueEntry
}

// QueueMoveInput contains the input for the QueueMove use case.
type QueueMoveInput struct {
	GuildID               snowflake.ID
	From                  int // 1-indexed
	To                    int // 1-indexed
	NotificationChannelID snowflake.ID
}

// QueueMoveOutput contains the result of the QueueMove use case.
type QueueMoveOutput struct {
	Moved domain.QueueEntry
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int
}

// QueueShuffleInput contains the input for the QueueShuffle use case.
type QueueShuffleInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID
}

// QueueService handles queue operations.
type QueueService struct {
	players application.PlayerRegistry
}

// NewQueueService creates a new QueueService.
func NewQueueService(players application.PlayerRegistry) *QueueService {
	return &QueueService{players: players}
}

// List returns the current track and one page of the queue.
func (q *QueueService) List(input QueueListInput) (*QueueListOutput, error) {
	player, err := lookupPlayer(q.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}

	snap := player.Snapshot()
	total := len(snap.Queue)
	totalPages := max((total+pageSize-1)/pageSize, 1)
	page = min(page, totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	var entries []domain.QueueEntry
	if start < total {
		entries = snap.Queue[start:end]
	}

	return &QueueListOutput{
		Current:       snap.Current,
		Entries:       entries,
		PageOffset:    start,
		TotalEntries:  total,
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalDuration: snap.QueueDuration,
		LoopMode:      snap.LoopMode,
	}, nil
}

// Remove removes the entry at the given 1-indexed position.
func (q *QueueService) Remove(input QueueRemoveInput) (*QueueRemoveOutput, error) {
	player, err := lookupPlayer(q.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	var removed domain.QueueEntry
	err = player.WithQueue(func(queue *domain.Queue) error {
		if queue.IsEmpty() {
			return domain.ErrQueueEmpty
		}
		removed, err = queue.RemoveAt(input.Position - 1)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &QueueRemoveOutput{Removed: removed}, nil
}

// Move moves an entry between 1-indexed positions.
func (q *QueueService) Move(input QueueMoveInput) (*QueueMoveOutput, error) {
	player, err := lookupPlayer(q.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	var moved domain.QueueEntry
	err = player.WithQueue(func(queue *domain.Queue) error {
		if err := queue.Move(input.From-1, input.To-1); err != nil {
			return err
		}
		moved, err = queue.Get(input.To - 1)
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &QueueMoveOutput{Moved: moved}, nil
}

// Shuffle randomizes the queue order.
func (q *QueueService) Shuffle(input QueueShuffleInput) error {
	player, err := lookupPlayer(q.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}

	return translateError(player.WithQueue(func(queue *domain.Queue) error {
		if queue.Len() < 2 {
			return domain.ErrQueueEmpty
		}
		queue.Shuffle()
		return nil
	}))
}

// Clear removes every queued entry. The current track keeps playing.
func (q *QueueService) Clear(input QueueClearInput) (*QueueClearOutput, error) {
	player, err := lookupPlayer(q.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	var cleared int
	err = player.WithQueue(func(queue *domain.Queue) error {
		if queue.IsEmpty() {
			return domain.ErrQueueEmpty
		}
		cleared = queue.Clear()
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &QueueClearOutput{ClearedCount: cleared}, nil
}

// Entries returns every queued entry, or nil when the guild has no player.
func (q *QueueService) Entries(guildID snowflake.ID) []domain.QueueEntry {
	player, err := lookupPlayer(q.players, guildID, 0)
	if err != nil {
		return nil
	}
	return player.Snapshot().Queue
}
