package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
)

const defaultTopTracksLimit = 10

// StatsService reports play history.
type StatsService struct {
	recorder ports.PlayRecorder
}

// NewStatsService creates a new StatsService. recorder may be nil.
func NewStatsService(recorder ports.PlayRecorder) *StatsService {
	return &StatsService{recorder: recorder}
}

// Enabled reports whether play history is recorded.
func (s *StatsService) Enabled() bool {
	return s.recorder != nil
}

// TopTracks returns the guild's most played tracks.
func (s *StatsService) TopTracks(
	ctx context.Context,
	guildID snowflake.ID,
	limit int,
) ([]ports.TrackPlayCount, error) {
	if s.recorder == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultTopTracksLimit
	}
	return s.recorder.TopTracks(ctx, guildID, limit)
}
