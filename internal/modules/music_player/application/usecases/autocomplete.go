package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// defaultSuggestionLimit leaves one of Discord's 25 choices for the playlist option.
const defaultSuggestionLimit = 24

// QueueEntriesOutput contains the queued entries offered as suggestions.
type QueueEntriesOutput struct {
	Entries []domain.QueueEntry
}

// AutocompleteService handles autocomplete-related operations.
type AutocompleteService struct {
	players application.PlayerRegistry
	loader  *TrackLoaderService
}

// NewAutocompleteService creates a new AutocompleteService. loader may be nil.
func NewAutocompleteService(
	players application.PlayerRegistry,
	loader *TrackLoaderService,
) *AutocompleteService {
	return &AutocompleteService{
		players: players,
		loader:  loader,
	}
}

// QueueEntries returns the queued entries for position suggestions.
func (s *AutocompleteService) QueueEntries(guildID snowflake.ID) *QueueEntriesOutput {
	player, err := lookupPlayer(s.players, guildID, 0)
	if err != nil {
		return &QueueEntriesOutput{}
	}
	return &QueueEntriesOutput{Entries: player.Snapshot().Queue}
}

// SearchTracks returns track suggestions for a partial query.
func (s *AutocompleteService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	if s.loader == nil {
		return &SearchTracksOutput{}, nil
	}
	if input.Limit <= 0 {
		input.Limit = defaultSuggestionLimit
	}
	return s.loader.SearchTracks(ctx, input)
}
