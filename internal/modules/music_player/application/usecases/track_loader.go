package usecases

import (
	"context"
	"fmt"

	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// LoadTracksInput contains the input for the LoadTracks use case.
type LoadTracksInput struct {
	Query string
}

// LoadTracksOutput contains the result of the LoadTracks use case.
// Single tracks and searches yield one track, playlists every track.
type LoadTracksOutput struct {
	Tracks       []*domain.Track
	PlaylistName string
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query string
	Limit int
}

// SearchTracksOutput contains the result of the SearchTracks use case.
type SearchTracksOutput struct {
	Tracks       []*domain.Track
	IsPlaylist   bool
	PlaylistName string
}

// TrackLoaderService handles track loading operations.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
	secondary     []ports.SecondaryResolver
}

// NewTrackLoaderService creates a new TrackLoaderService. Secondary resolvers
// are tried in order before the node.
func NewTrackLoaderService(
	trackResolver ports.TrackResolver,
	secondary ...ports.SecondaryResolver,
) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver: trackResolver,
		secondary:     secondary,
	}
}

// LoadTracks resolves a query into playable tracks.
func (s *TrackLoaderService) LoadTracks(
	ctx context.Context,
	input LoadTracksInput,
) (*LoadTracksOutput, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return nil, ErrNoResults
	}

	for _, resolver := range s.secondary {
		track, ok, err := resolver.Resolve(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		if ok {
			return &LoadTracksOutput{Tracks: []*domain.Track{track}}, nil
		}
	}

	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	switch result.Type {
	case ports.LoadTypeError:
		return nil, fmt.Errorf("%w: %s", ErrLoadFailed, result.Err)
	case ports.LoadTypeEmpty:
		return nil, ErrNoResults
	}
	if len(result.Tracks) == 0 {
		return nil, ErrNoResults
	}

	if result.Type == ports.LoadTypePlaylist {
		return &LoadTracksOutput{
			Tracks:       result.Tracks,
			PlaylistName: result.PlaylistName,
		}, nil
	}

	return &LoadTracksOutput{Tracks: result.Tracks[:1]}, nil
}

// SearchTracks searches for tracks matching the query.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	query := domain.NewSearchQuery(input.Query)
	if !query.IsValid() {
		return &SearchTracksOutput{}, nil
	}

	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, err
	}

	if result.Type == ports.LoadTypeEmpty || result.Type == ports.LoadTypeError {
		return &SearchTracksOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 || limit > len(result.Tracks) {
		limit = len(result.Tracks)
	}

	return &SearchTracksOutput{
		Tracks:       result.Tracks[:limit],
		IsPlaylist:   result.Type == ports.LoadTypePlaylist,
		PlaylistName: result.PlaylistName,
	}, nil
}
