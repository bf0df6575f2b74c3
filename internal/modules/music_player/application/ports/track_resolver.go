package ports

import (
	"context"

	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// LoadType represents the type of result from loading tracks.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// LoadResult contains the result of loading tracks.
type LoadResult struct {
	Type         LoadType
	Tracks       []*domain.Track
	PlaylistName string
	Err          string // node exception message for LoadTypeError
}

// TrackResolver loads tracks from the audio node.
type TrackResolver interface {
	LoadTracks(ctx context.Context, query string) (*LoadResult, error)
}

// SecondaryResolver resolves links the node cannot play natively, such as
// Spotify tracks, into tracks without a node-native id.
type SecondaryResolver interface {
	// Resolve returns ok=false when the query is not handled by this resolver.
	Resolve(ctx context.Context, query *domain.SearchQuery) (track *domain.Track, ok bool, err error)
}
