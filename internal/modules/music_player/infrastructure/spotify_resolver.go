package infrastructure

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// spotifyTrackFetcher is the part of *spotify.Client the resolver uses.
type spotifyTrackFetcher interface {
	GetTrack(ctx context.Context, id spotify.ID, opts ...spotify.RequestOption) (*spotify.FullTrack, error)
}

// SpotifyConfig holds client credentials for the Spotify Web API.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	Market       string
}

// SpotifyResolver turns Spotify track links into tracks without a node id.
// The node later finds them by searching artist and title.
type SpotifyResolver struct {
	client spotifyTrackFetcher
	market string
}

// NewSpotifyResolver creates a resolver authenticated with the client
// credentials flow. Tokens are refreshed by the returned HTTP client.
func NewSpotifyResolver(ctx context.Context, cfg SpotifyConfig) (*SpotifyResolver, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret are required")
	}

	credentials := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if _, err := credentials.Token(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to obtain spotify token")
	}

	client := spotify.New(credentials.Client(context.Background()), spotify.WithRetry(true))
	return newSpotifyResolver(client, cfg.Market), nil
}

func newSpotifyResolver(client spotifyTrackFetcher, market string) *SpotifyResolver {
	return &SpotifyResolver{client: client, market: market}
}

// Resolve fetches the linked track. Queries that are not Spotify track links
// are left to the node.
func (r *SpotifyResolver) Resolve(
	ctx context.Context,
	query *domain.SearchQuery,
) (*domain.Track, bool, error) {
	id, ok := query.SpotifyTrackID()
	if !ok {
		return nil, false, nil
	}

	var opts []spotify.RequestOption
	if r.market != "" {
		opts = append(opts, spotify.Market(r.market))
	}

	full, err := r.client.GetTrack(ctx, spotify.ID(id), opts...)
	if err != nil {
		return nil, true, errors.Wrapf(err, "failed to fetch spotify track %s", id)
	}
	return spotifyTrackToDomain(full), true, nil
}

func spotifyTrackToDomain(full *spotify.FullTrack) *domain.Track {
	artists := lo.Map(full.Artists, func(a spotify.SimpleArtist, _ int) string {
		return a.Name
	})

	var artworkURL string
	if len(full.Album.Images) > 0 {
		artworkURL = full.Album.Images[0].URL
	}

	return &domain.Track{
		Identifier: string(full.ID),
		Title:      full.Name,
		Author:     strings.Join(artists, ", "),
		Duration:   time.Duration(full.Duration) * time.Millisecond,
		URI:        full.ExternalURLs["spotify"],
		ArtworkURL: artworkURL,
		SourceName: string(domain.TrackSourceSpotify),
	}
}

var _ ports.SecondaryResolver = (*SpotifyResolver)(nil)
