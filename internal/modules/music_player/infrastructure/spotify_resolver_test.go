package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
)

type fakeSpotify struct {
	track *spotify.FullTrack
	err   error
	ids   []spotify.ID
}

func (f *fakeSpotify) GetTrack(
	_ context.Context,
	id spotify.ID,
	_ ...spotify.RequestOption,
) (*spotify.FullTrack, error) {
	f.ids = append(f.ids, id)
	return f.track, f.err
}

func TestSpotifyResolver_Resolve(t *testing.T) {
	full := &spotify.FullTrack{}
	full.ID = "4uLU6hMCjMI75M1A2tKUQC"
	full.Name = "Never Gonna Give You Up"
	full.Duration = 213_000
	full.Artists = []spotify.SimpleArtist{{Name: "Rick Astley"}, {Name: "Band"}}
	full.ExternalURLs = map[string]string{"spotify": "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC"}
	full.Album.Images = []spotify.Image{{URL: "https://i.scdn.co/image/cover"}}

	t.Run("track link", func(t *testing.T) {
		client := &fakeSpotify{track: full}
		resolver := newSpotifyResolver(client, "JP")

		got, ok, err := resolver.Resolve(context.Background(),
			domain.NewSearchQuery("https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=x"))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []spotify.ID{"4uLU6hMCjMI75M1A2tKUQC"}, client.ids)
		assert.Equal(t, &domain.Track{
			Identifier: "4uLU6hMCjMI75M1A2tKUQC",
			Title:      "Never Gonna Give You Up",
			Author:     "Rick Astley, Band",
			Duration:   213 * time.Second,
			URI:        "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			ArtworkURL: "https://i.scdn.co/image/cover",
			SourceName: "spotify",
		}, got)
		assert.False(t, got.HasNodeID())
	})

	t.Run("not a spotify link", func(t *testing.T) {
		client := &fakeSpotify{track: full}
		resolver := newSpotifyResolver(client, "")

		got, ok, err := resolver.Resolve(context.Background(), domain.NewSearchQuery("rick astley"))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Empty(t, client.ids)
	})

	t.Run("api failure", func(t *testing.T) {
		resolver := newSpotifyResolver(&fakeSpotify{err: errors.New("401")}, "")

		_, ok, err := resolver.Resolve(context.Background(), domain.NewSearchQuery("spotify:track:abc"))
		assert.True(t, ok)
		assert.Error(t, err)
	})
}
