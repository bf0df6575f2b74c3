package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

func TestTrackLoaderService_LoadTracks(t *testing.T) {
	spotifyTrack := &domain.Track{
		Title:      "Spotify Song",
		Author:     "Band",
		URI:        "https://open.spotify.com/track/abc",
		SourceName: "spotify",
	}

	tests := []struct {
		name         string
		query        string
		resolver     *mockTrackResolver
		secondary    *mockSecondaryResolver
		wantErr      error
		wantTracks   []string
		wantPlaylist string
		wantQuery    string
	}{
		{
			name:  "search returns first result",
			query: "never gonna",
			resolver: &mockTrackResolver{loadResult: &ports.LoadResult{
				Type:   ports.LoadTypeSearch,
				Tracks: []*domain.Track{mockTrack("a"), mockTrack("b")},
			}},
			wantTracks: []string{"a"},
			wantQuery:  "ytsearch:never gonna",
		},
		{
			name:  "url is passed through",
			query: "https://youtu.be/xyz",
			resolver: &mockTrackResolver{loadResult: &ports.LoadResult{
				Type:   ports.LoadTypeTrack,
				Tracks: []*domain.Track{mockTrack("xyz")},
			}},
			wantTracks: []string{"xyz"},
			wantQuery:  "https://youtu.be/xyz",
		},
		{
			name:  "playlist returns every track",
			query: "https://youtube.com/playlist?list=1",
			resolver: &mockTrackResolver{loadResult: &ports.LoadResult{
				Type:         ports.LoadTypePlaylist,
				Tracks:       []*domain.Track{mockTrack("a"), mockTrack("b")},
				PlaylistName: "mix",
			}},
			wantTracks:   []string{"a", "b"},
			wantPlaylist: "mix",
			wantQuery:    "https://youtube.com/playlist?list=1",
		},
		{
			name:     "empty result",
			query:    "nothing",
			resolver: &mockTrackResolver{loadResult: &ports.LoadResult{Type: ports.LoadTypeEmpty}},
			wantErr:  ErrNoResults,
		},
		{
			name:     "node exception",
			query:    "broken",
			resolver: &mockTrackResolver{loadResult: &ports.LoadResult{Type: ports.LoadTypeError, Err: "blocked"}},
			wantErr:  ErrLoadFailed,
		},
		{
			name:     "node unreachable",
			query:    "anything",
			resolver: &mockTrackResolver{loadErr: errors.New("connection refused")},
			wantErr:  ErrLoadFailed,
		},
		{
			name:     "blank query",
			query:    "   ",
			resolver: &mockTrackResolver{},
			wantErr:  ErrNoResults,
		},
		{
			name:       "spotify link uses secondary resolver",
			query:      "https://open.spotify.com/track/abc",
			resolver:   &mockTrackResolver{},
			secondary:  &mockSecondaryResolver{track: spotifyTrack},
			wantTracks: []string{""},
		},
		{
			name:      "secondary resolver failure",
			query:     "https://open.spotify.com/track/abc",
			resolver:  &mockTrackResolver{},
			secondary: &mockSecondaryResolver{err: errors.New("token expired")},
			wantErr:   ErrLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var svc *TrackLoaderService
			if tt.secondary != nil {
				svc = NewTrackLoaderService(tt.resolver, tt.secondary)
			} else {
				svc = NewTrackLoaderService(tt.resolver)
			}

			out, err := svc.LoadTracks(context.Background(), LoadTracksInput{Query: tt.query})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out.Tracks) != len(tt.wantTracks) {
				t.Fatalf("expected %d tracks, got %d", len(tt.wantTracks), len(out.Tracks))
			}
			for i, id := range tt.wantTracks {
				if out.Tracks[i].Identifier != id {
					t.Errorf("track %d: expected %q, got %q", i, id, out.Tracks[i].Identifier)
				}
			}
			if out.PlaylistName != tt.wantPlaylist {
				t.Errorf("expected playlist %q, got %q", tt.wantPlaylist, out.PlaylistName)
			}
			if tt.wantQuery != "" && (len(tt.resolver.queries) != 1 || tt.resolver.queries[0] != tt.wantQuery) {
				t.Errorf("expected node query %q, got %v", tt.wantQuery, tt.resolver.queries)
			}
			if tt.secondary != nil && len(tt.resolver.queries) != 0 {
				t.Error("expected node not to be queried")
			}
		})
	}
}

func TestTrackLoaderService_SearchTracks(t *testing.T) {
	resolver := &mockTrackResolver{loadResult: &ports.LoadResult{
		Type:   ports.LoadTypeSearch,
		Tracks: []*domain.Track{mockTrack("a"), mockTrack("b"), mockTrack("c")},
	}}
	svc := NewTrackLoaderService(resolver)

	out, err := svc.SearchTracks(context.Background(), SearchTracksInput{Query: "abc", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) != 2 {
		t.Errorf("expected 2 tracks, got %d", len(out.Tracks))
	}

	out, err = svc.SearchTracks(context.Background(), SearchTracksInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) != 0 || len(resolver.queries) != 1 {
		t.Error("expected empty query to skip the node")
	}
}

func TestAutocompleteService(t *testing.T) {
	registry := newMockRegistry()
	registry.playing(&mockHandle{}, "a", "b", "c")
	resolver := &mockTrackResolver{loadResult: &ports.LoadResult{
		Type:   ports.LoadTypeSearch,
		Tracks: make([]*domain.Track, 30),
	}}
	svc := NewAutocompleteService(registry, NewTrackLoaderService(resolver))

	if got := len(svc.QueueEntries(testGuildID).Entries); got != 2 {
		t.Errorf("expected 2 queued entries, got %d", got)
	}

	out, err := svc.SearchTracks(context.Background(), SearchTracksInput{Query: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) != defaultSuggestionLimit {
		t.Errorf("expected %d suggestions, got %d", defaultSuggestionLimit, len(out.Tracks))
	}

	if got := NewAutocompleteService(newMockRegistry(), nil).QueueEntries(testGuildID); len(got.Entries) != 0 {
		t.Error("expected no entries without a player")
	}
}
