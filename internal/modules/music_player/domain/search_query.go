package domain

import (
	"net/url"
	"strings"
)

// SearchSource represents the source for searching tracks.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceYouTubeMusic searches YouTube Music.
	SourceYouTubeMusic SearchSource = "ytmsearch"
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
	// SourceDirect indicates a direct URL (no search prefix).
	SourceDirect SearchSource = ""
)

// SearchQuery represents a query for searching tracks.
type SearchQuery struct {
	Query  string       // The search term or URL
	Source SearchSource // The search source
	IsURL  bool         // Whether the query is a direct URL
}

// NewSearchQuery creates a SearchQuery from user input, defaulting to YouTube search.
func NewSearchQuery(input string) *SearchQuery {
	return NewSearchQueryWithSource(input, SourceYouTube)
}

// NewSearchQueryWithSource creates a SearchQuery with a specific search source.
// URLs are always passed through directly.
func NewSearchQueryWithSource(input string, source SearchSource) *SearchQuery {
	input = strings.TrimSpace(input)

	if isURL(input) {
		return &SearchQuery{
			Query:  input,
			Source: SourceDirect,
			IsURL:  true,
		}
	}

	return &SearchQuery{
		Query:  input,
		Source: source,
	}
}

// LavalinkQuery returns the query string formatted for Lavalink.
func (q *SearchQuery) LavalinkQuery() string {
	if q.IsURL {
		return q.Query
	}
	return string(q.Source) + ":" + q.Query
}

// IsValid returns true if the query is not empty.
func (q *SearchQuery) IsValid() bool {
	return q.Query != ""
}

// SpotifyTrackID extracts the track id from an open.spotify.com track link or a
// spotify:track: URI. ok is false for anything else.
func (q *SearchQuery) SpotifyTrackID() (id string, ok bool) {
	if rest, found := strings.CutPrefix(q.Query, "spotify:track:"); found && rest != "" {
		return rest, true
	}
	if !q.IsURL {
		return "", false
	}

	u, err := url.Parse(q.Query)
	if err != nil || u.Host != "open.spotify.com" {
		return "", false
	}

	// Paths look like /track/<id> or /intl-xx/track/<id>.
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "track" && parts[i+1] != "" {
			return parts[i+1], true
		}
	}
	return "", false
}

func isURL(input string) bool {
	return strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "https://") ||
		strings.HasPrefix(input, "www.")
}

// FallbackSearchQuery builds a YouTube Music search for a track that has no
// node-native id.
func FallbackSearchQuery(t *Track) string {
	terms := strings.TrimSpace(t.Author + " " + t.Title)
	return string(SourceYouTubeMusic) + ":" + terms
}
