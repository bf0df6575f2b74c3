package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// GuildSettings are the per-guild player preferences that outlive a connection.
type GuildSettings struct {
	Volume int
	DND    bool
}

// SettingsStore persists guild settings.
type SettingsStore interface {
	// Load returns the stored settings, or ok=false when none are stored.
	Load(ctx context.Context, guildID snowflake.ID) (settings GuildSettings, ok bool, err error)
	Save(ctx context.Context, guildID snowflake.ID, settings GuildSettings) error
}

// PlayRecord is one started track.
type PlayRecord struct {
	GuildID     snowflake.ID
	RequesterID snowflake.ID
	Track       *domain.Track
	PlayedAt    time.Time
}

// TrackPlayCount is an aggregated stats row.
type TrackPlayCount struct {
	Title string
	URI   string
	Plays int
}

// PlayRecorder stores play history.
type PlayRecorder interface {
	RecordPlay(ctx context.Context, record PlayRecord) error
	TopTracks(ctx context.Context, guildID snowflake.ID, limit int) ([]TrackPlayCount, error)
}
