package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// PlayRequest describes what the node should play.
// When Encoded is empty the node re-resolves Identifier before playing.
type PlayRequest struct {
	Track      *domain.Track
	Encoded    string
	Identifier string
	Start      time.Duration // zero plays from the beginning
	End        time.Duration // zero plays to the end
}

// VoiceNode connects guild voice channels to the audio node.
type VoiceNode interface {
	// Connect joins the voice channel and returns a handle for the guild's node player.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) (PlayerHandle, error)

	// MoveChannel moves an existing connection to another channel of the same guild.
	MoveChannel(ctx context.Context, guildID, channelID snowflake.ID) error
}

// PlayerHandle controls a single guild's player on the audio node.
type PlayerHandle interface {
	// Play starts the requested track, replacing whatever is playing. It
	// returns the encoded track sent to the node.
	Play(ctx context.Context, req PlayRequest) (string, error)

	// SetPaused pauses or resumes playback.
	SetPaused(ctx context.Context, paused bool) error

	// Stop stops playback without leaving the channel.
	Stop(ctx context.Context) error

	// Seek moves the playback position.
	Seek(ctx context.Context, position time.Duration) error

	// SetVolume sets the volume in percent.
	SetVolume(ctx context.Context, percent int) error

	AddFilter(ctx context.Context, label string, filter domain.Filter, fastApply bool) error
	RemoveFilter(ctx context.Context, label string, fastApply bool) error
	HasFilter(label string) bool
	ClearFilters(ctx context.Context, fastApply bool) error

	// Position returns the current playback position as last reported by the node.
	Position() time.Duration

	// Destroy tears down the voice connection. Calls after the first are no-ops.
	Destroy(ctx context.Context) error
}
