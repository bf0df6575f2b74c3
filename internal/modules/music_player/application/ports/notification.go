package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// NowPlayingInfo contains the data rendered in a "Now Playing" notification.
type NowPlayingInfo struct {
	GuildID snowflake.ID
	Entry   domain.QueueEntry
	Looping bool
}

// Notifier sends player notifications to a text channel.
type Notifier interface {
	SendNowPlaying(ctx context.Context, channelID snowflake.ID, info NowPlayingInfo) error
	SendEndOfQueue(ctx context.Context, channelID snowflake.ID) error
	// SendAutoPaused reports that playback was paused because the channel emptied.
	SendAutoPaused(ctx context.Context, channelID snowflake.ID) error
	// SendIdleDisconnect reports that the bot left after being idle.
	SendIdleDisconnect(ctx context.Context, channelID snowflake.ID) error
}
