package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider reads voice state from the gateway cache.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel ID the user is currently in.
	// Returns 0 if the user is not in a voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// CountListeners returns the number of non-bot members in the voice channel.
	CountListeners(guildID, channelID snowflake.ID) (int, error)
}
