package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
)

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID         snowflake.ID
	voiceActivity *application.VoiceActivityHandler
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	voiceActivity *application.VoiceActivityHandler,
) *EventHandlers {
	return &EventHandlers{
		botID:         botID,
		voiceActivity: voiceActivity,
	}
}

// HandleVoiceStateUpdate routes VoiceStateUpdate events for the bot and for
// the members around it.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if event.VoiceState == nil {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// A zero channel means the user is not in voice.
	before, err := parseOptionalID(beforeChannelID(event))
	if err != nil {
		slog.Error("failed to parse previous channel ID in voice state update", "error", err)
		return
	}
	after, err := parseOptionalID(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	ctx := context.Background()
	if event.UserID == h.botID.String() {
		h.voiceActivity.HandleBotVoiceStateUpdate(ctx, guildID, before, after)
		return
	}
	h.voiceActivity.HandleMemberVoiceStateUpdate(ctx, guildID, before, after)
}

func beforeChannelID(event *discordgo.VoiceStateUpdate) string {
	if event.BeforeUpdate == nil {
		return ""
	}
	return event.BeforeUpdate.ChannelID
}

func parseOptionalID(raw string) (snowflake.ID, error) {
	if raw == "" {
		return 0, nil
	}
	return snowflake.Parse(raw)
}
