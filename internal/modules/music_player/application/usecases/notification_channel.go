package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
)

// NotificationChannelService handles updating the notification channel for a guild's player.
type NotificationChannelService struct {
	players application.PlayerRegistry
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(players application.PlayerRegistry) *NotificationChannelService {
	return &NotificationChannelService{players: players}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID // zero turns notifications off
}

// Set updates the notification channel of the guild's player.
func (n *NotificationChannelService) Set(input SetNotificationChannelInput) error {
	player, err := lookupPlayer(n.players, input.GuildID, 0)
	if err != nil {
		return err
	}
	player.SetNotificationChannel(input.ChannelID)
	return nil
}
