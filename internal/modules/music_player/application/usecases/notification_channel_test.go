package usecases

import (
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestNotificationChannelService_Set(t *testing.T) {
	newChannelID := snowflake.ID(99)

	t.Run("successfully updates notification channel", func(t *testing.T) {
		registry := newMockRegistry()
		player := registry.connectPlayer(&mockHandle{})

		service := NewNotificationChannelService(registry)
		err := service.Set(SetNotificationChannelInput{
			GuildID:   testGuildID,
			ChannelID: newChannelID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if player.NotificationChannel() != newChannelID {
			t.Errorf(
				"expected notification channel ID %d, got %d",
				newChannelID,
				player.NotificationChannel(),
			)
		}
	})

	t.Run("zero channel turns notifications off", func(t *testing.T) {
		registry := newMockRegistry()
		player := registry.connectPlayer(&mockHandle{})
		player.SetNotificationChannel(newChannelID)

		service := NewNotificationChannelService(registry)
		if err := service.Set(SetNotificationChannelInput{GuildID: testGuildID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if player.NotificationChannel() != 0 {
			t.Errorf("expected no notification channel, got %d", player.NotificationChannel())
		}
	})

	t.Run("returns ErrNotConnected when no player exists", func(t *testing.T) {
		service := NewNotificationChannelService(newMockRegistry())
		err := service.Set(SetNotificationChannelInput{
			GuildID:   testGuildID,
			ChannelID: newChannelID,
		})
		if !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})
}
