package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// Re-export engine types for presentation layer use.
// This allows presentation to depend only on usecases without importing application directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// QueueEntry is an alias for domain.QueueEntry.
type QueueEntry = domain.QueueEntry

// PlayerSnapshot is an alias for application.PlayerSnapshot.
type PlayerSnapshot = application.PlayerSnapshot

// lookupPlayer returns the guild's player and points its notifications at
// notificationChannelID when that is non-zero.
func lookupPlayer(
	players application.PlayerRegistry,
	guildID, notificationChannelID snowflake.ID,
) (*application.Player, error) {
	player, ok := players.Get(guildID)
	if !ok || player.IsDestroyed() {
		return nil, ErrNotConnected
	}
	if notificationChannelID != 0 {
		player.SetNotificationChannel(notificationChannelID)
	}
	return player, nil
}
