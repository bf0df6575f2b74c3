package application

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerRegistry holds the live player of each connected guild.
// A player is added when the bot connects and removed when it is torn down.
type PlayerRegistry interface {
	Get(guildID snowflake.ID) (*Player, bool)
	// Add stores the player, returning false if the guild already has one.
	Add(player *Player) bool
	// Remove deletes and returns the guild's player.
	Remove(guildID snowflake.ID) (*Player, bool)
	All() []*Player
	Count() int
}

// DestroyPlayer removes the guild's player from the registry and destroys it.
// It reports whether a player was found.
func DestroyPlayer(ctx context.Context, registry PlayerRegistry, guildID snowflake.ID) (bool, error) {
	player, ok := registry.Remove(guildID)
	if !ok {
		return false, nil
	}
	return true, player.Destroy(ctx)
}
