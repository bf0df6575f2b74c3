package infrastructure

import (
	"cmp"
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
)

// MemoryPlayerRegistry is an in-memory implementation of application.PlayerRegistry.
type MemoryPlayerRegistry struct {
	mu      sync.RWMutex
	players map[snowflake.ID]*application.Player
}

// NewMemoryPlayerRegistry creates a new MemoryPlayerRegistry.
func NewMemoryPlayerRegistry() *MemoryPlayerRegistry {
	return &MemoryPlayerRegistry{
		players: make(map[snowflake.ID]*application.Player),
	}
}

// Get returns the player of the given guild.
func (r *MemoryPlayerRegistry) Get(guildID snowflake.ID) (*application.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.players[guildID]
	return player, ok
}

// Add stores the player unless its guild already has one.
func (r *MemoryPlayerRegistry) Add(player *application.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[player.GuildID()]; exists {
		return false
	}
	r.players[player.GuildID()] = player
	return true
}

// Remove deletes and returns the player of the given guild.
func (r *MemoryPlayerRegistry) Remove(guildID snowflake.ID) (*application.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[guildID]
	if ok {
		delete(r.players, guildID)
	}
	return player, ok
}

// All returns every live player ordered by guild ID.
func (r *MemoryPlayerRegistry) All() []*application.Player {
	r.mu.RLock()
	players := lo.Values(r.players)
	r.mu.RUnlock()

	slices.SortFunc(players, func(a, b *application.Player) int {
		return cmp.Compare(a.GuildID(), b.GuildID())
	})
	return players
}

// Count returns the number of live players.
func (r *MemoryPlayerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.players)
}

// Ensure MemoryPlayerRegistry implements application.PlayerRegistry.
var _ application.PlayerRegistry = (*MemoryPlayerRegistry)(nil)
