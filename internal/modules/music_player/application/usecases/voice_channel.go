package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
)

// PlayerDefaults holds the settings every new player starts with.
type PlayerDefaults struct {
	MaxQueueLength    int
	PauseTimeout      time.Duration
	DisconnectTimeout time.Duration
	MoveSettleDelay   time.Duration
	Volume            int
}

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID   snowflake.ID
	AlreadyConnected bool
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	players    application.PlayerRegistry
	node       ports.VoiceNode
	voiceState ports.VoiceStateProvider
	notifier   ports.Notifier
	settings   ports.SettingsStore
	scheduler  application.Scheduler
	defaults   PlayerDefaults

	// joinLocks serializes Join per guild so a guild is connected once.
	joinLocksMu sync.Mutex
	joinLocks   map[snowflake.ID]*sync.Mutex
}

// NewVoiceChannelService creates a new VoiceChannelService.
// settings and scheduler may be nil.
func NewVoiceChannelService(
	players application.PlayerRegistry,
	node ports.VoiceNode,
	voiceState ports.VoiceStateProvider,
	notifier ports.Notifier,
	settings ports.SettingsStore,
	scheduler application.Scheduler,
	defaults PlayerDefaults,
) *VoiceChannelService {
	return &VoiceChannelService{
		players:    players,
		node:       node,
		voiceState: voiceState,
		notifier:   notifier,
		settings:   settings,
		scheduler:  scheduler,
		defaults:   defaults,
		joinLocks:  make(map[snowflake.ID]*sync.Mutex),
	}
}

func (v *VoiceChannelService) lockJoin(guildID snowflake.ID) (unlock func()) {
	v.joinLocksMu.Lock()
	lock, ok := v.joinLocks[guildID]
	if !ok {
		lock = &sync.Mutex{}
		v.joinLocks[guildID] = lock
	}
	v.joinLocksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Join connects the bot to a voice channel and creates the guild's player.
// A connected bot is moved instead, keeping its queue.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	if v.node == nil || v.voiceState == nil {
		return nil, ErrNodeUnavailable
	}

	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		if userChannel == 0 {
			return nil, ErrNotInVoiceChannel
		}
		voiceChannelID = userChannel
	}

	unlock := v.lockJoin(input.GuildID)
	defer unlock()

	if player, ok := v.players.Get(input.GuildID); ok && !player.IsDestroyed() {
		if input.NotificationChannelID != 0 {
			player.SetNotificationChannel(input.NotificationChannelID)
		}
		if player.ChannelID() == voiceChannelID {
			return &JoinOutput{VoiceChannelID: voiceChannelID, AlreadyConnected: true}, nil
		}
		// The bot's voice state update finishes the move on the player.
		if err := v.node.MoveChannel(ctx, input.GuildID, voiceChannelID); err != nil {
			return nil, fmt.Errorf("failed to move voice channel: %w", err)
		}
		return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
	}

	handle, err := v.node.Connect(ctx, input.GuildID, voiceChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	stored := v.loadSettings(ctx, input.GuildID)
	player := application.NewPlayer(application.PlayerConfig{
		GuildID:           input.GuildID,
		ChannelID:         voiceChannelID,
		Handle:            handle,
		Notifier:          v.notifier,
		Scheduler:         v.scheduler,
		MaxQueueLength:    v.defaults.MaxQueueLength,
		PauseTimeout:      v.defaults.PauseTimeout,
		DisconnectTimeout: v.defaults.DisconnectTimeout,
		MoveSettleDelay:   v.defaults.MoveSettleDelay,
		Volume:            stored.Volume,
		DND:               stored.DND,
		OnIdleDisconnect:  v.destroyIdle,
	})
	player.SetNotificationChannel(input.NotificationChannelID)

	if !v.players.Add(player) {
		// The node handle is per guild and now backs the registered player, so
		// the unregistered one is dropped without tearing the handle down.
		slog.Warn("player registered concurrently, dropping duplicate", "guild", input.GuildID)
		return &JoinOutput{VoiceChannelID: voiceChannelID, AlreadyConnected: true}, nil
	}

	if stored.Volume != application.DefaultVolume {
		if err := player.SetVolume(ctx, stored.Volume); err != nil {
			slog.Warn("failed to restore volume", "guild", input.GuildID, "error", err)
		}
	}
	player.StartDisconnectTimer()

	slog.Info("joined voice channel",
		"guild", input.GuildID,
		"channel", voiceChannelID,
		"session", player.SessionID().String(),
	)

	return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
}

// Leave destroys the guild's player and disconnects from voice.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	found, err := application.DestroyPlayer(ctx, v.players, input.GuildID)
	if !found {
		return ErrNotConnected
	}
	return err
}

func (v *VoiceChannelService) destroyIdle(player *application.Player) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if current, ok := v.players.Get(player.GuildID()); !ok || current != player {
		_ = player.Destroy(ctx)
		return
	}
	if _, err := application.DestroyPlayer(ctx, v.players, player.GuildID()); err != nil {
		slog.Warn("failed to destroy idle player", "guild", player.GuildID(), "error", err)
	}
}

func (v *VoiceChannelService) loadSettings(ctx context.Context, guildID snowflake.ID) ports.GuildSettings {
	settings := ports.GuildSettings{Volume: v.defaults.Volume}
	if settings.Volume <= 0 {
		settings.Volume = application.DefaultVolume
	}
	if v.settings == nil {
		return settings
	}

	stored, ok, err := v.settings.Load(ctx, guildID)
	if err != nil {
		slog.Warn("failed to load guild settings", "guild", guildID, "error", err)
		return settings
	}
	if !ok {
		return settings
	}
	if stored.Volume > 0 {
		settings.Volume = stored.Volume
	}
	settings.DND = stored.DND
	return settings
}
