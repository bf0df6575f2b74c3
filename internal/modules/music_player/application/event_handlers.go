package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// TrackEventHandler reacts to track lifecycle events reported by the node.
type TrackEventHandler struct {
	players    PlayerRegistry
	subscriber ports.EventSubscriber
	recorder   ports.PlayRecorder
}

// NewTrackEventHandler creates a new TrackEventHandler. recorder may be nil.
func NewTrackEventHandler(
	players PlayerRegistry,
	subscriber ports.EventSubscriber,
	recorder ports.PlayRecorder,
) *TrackEventHandler {
	return &TrackEventHandler{
		players:    players,
		subscriber: subscriber,
		recorder:   recorder,
	}
}

// Start registers the handlers with the subscriber.
func (h *TrackEventHandler) Start() {
	h.subscriber.OnTrackStarted(h.HandleTrackStarted)
	h.subscriber.OnTrackEnded(h.HandleTrackEnded)
	h.subscriber.OnTrackException(h.HandleTrackException)

	slog.Debug("track event handlers registered")
}

// HandleTrackStarted updates the loop-queue snapshot and records the play.
func (h *TrackEventHandler) HandleTrackStarted(ctx context.Context, event domain.TrackStartedEvent) {
	player, ok := h.players.Get(event.GuildID)
	if !ok {
		return
	}

	entry := player.HandleTrackStart(event.Track)
	if entry == nil || h.recorder == nil {
		return
	}

	record := ports.PlayRecord{
		GuildID:     event.GuildID,
		RequesterID: entry.RequesterID,
		Track:       entry.Track,
		PlayedAt:    time.Now().UTC(),
	}
	if err := h.recorder.RecordPlay(ctx, record); err != nil {
		slog.Warn("failed to record play", "guild", event.GuildID, "error", err)
	}
}

// HandleTrackEnded advances the guild's player.
func (h *TrackEventHandler) HandleTrackEnded(ctx context.Context, event domain.TrackEndedEvent) {
	player, ok := h.players.Get(event.GuildID)
	if !ok {
		slog.Debug("track ended for guild without player", "guild", event.GuildID)
		return
	}

	if err := player.HandleTrackEnd(ctx, event.Track, event.Reason); err != nil {
		slog.Error("failed to advance queue",
			"guild", event.GuildID,
			"reason", event.Reason,
			"error", err,
		)
	}
}

// HandleTrackException logs node failures. A stuck track is advanced as if it
// had failed to load.
func (h *TrackEventHandler) HandleTrackException(ctx context.Context, event domain.TrackExceptionEvent) {
	title := ""
	if event.Track != nil {
		title = event.Track.Title
	}
	slog.Warn("track playback failed",
		"guild", event.GuildID,
		"track", title,
		"message", event.Message,
		"stuck", event.Stuck,
		"threshold", event.Threshold,
	)

	if !event.Stuck {
		return
	}
	h.HandleTrackEnded(ctx, domain.TrackEndedEvent{
		GuildID: event.GuildID,
		Track:   event.Track,
		Reason:  domain.TrackEndLoadFailed,
	})
}

// VoiceActivityHandler reacts to voice state changes of the bot and of members.
type VoiceActivityHandler struct {
	players    PlayerRegistry
	voiceState ports.VoiceStateProvider
}

// NewVoiceActivityHandler creates a new VoiceActivityHandler.
func NewVoiceActivityHandler(
	players PlayerRegistry,
	voiceState ports.VoiceStateProvider,
) *VoiceActivityHandler {
	return &VoiceActivityHandler{
		players:    players,
		voiceState: voiceState,
	}
}

// HandleBotVoiceStateUpdate handles the bot's own voice state. A zero after
// channel means the bot lost its voice connection.
func (h *VoiceActivityHandler) HandleBotVoiceStateUpdate(
	ctx context.Context,
	guildID, before, after snowflake.ID,
) {
	player, ok := h.players.Get(guildID)
	if !ok {
		return
	}

	if after == 0 {
		if player.IsDestroyed() {
			return
		}
		slog.Info("bot left voice channel, destroying player", "guild", guildID)
		if _, err := DestroyPlayer(ctx, h.players, guildID); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
		return
	}

	if before == after || player.ChannelID() == after {
		return
	}

	slog.Info("bot moved voice channel", "guild", guildID, "from", before, "to", after)
	if err := player.HandleChannelMove(ctx, after); err != nil {
		slog.Warn("failed to settle playback after channel move", "guild", guildID, "error", err)
	}
	h.updatePauseTimer(player, guildID, after)
}

// HandleMemberVoiceStateUpdate tracks listeners entering and leaving the
// player's channel.
func (h *VoiceActivityHandler) HandleMemberVoiceStateUpdate(
	_ context.Context,
	guildID, before, after snowflake.ID,
) {
	if before == after {
		return
	}

	player, ok := h.players.Get(guildID)
	if !ok {
		return
	}

	channelID := player.ChannelID()
	switch channelID {
	case after:
		player.CancelPauseTimer()
	case before:
		h.updatePauseTimer(player, guildID, channelID)
	}
}

func (h *VoiceActivityHandler) updatePauseTimer(player *Player, guildID, channelID snowflake.ID) {
	listeners, err := h.voiceState.CountListeners(guildID, channelID)
	if err != nil {
		slog.Warn("failed to count listeners", "guild", guildID, "channel", channelID, "error", err)
		return
	}
	if listeners > 0 {
		player.CancelPauseTimer()
		return
	}
	if player.StartPauseTimer() {
		slog.Debug("armed pause timer", "guild", guildID, "channel", channelID)
	}
}
