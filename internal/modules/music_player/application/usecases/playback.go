package usecases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	Query                 string
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// PlayOutput contains the result of the Play use case.
type PlayOutput struct {
	Tracks       []*domain.Track
	PlaylistName string
	// Position is the 0-based queue position of the first track, or -1 when it
	// started playing right away.
	Position int
}

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	ClearedCount int
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID               snowflake.ID
	Count                 int          // Number of tracks to skip (defaults to 1)
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
	NextEntry    *domain.QueueEntry // nil if the queue ran out
}

// SeekInput contains the input for the Seek use case.
type SeekInput struct {
	GuildID               snowflake.ID
	Position              time.Duration
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// VolumeInput contains the input for the SetVolume use case.
type VolumeInput struct {
	GuildID               snowflake.ID
	Percent               int
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// LoopInput contains the input for the loop use cases.
type LoopInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// LoopOutput contains the loop mode after a loop use case.
type LoopOutput struct {
	Mode domain.LoopMode
}

// FilterInput contains the input for the ToggleFilter use case.
type FilterInput struct {
	GuildID snowflake.ID
	Name    string
}

// FilterOutput contains the result of the ToggleFilter use case.
type FilterOutput struct {
	Name    string
	Enabled bool
}

// DNDInput contains the input for the SetDND use case.
type DNDInput struct {
	GuildID snowflake.ID
	Enabled bool
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	players  application.PlayerRegistry
	loader   *TrackLoaderService
	settings ports.SettingsStore
}

// NewPlaybackService creates a new PlaybackService. settings may be nil.
func NewPlaybackService(
	players application.PlayerRegistry,
	loader *TrackLoaderService,
	settings ports.SettingsStore,
) *PlaybackService {
	return &PlaybackService{
		players:  players,
		loader:   loader,
		settings: settings,
	}
}

// Play loads the query and queues the result, starting playback when idle.
func (p *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	loaded, err := p.loader.LoadTracks(ctx, LoadTracksInput{Query: input.Query})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.QueueEntry, len(loaded.Tracks))
	for i, track := range loaded.Tracks {
		entries[i] = domain.NewQueueEntry(track, input.UserID)
	}

	position, err := player.Enqueue(ctx, entries...)
	if err != nil {
		return nil, translateError(err)
	}

	return &PlayOutput{
		Tracks:       loaded.Tracks,
		PlaylistName: loaded.PlaylistName,
		Position:     position,
	}, nil
}

// Pause pauses the current playback.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}

	switch player.State() {
	case domain.PlaybackStopped:
		return ErrNotPlaying
	case domain.PlaybackPaused:
		return ErrAlreadyPaused
	}

	return translateError(player.SetPause(ctx, true))
}

// Resume resumes the paused playback.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}

	switch player.State() {
	case domain.PlaybackStopped:
		return ErrNotPlaying
	case domain.PlaybackPlaying:
		return ErrNotPaused
	}

	return translateError(player.SetPause(ctx, false))
}

// Stop stops playback and clears the queue.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) (*StopOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}
	if player.State() == domain.PlaybackStopped {
		return nil, ErrNotPlaying
	}

	cleared, err := player.StopAndClear(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	return &StopOutput{ClearedCount: cleared}, nil
}

// Skip skips the current track and the next Count-1 queued tracks.
// Skipping past the last queued track stops playback.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	current := player.Current()
	if current == nil {
		return nil, ErrNotPlaying
	}

	count := input.Count
	if count <= 0 {
		count = 1
	}

	next, err := player.Skip(ctx, count)
	if errors.Is(err, domain.ErrQueueEmpty) && count == 1 {
		if err := player.Stop(ctx); err != nil {
			return nil, translateError(err)
		}
		return &SkipOutput{SkippedTrack: current.Track}, nil
	}
	if err != nil {
		return nil, translateError(err)
	}

	return &SkipOutput{
		SkippedTrack: current.Track,
		NextEntry:    &next,
	}, nil
}

// Seek moves the position of the current track.
func (p *PlaybackService) Seek(ctx context.Context, input SeekInput) error {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}
	return translateError(player.Seek(ctx, input.Position))
}

// SetVolume sets and remembers the guild's volume.
func (p *PlaybackService) SetVolume(ctx context.Context, input VolumeInput) error {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return err
	}
	if err := player.SetVolume(ctx, input.Percent); err != nil {
		return translateError(err)
	}

	p.saveSettings(ctx, player)
	return nil
}

// Loop toggles looping of the current track.
func (p *PlaybackService) Loop(_ context.Context, input LoopInput) (*LoopOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	mode, err := player.ToggleLoopTrack(input.UserID)
	if err != nil {
		return nil, translateError(err)
	}
	return &LoopOutput{Mode: mode}, nil
}

// LoopOnce toggles a single replay of the current track.
func (p *PlaybackService) LoopOnce(_ context.Context, input LoopInput) (*LoopOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}

	mode, err := player.LoopOnce(input.UserID)
	if err != nil {
		return nil, translateError(err)
	}
	return &LoopOutput{Mode: mode}, nil
}

// LoopQueue toggles looping of everything played from now on.
func (p *PlaybackService) LoopQueue(_ context.Context, input LoopInput) (*LoopOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, input.NotificationChannelID)
	if err != nil {
		return nil, err
	}
	return &LoopOutput{Mode: player.ToggleLoopQueue(input.UserID)}, nil
}

// ToggleFilter enables the named filter preset, or disables it when active.
func (p *PlaybackService) ToggleFilter(ctx context.Context, input FilterInput) (*FilterOutput, error) {
	player, err := lookupPlayer(p.players, input.GuildID, 0)
	if err != nil {
		return nil, err
	}

	filter, ok := domain.PresetFilter(input.Name)
	if !ok {
		return nil, ErrUnknownFilter
	}

	if player.HasFilter(input.Name) {
		if err := player.RemoveFilter(ctx, input.Name); err != nil {
			return nil, translateError(err)
		}
		return &FilterOutput{Name: input.Name, Enabled: false}, nil
	}

	if err := player.AddFilter(ctx, input.Name, filter); err != nil {
		return nil, translateError(err)
	}
	return &FilterOutput{Name: input.Name, Enabled: true}, nil
}

// ClearFilters removes every active filter.
func (p *PlaybackService) ClearFilters(ctx context.Context, guildID snowflake.ID) error {
	player, err := lookupPlayer(p.players, guildID, 0)
	if err != nil {
		return err
	}
	return translateError(player.ClearFilters(ctx))
}

// SetDND turns per-track notifications off or on and remembers the choice.
func (p *PlaybackService) SetDND(ctx context.Context, input DNDInput) error {
	player, err := lookupPlayer(p.players, input.GuildID, 0)
	if err != nil {
		return err
	}

	player.SetDND(input.Enabled)
	p.saveSettings(ctx, player)
	return nil
}

// NowPlaying returns a snapshot of the player with a track loaded.
func (p *PlaybackService) NowPlaying(guildID snowflake.ID) (*PlayerSnapshot, error) {
	player, err := lookupPlayer(p.players, guildID, 0)
	if err != nil {
		return nil, err
	}

	snap := player.Snapshot()
	if snap.Current == nil {
		return nil, ErrNotPlaying
	}
	return &snap, nil
}

func (p *PlaybackService) saveSettings(ctx context.Context, player *application.Player) {
	if p.settings == nil {
		return
	}

	settings := ports.GuildSettings{
		Volume: player.Volume(),
		DND:    player.DND(),
	}
	if err := p.settings.Save(ctx, player.GuildID(), settings); err != nil {
		slog.Warn("failed to save guild settings", "guild", player.GuildID(), "error", err)
	}
}
