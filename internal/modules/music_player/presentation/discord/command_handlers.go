package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/bot"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// commandTimeout bounds the work done for one command, node calls included.
const commandTimeout = 15 * time.Second

// errNotInGuild is returned for interactions outside of a server.
var errNotInGuild = errors.New("this command can only be used in a server")

// userFacingErrors are shown to the user as they are. Anything else is logged
// and replaced with a generic message.
var userFacingErrors = []error{
	errNotInGuild,
	usecases.ErrNotConnected,
	usecases.ErrNotInVoiceChannel,
	usecases.ErrNotPlaying,
	usecases.ErrAlreadyPaused,
	usecases.ErrNotPaused,
	usecases.ErrNoResults,
	usecases.ErrLoadFailed,
	usecases.ErrQueueEmpty,
	usecases.ErrQueueFull,
	usecases.ErrInvalidPosition,
	usecases.ErrInvalidVolume,
	usecases.ErrNotSeekable,
	usecases.ErrUnknownFilter,
	usecases.ErrNodeUnavailable,
	errInvalidSeekPosition,
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	voiceChannel        *usecases.VoiceChannelService
	playback            *usecases.PlaybackService
	queue               *usecases.QueueService
	notificationChannel *usecases.NotificationChannelService
	stats               *usecases.StatsService
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	voiceChannel *usecases.VoiceChannelService,
	playback *usecases.PlaybackService,
	queue *usecases.QueueService,
	notificationChannel *usecases.NotificationChannelService,
	stats *usecases.StatsService,
) *CommandHandlers {
	return &CommandHandlers{
		voiceChannel:        voiceChannel,
		playback:            playback,
		queue:               queue,
		notificationChannel: notificationChannel,
		stats:               stats,
	}
}

// commandContext holds the ids every command needs.
type commandContext struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseCommandContext(i *discordgo.InteractionCreate) (commandContext, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return commandContext{}, errNotInGuild
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return commandContext{}, fmt.Errorf("invalid guild id: %w", err)
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return commandContext{}, fmt.Errorf("invalid user id: %w", err)
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return commandContext{}, fmt.Errorf("invalid channel id: %w", err)
	}

	return commandContext{guildID: guildID, userID: userID, channelID: channelID}, nil
}

func findOption(
	options []*discordgo.ApplicationCommandInteractionDataOption,
	name string,
) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var voiceChannelID snowflake.ID
	if opt := findOption(i.ApplicationCommandData().Options, "channel"); opt != nil {
		voiceChannelID, err = snowflake.Parse(fmt.Sprint(opt.Value))
		if err != nil {
			return respondError(r, fmt.Errorf("invalid voice channel: %w", err))
		}
	}

	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               cc.guildID,
		UserID:                cc.userID,
		NotificationChannelID: cc.channelID,
		VoiceChannelID:        voiceChannelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	if output.AlreadyConnected {
		return respondSuccess(r, fmt.Sprintf("Already connected to <#%d>.", output.VoiceChannelID))
	}
	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := h.voiceChannel.Leave(ctx, usecases.LeaveInput{GuildID: cc.guildID}); err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command. It joins the caller's channel first
// when the bot is not connected yet.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var query string
	if opt := findOption(i.ApplicationCommandData().Options, "query"); opt != nil {
		query = opt.StringValue()
	}

	if err := r.Defer(); err != nil {
		return err
	}

	_, err = h.voiceChannel.Join(ctx, usecases.JoinInput{
		GuildID:               cc.guildID,
		UserID:                cc.userID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	output, err := h.playback.Play(ctx, usecases.PlayInput{
		GuildID:               cc.guildID,
		UserID:                cc.userID,
		Query:                 query,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, describePlay(output))
}

func describePlay(output *usecases.PlayOutput) string {
	if output.PlaylistName != "" || len(output.Tracks) > 1 {
		name := output.PlaylistName
		if name == "" {
			name = "playlist"
		}
		return fmt.Sprintf("Added **%d tracks** from **%s** to the queue.", len(output.Tracks), name)
	}

	track := output.Tracks[0]
	if output.Position < 0 {
		return fmt.Sprintf("Now playing %s.", trackLink(track))
	}
	return fmt.Sprintf("Added %s to the queue at position %d.", trackLink(track), output.Position+1)
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	err = h.playback.Pause(ctx, usecases.PauseInput{
		GuildID:               cc.guildID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	err = h.playback.Resume(ctx, usecases.ResumeInput{
		GuildID:               cc.guildID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, "Resumed playback.")
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := h.playback.Stop(ctx, usecases.StopInput{
		GuildID:               cc.guildID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	if output.ClearedCount == 0 {
		return respondSuccess(r, "Stopped playback.")
	}
	return respondSuccess(r, fmt.Sprintf("Stopped playback and cleared %d queued tracks.", output.ClearedCount))
}

// HandleSkip handles the /skip command.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	count := 1
	if opt := findOption(i.ApplicationCommandData().Options, "count"); opt != nil {
		count = int(opt.IntValue())
	}

	output, err := h.playback.Skip(ctx, usecases.SkipInput{
		GuildID:               cc.guildID,
		Count:                 count,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	description := fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack))
	if output.NextEntry == nil {
		description += " The queue is now empty."
	}
	return respondSuccess(r, description)
}

// HandleSeek handles the /seek command.
func (h *CommandHandlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var raw string
	if opt := findOption(i.ApplicationCommandData().Options, "position"); opt != nil {
		raw = opt.StringValue()
	}
	position, err := parseSeekPosition(raw)
	if err != nil {
		return respondError(r, err)
	}

	err = h.playback.Seek(ctx, usecases.SeekInput{
		GuildID:               cc.guildID,
		Position:              position,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Jumped to %s.", domain.FormatDuration(position)))
}

var errInvalidSeekPosition = errors.New("position must look like 90, 1:30 or 1:02:03")

// parseSeekPosition parses seconds, m:ss or h:mm:ss.
func parseSeekPosition(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errInvalidSeekPosition
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, errInvalidSeekPosition
	}

	var total int
	for idx, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, errInvalidSeekPosition
		}
		if idx > 0 && n >= 60 {
			return 0, errInvalidSeekPosition
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var percent int
	if opt := findOption(i.ApplicationCommandData().Options, "percent"); opt != nil {
		percent = int(opt.IntValue())
	}

	err = h.playback.SetVolume(ctx, usecases.VolumeInput{
		GuildID:               cc.guildID,
		Percent:               percent,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Volume set to %d%%.", percent))
}

// HandleLoop handles the /loop command.
func (h *CommandHandlers) HandleLoop(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleLoop(i, r, h.playback.Loop)
}

// HandleLoopOnce handles the /looponce command.
func (h *CommandHandlers) HandleLoopOnce(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleLoop(i, r, h.playback.LoopOnce)
}

// HandleLoopQueue handles the /loopqueue command.
func (h *CommandHandlers) HandleLoopQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleLoop(i, r, h.playback.LoopQueue)
}

func (h *CommandHandlers) handleLoop(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	toggle func(context.Context, usecases.LoopInput) (*usecases.LoopOutput, error),
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	output, err := toggle(ctx, usecases.LoopInput{
		GuildID:               cc.guildID,
		UserID:                cc.userID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, describeLoopMode(output.Mode))
}

func describeLoopMode(mode domain.LoopMode) string {
	switch mode {
	case domain.LoopModeTrack:
		return "Now looping the current track."
	case domain.LoopModeTrackOnce:
		return "The current track will play one more time."
	case domain.LoopModeQueue:
		return "Now looping the queue."
	default:
		return "Loop disabled."
	}
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondErrorMessage(r, "Invalid subcommand.")
	}

	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "list":
		return h.handleQueueList(cc, r, subCmd.Options)
	case "remove":
		return h.handleQueueRemove(cc, r, subCmd.Options)
	case "move":
		return h.handleQueueMove(cc, r, subCmd.Options)
	case "shuffle":
		return h.handleQueueShuffle(cc, r)
	case "clear":
		return h.handleQueueClear(cc, r)
	default:
		return respondErrorMessage(r, "Unknown subcommand.")
	}
}

func (h *CommandHandlers) handleQueueList(
	cc commandContext,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	var page int
	if opt := findOption(options, "page"); opt != nil {
		page = int(opt.IntValue())
	}

	output, err := h.queue.List(usecases.QueueListInput{
		GuildID:               cc.guildID,
		Page:                  page,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{queueEmbed(output)},
		},
	})
}

func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	title := "Queue"
	switch output.LoopMode {
	case domain.LoopModeTrack, domain.LoopModeTrackOnce:
		title = "Queue \U0001F502" // 🔂
	case domain.LoopModeQueue:
		title = "Queue \U0001F501" // 🔁
	}

	var sb strings.Builder
	if output.Current != nil {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s - %s\n", trackLink(output.Current.Track), output.Current.Track.FormattedDuration())
	}

	if output.TotalEntries == 0 {
		sb.WriteString("Queue is empty.")
	} else {
		sb.WriteString("### Up Next\n")
		for idx, entry := range output.Entries {
			writeTrackLine(&sb, output.PageOffset+idx+1, entry)
		}
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: sb.String(),
		Color:       colorSuccess,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf(
				"Page %d/%d • %d tracks • %s",
				output.CurrentPage,
				output.TotalPages,
				output.TotalEntries,
				domain.FormatDuration(output.TotalDuration),
			),
		},
	}
}

func (h *CommandHandlers) handleQueueRemove(
	cc commandContext,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	var position int
	if opt := findOption(options, "position"); opt != nil {
		position = int(opt.IntValue())
	}

	output, err := h.queue.Remove(usecases.QueueRemoveInput{
		GuildID:               cc.guildID,
		Position:              position,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Removed %s.", trackLink(output.Removed.Track)))
}

func (h *CommandHandlers) handleQueueMove(
	cc commandContext,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	var from, to int
	if opt := findOption(options, "from"); opt != nil {
		from = int(opt.IntValue())
	}
	if opt := findOption(options, "to"); opt != nil {
		to = int(opt.IntValue())
	}

	output, err := h.queue.Move(usecases.QueueMoveInput{
		GuildID:               cc.guildID,
		From:                  from,
		To:                    to,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Moved %s to position %d.", trackLink(output.Moved.Track), to))
}

func (h *CommandHandlers) handleQueueShuffle(cc commandContext, r bot.Responder) error {
	err := h.queue.Shuffle(usecases.QueueShuffleInput{
		GuildID:               cc.guildID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, "Shuffled the queue.")
}

func (h *CommandHandlers) handleQueueClear(cc commandContext, r bot.Responder) error {
	output, err := h.queue.Clear(usecases.QueueClearInput{
		GuildID:               cc.guildID,
		NotificationChannelID: cc.channelID,
	})
	if err != nil {
		return respondError(r, err)
	}

	return respondSuccess(r, fmt.Sprintf("Cleared %d tracks from the queue.", output.ClearedCount))
}

// HandleFilter handles the /filter command.
func (h *CommandHandlers) HandleFilter(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var name string
	if opt := findOption(i.ApplicationCommandData().Options, "name"); opt != nil {
		name = opt.StringValue()
	}
	_ = h.notificationChannel.Set(usecases.SetNotificationChannelInput{
		GuildID:   cc.guildID,
		ChannelID: cc.channelID,
	})

	if name == filterClearChoice {
		if err := h.playback.ClearFilters(ctx, cc.guildID); err != nil {
			return respondError(r, err)
		}
		return respondSuccess(r, "Cleared every filter.")
	}

	output, err := h.playback.ToggleFilter(ctx, usecases.FilterInput{GuildID: cc.guildID, Name: name})
	if err != nil {
		return respondError(r, err)
	}

	if output.Enabled {
		return respondSuccess(r, fmt.Sprintf("Enabled the **%s** filter.", output.Name))
	}
	return respondSuccess(r, fmt.Sprintf("Disabled the **%s** filter.", output.Name))
}

// HandleDND handles the /dnd command.
func (h *CommandHandlers) HandleDND(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var enabled bool
	if opt := findOption(i.ApplicationCommandData().Options, "enabled"); opt != nil {
		enabled = opt.BoolValue()
	}

	if err := h.playback.SetDND(ctx, usecases.DNDInput{GuildID: cc.guildID, Enabled: enabled}); err != nil {
		return respondError(r, err)
	}

	if enabled {
		return respondSuccess(r, "Track announcements are off.")
	}
	return respondSuccess(r, "Track announcements are on.")
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}

	snap, err := h.playback.NowPlaying(cc.guildID)
	if err != nil {
		return respondError(r, err)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{nowPlayingEmbed(snap)},
		},
	})
}

func nowPlayingEmbed(snap *usecases.PlayerSnapshot) *discordgo.MessageEmbed {
	track := snap.Current.Track

	progress := "LIVE"
	if !track.IsStream {
		progress = fmt.Sprintf("%s / %s", domain.FormatDuration(snap.Position), domain.FormatDuration(track.Duration))
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Artist", Value: track.Author, Inline: true},
		{Name: "Progress", Value: progress, Inline: true},
		{Name: "Volume", Value: fmt.Sprintf("%d%%", snap.Volume), Inline: true},
	}
	if snap.LoopMode != domain.LoopModeNone {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Loop", Value: snap.LoopMode.String(), Inline: true})
	}
	if mention := snap.Current.RequesterMention(); mention != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Requested by", Value: mention, Inline: true})
	}

	heading := "Now Playing"
	if snap.State == domain.PlaybackPaused {
		heading = "Paused"
	}

	return &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: heading},
		Title:  track.Title,
		URL:    track.URI,
		Color:  track.Source().Color(),
		Fields: fields,
	}
}

// HandleTop handles the /top command.
func (h *CommandHandlers) HandleTop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	cc, err := parseCommandContext(i)
	if err != nil {
		return respondError(r, err)
	}
	if !h.stats.Enabled() {
		return respondErrorMessage(r, "Play history is not enabled on this bot.")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	counts, err := h.stats.TopTracks(ctx, cc.guildID, 0)
	if err != nil {
		return respondError(r, err)
	}
	if len(counts) == 0 {
		return respondSuccess(r, "Nothing has been played yet.")
	}

	var sb strings.Builder
	for idx, c := range counts {
		title := escapeMarkdown(c.Title)
		if c.URI != "" {
			title = fmt.Sprintf("[%s](%s)", title, c.URI)
		}
		fmt.Fprintf(&sb, "%d\\. %s (%d plays)\n", idx+1, title, c.Plays)
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Most Played",
					Description: sb.String(),
					Color:       colorSuccess,
				},
			},
		},
	})
}

// Response helpers.

func respondSuccess(r bot.Responder, description string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       colorSuccess,
				},
			},
		},
	})
}

// respondError shows known errors to the user and hides the rest.
func respondError(r bot.Responder, err error) error {
	for _, known := range userFacingErrors {
		if errors.Is(err, known) {
			return respondErrorMessage(r, capitalize(known.Error())+".")
		}
	}

	slog.Error("command failed", "error", err)
	return respondErrorMessage(r, "Something went wrong while processing the command.")
}

func respondErrorMessage(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func trackLink(track *domain.Track) string {
	if track == nil {
		return "the track"
	}
	if track.URI != "" {
		return fmt.Sprintf("[%s](%s)", escapeMarkdown(track.Title), track.URI)
	}
	return fmt.Sprintf("**%s**", escapeMarkdown(track.Title))
}

var markdownEscaper = strings.NewReplacer(
	"[", "\\[",
	"]", "\\]",
	"*", "\\*",
	"_", "\\_",
	"`", "\\`",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// writeTrackLine writes a single track line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeTrackLine(sb *strings.Builder, position int, entry domain.QueueEntry) {
	fmt.Fprintf(
		sb,
		"%d\\. %s - %s (%s)\n",
		position,
		trackLink(entry.Track),
		entry.Track.Author,
		entry.Track.FormattedDuration(),
	)
}
