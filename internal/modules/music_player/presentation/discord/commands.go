package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// filterClearChoice is the /filter choice that removes every filter.
const filterClearChoice = "clear"

var (
	minPosition = float64(1)
	minVolume   = float64(0)
	minSkip     = float64(1)
)

func positionOption(name, description string, autocomplete bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionInteger,
		Name:         name,
		Description:  description,
		Required:     true,
		MinValue:     &minPosition,
		Autocomplete: autocomplete,
	}
}

// Commands returns the slash commands of the music player.
func Commands() []*discordgo.ApplicationCommand {
	filterChoices := lo.Map(
		append(domain.PresetFilterLabels(), filterClearChoice),
		func(label string, _ int) *discordgo.ApplicationCommandOptionChoice {
			return &discordgo.ApplicationCommandOptionChoice{Name: label, Value: label}
		},
	)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join your voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Voice channel to join instead of yours",
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice},
				},
			},
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "play",
			Description: "Play a track or playlist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "Search query or URL",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "skip",
			Description: "Skip the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "Number of tracks to skip",
					MinValue:    &minSkip,
				},
			},
		},
		{
			Name:        "seek",
			Description: "Jump to a position in the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "position",
					Description: "Position such as 1:30 or 90",
					Required:    true,
				},
			},
		},
		{
			Name:        "volume",
			Description: "Set the playback volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "percent",
					Description: "Volume in percent",
					Required:    true,
					MinValue:    &minVolume,
					MaxValue:    1000,
				},
			},
		},
		{
			Name:        "loop",
			Description: "Toggle looping the current track",
		},
		{
			Name:        "looponce",
			Description: "Replay the current track one more time",
		},
		{
			Name:        "loopqueue",
			Description: "Toggle looping the queue",
		},
		{
			Name:        "queue",
			Description: "Manage the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							MinValue:    &minPosition,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a track from the queue",
					Options: []*discordgo.ApplicationCommandOption{
						positionOption("position", "Position of the track", true),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "move",
					Description: "Move a track within the queue",
					Options: []*discordgo.ApplicationCommandOption{
						positionOption("from", "Current position of the track", true),
						positionOption("to", "New position of the track", false),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "shuffle",
					Description: "Shuffle the queue",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Remove every queued track",
				},
			},
		},
		{
			Name:        "filter",
			Description: "Toggle an audio filter",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Filter to toggle",
					Required:    true,
					Choices:     filterChoices,
				},
			},
		},
		{
			Name:        "dnd",
			Description: "Turn \"Now Playing\" messages on or off",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "enabled",
					Description: "Whether to silence track announcements",
					Required:    true,
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
		},
		{
			Name:        "top",
			Description: "Show the most played tracks of this server",
		},
	}
}
