package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// Discord accepts at most 25 choices of at most 100 characters.
const (
	maxChoices       = 25
	maxChoiceNameLen = 100
	minQueryLen      = 2
	searchTimeout    = 3 * time.Second
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(autocomplete *usecases.AutocompleteService) *AutocompleteHandler {
	return &AutocompleteHandler{autocomplete: autocomplete}
}

// Handle routes an autocomplete interaction to the matching handler.
func (h *AutocompleteHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case "play":
		h.HandlePlay(s, i)
	case "queue":
		if len(data.Options) > 0 {
			switch data.Options[0].Name {
			case "remove", "move":
				h.HandleQueuePosition(s, i)
			}
		}
	}
}

// HandlePlay suggests tracks for the play query.
func (h *AutocompleteHandler) HandlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var query string
	if opt := focusedOption(i.ApplicationCommandData().Options); opt != nil {
		query = strings.TrimSpace(opt.StringValue())
	}

	// Don't search for very short queries
	if len([]rune(query)) < minQueryLen {
		respondChoices(s, i, nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	output, err := h.autocomplete.SearchTracks(ctx, usecases.SearchTracksInput{Query: query})
	if err != nil {
		slog.Debug("autocomplete search failed", "query", query, "error", err)
		respondChoices(s, i, nil)
		return
	}

	respondChoices(s, i, playChoices(query, output))
}

func playChoices(
	query string,
	output *usecases.SearchTracksOutput,
) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)

	if output.IsPlaylist {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name: truncate(
				fmt.Sprintf("📋 %s (%d tracks)", output.PlaylistName, len(output.Tracks)),
				maxChoiceNameLen,
			),
			Value: query,
		})
	}

	tracks := lo.Filter(output.Tracks, func(t *domain.Track, _ int) bool {
		return t.URI != "" && len(t.URI) <= maxChoiceNameLen
	})
	choices = append(choices, lo.Map(tracks, func(t *domain.Track, idx int) *discordgo.ApplicationCommandOptionChoice {
		name := fmt.Sprintf("🎵 %s - %s", t.Title, t.Author)
		if output.IsPlaylist {
			name = fmt.Sprintf("🎵 %d. %s - %s", idx+1, t.Title, t.Author)
		}
		return &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, maxChoiceNameLen),
			Value: t.URI,
		}
	})...)

	if len(choices) > maxChoices {
		choices = choices[:maxChoices]
	}
	return choices
}

// HandleQueuePosition suggests queue positions for queue remove and move.
func (h *AutocompleteHandler) HandleQueuePosition(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		slog.Warn("failed to parse guild ID in autocomplete", "error", err, "guildID", i.GuildID)
		respondChoices(s, i, nil)
		return
	}

	var typed string
	if sub := i.ApplicationCommandData().Options; len(sub) > 0 {
		if opt := focusedOption(sub[0].Options); opt != nil {
			typed = fmt.Sprint(opt.Value)
		}
	}

	output := h.autocomplete.QueueEntries(guildID)
	respondChoices(s, i, queuePositionChoices(output.Entries, typed))
}

// queuePositionChoices lists 1-indexed positions whose number or title
// matches what the user typed so far.
func queuePositionChoices(
	entries []domain.QueueEntry,
	typed string,
) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToLower(strings.TrimSpace(typed))

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)
	for idx, entry := range entries {
		position := idx + 1
		if typed != "" &&
			!strings.HasPrefix(strconv.Itoa(position), typed) &&
			!strings.Contains(strings.ToLower(entry.Track.Title), typed) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%d. %s", position, entry.Track.Title), maxChoiceNameLen),
			Value: position,
		})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}

func focusedOption(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.ApplicationCommandInteractionDataOption {
	opt, _ := lo.Find(options, func(o *discordgo.ApplicationCommandInteractionDataOption) bool {
		return o.Focused
	})
	return opt
}

func respondChoices(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	choices []*discordgo.ApplicationCommandOptionChoice,
) {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		slog.Debug("failed to respond to autocomplete", "error", err)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
