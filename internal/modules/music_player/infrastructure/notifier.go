package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// Embed colors.
const (
	colorInfo = 0x5865F2
	colorWarn = 0xF1C40F
)

// messageSender posts embeds to a channel. *discordgo.Session satisfies it.
type messageSender interface {
	ChannelMessageSendEmbed(
		channelID string,
		embed *discordgo.MessageEmbed,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// NotifierConfig limits how often one channel receives notifications.
type NotifierConfig struct {
	Rate  rate.Limit
	Burst int
}

// Notifier sends player notifications to Discord channels.
type Notifier struct {
	sender   messageSender
	userInfo ports.UserInfoProvider
	config   NotifierConfig

	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
}

// NewNotifier creates a new Notifier. userInfo may be nil.
func NewNotifier(
	session *discordgo.Session,
	userInfo ports.UserInfoProvider,
	config NotifierConfig,
) *Notifier {
	return newNotifier(session, userInfo, config)
}

func newNotifier(sender messageSender, userInfo ports.UserInfoProvider, config NotifierConfig) *Notifier {
	if config.Rate <= 0 {
		config.Rate = rate.Every(2 * time.Second)
	}
	if config.Burst <= 0 {
		config.Burst = 3
	}
	return &Notifier{
		sender:   sender,
		userInfo: userInfo,
		config:   config,
		limiters: make(map[snowflake.ID]*rate.Limiter),
	}
}

// allow reports whether the channel may receive another message now.
// Notifications are sent while a player is locked, so they are dropped
// rather than delayed when the channel is over its limit.
func (n *Notifier) allow(channelID snowflake.ID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	limiter, ok := n.limiters[channelID]
	if !ok {
		limiter = rate.NewLimiter(n.config.Rate, n.config.Burst)
		n.limiters[channelID] = limiter
	}
	return limiter.Allow()
}

func (n *Notifier) send(channelID snowflake.ID, kind string, embed *discordgo.MessageEmbed) error {
	if !n.allow(channelID) {
		slog.Warn("notification rate limited, dropping", "channel", channelID, "kind", kind)
		return nil
	}

	if _, err := n.sender.ChannelMessageSendEmbed(channelID.String(), embed); err != nil {
		return errors.Wrapf(err, "failed to send %s notification", kind)
	}
	return nil
}

// SendNowPlaying sends a "Now Playing" embed, or "Looping" when the track repeats.
func (n *Notifier) SendNowPlaying(
	_ context.Context,
	channelID snowflake.ID,
	info ports.NowPlayingInfo,
) error {
	return n.send(channelID, "now_playing", n.nowPlayingEmbed(info))
}

func (n *Notifier) nowPlayingEmbed(info ports.NowPlayingInfo) *discordgo.MessageEmbed {
	track := info.Entry.Track
	source := track.Source()

	heading := "Now Playing"
	if info.Looping {
		heading = "Looping"
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: heading,
		},
		Title: track.Title,
		URL:   track.URI,
		Color: source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  orDash(track.Author),
				Inline: true,
			},
			{
				Name:   "Duration",
				Value:  track.FormattedDuration(),
				Inline: true,
			},
		},
	}

	if !info.Entry.EnqueuedAt.IsZero() {
		embed.Timestamp = info.Entry.EnqueuedAt.UTC().Format(time.RFC3339)
	}

	if mention := info.Entry.RequesterMention(); mention != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Requested by",
			Value:  mention,
			Inline: true,
		})
		if footer := n.requesterFooter(info.GuildID, info.Entry.RequesterID); footer != nil {
			embed.Footer = footer
		}
	}

	if thumbnailURL := bestThumbnail(source, track.Identifier, track.ArtworkURL); thumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailURL}
	}

	return embed
}

func (n *Notifier) requesterFooter(guildID, userID snowflake.ID) *discordgo.MessageEmbedFooter {
	if n.userInfo == nil {
		return nil
	}
	user, err := n.userInfo.GetUserInfo(guildID, userID)
	if err != nil {
		slog.Debug("failed to fetch requester info", "guild", guildID, "user", userID, "error", err)
		return nil
	}
	return &discordgo.MessageEmbedFooter{
		Text:    fmt.Sprintf("Requested by %s", user.DisplayName),
		IconURL: user.AvatarURL,
	}
}

// SendEndOfQueue reports that the queue ran out.
func (n *Notifier) SendEndOfQueue(_ context.Context, channelID snowflake.ID) error {
	return n.send(channelID, "end_of_queue", &discordgo.MessageEmbed{
		Description: "The queue has ended. Use `/play` to add more tracks.",
		Color:       colorInfo,
	})
}

// SendAutoPaused reports that playback was paused because everyone left.
func (n *Notifier) SendAutoPaused(_ context.Context, channelID snowflake.ID) error {
	return n.send(channelID, "auto_paused", &discordgo.MessageEmbed{
		Description: "Paused because nobody is listening. Use `/resume` to continue.",
		Color:       colorWarn,
	})
}

// SendIdleDisconnect reports that the bot left after being idle.
func (n *Notifier) SendIdleDisconnect(_ context.Context, channelID snowflake.ID) error {
	return n.send(channelID, "idle_disconnect", &discordgo.MessageEmbed{
		Description: "Left the voice channel after being idle.",
		Color:       colorWarn,
	})
}

// bestThumbnail picks a larger thumbnail where the source has a predictable one.
func bestThumbnail(source domain.TrackSource, identifier, artworkURL string) string {
	switch source {
	case domain.TrackSourceYouTube:
		if identifier != "" {
			return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", identifier)
		}
	case domain.TrackSourceTwitch:
		// Twitch previews come as 440x248 by default.
		return strings.Replace(artworkURL, "440x248", "1280x720", 1)
	}
	return artworkURL
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)
