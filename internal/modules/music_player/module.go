package music_player

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/bot"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/vibr/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/vibr/internal/modules/music_player/presentation/discord"
	"golang.org/x/time/rate"
)

const (
	initTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	players         *infrastructure.MemoryPlayerRegistry
	eventBus        *infrastructure.ChannelEventBus

	// Optional backends closed on shutdown.
	closers []io.Closer
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       m.commandHandlers.HandleJoin,
		"leave":      m.commandHandlers.HandleLeave,
		"play":       m.commandHandlers.HandlePlay,
		"pause":      m.commandHandlers.HandlePause,
		"resume":     m.commandHandlers.HandleResume,
		"stop":       m.commandHandlers.HandleStop,
		"skip":       m.commandHandlers.HandleSkip,
		"seek":       m.commandHandlers.HandleSeek,
		"volume":     m.commandHandlers.HandleVolume,
		"loop":       m.commandHandlers.HandleLoop,
		"looponce":   m.commandHandlers.HandleLoopOnce,
		"loopqueue":  m.commandHandlers.HandleLoopQueue,
		"queue":      m.commandHandlers.HandleQueue,
		"filter":     m.commandHandlers.HandleFilter,
		"dnd":        m.commandHandlers.HandleDND,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
		"top":        m.commandHandlers.HandleTop,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if m.autocomplete != nil {
				m.autocomplete.Handle(s, i)
			}
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if m.config == nil {
		return errors.New("music_player config not loaded")
	}

	// Check if session is available
	if deps.Session == nil {
		slog.Warn("music_player module initialized without session, Lavalink integration disabled")
		m.initWithoutLavalink()
		return nil
	}

	return m.initWithLavalink(deps)
}

// initWithoutLavalink wires the services without a node. Every command then
// reports that the bot is not connected.
func (m *MusicPlayerModule) initWithoutLavalink() {
	m.players = infrastructure.NewMemoryPlayerRegistry()
	loader := usecases.NewTrackLoaderService(nil)

	m.commandHandlers = discord.NewCommandHandlers(
		usecases.NewVoiceChannelService(m.players, nil, nil, nil, nil, nil, m.playerDefaults()),
		usecases.NewPlaybackService(m.players, loader, nil),
		usecases.NewQueueService(m.players),
		usecases.NewNotificationChannelService(m.players),
		usecases.NewStatsService(nil),
	)
	m.autocomplete = discord.NewAutocompleteHandler(usecases.NewAutocompleteService(m.players, nil))
}

func (m *MusicPlayerModule) initWithLavalink(deps bot.ModuleDependencies) error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	// Create event bus (Lavalink publishes node events into it)
	m.eventBus = infrastructure.NewChannelEventBus(m.config.EventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(ctx, deps.Session, infrastructure.LavalinkConfig{
		NodeName: m.config.LavalinkNodeName,
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
		Secure:   m.config.LavalinkSecure,
	})
	if err != nil {
		m.eventBus.Close()
		return err
	}
	lavalinkAdapter.SetEventPublisher(m.eventBus)
	m.lavalinkAdapter = lavalinkAdapter

	settings, err := m.newSettingsStore(ctx)
	if err != nil {
		return err
	}
	recorder, err := m.newPlayRecorder(ctx)
	if err != nil {
		return err
	}
	secondary, err := m.newSecondaryResolvers(ctx)
	if err != nil {
		return err
	}

	// Create infrastructure
	m.players = infrastructure.NewMemoryPlayerRegistry()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	userInfo := infrastructure.NewDiscordUserInfoProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, userInfo, infrastructure.NotifierConfig{
		Rate:  rate.Limit(m.config.NotificationRate),
		Burst: m.config.NotificationBurst,
	})

	// Create services
	trackLoader := usecases.NewTrackLoaderService(lavalinkAdapter, secondary...)
	voiceChannel := usecases.NewVoiceChannelService(
		m.players,
		lavalinkAdapter,
		voiceState,
		notifier,
		settings,
		application.TimeScheduler{},
		m.playerDefaults(),
	)
	playback := usecases.NewPlaybackService(m.players, trackLoader, settings)
	queue := usecases.NewQueueService(m.players)
	notificationChannel := usecases.NewNotificationChannelService(m.players)
	stats := usecases.NewStatsService(recorder)

	// Register application event handlers
	application.NewTrackEventHandler(m.players, m.eventBus, recorder).Start()
	voiceActivity := application.NewVoiceActivityHandler(m.players, voiceState)

	// Create presentation handlers
	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return errors.Wrap(err, "failed to parse bot ID")
	}
	m.commandHandlers = discord.NewCommandHandlers(
		voiceChannel,
		playback,
		queue,
		notificationChannel,
		stats,
	)
	m.autocomplete = discord.NewAutocompleteHandler(usecases.NewAutocompleteService(m.players, trackLoader))
	m.eventHandlers = discord.NewEventHandlers(botID, voiceActivity)

	slog.Info("music_player module initialized with Lavalink",
		"redis", m.config.RedisURL != "",
		"stats", recorder != nil,
		"spotify", len(secondary) > 0,
	)

	return nil
}

func (m *MusicPlayerModule) playerDefaults() usecases.PlayerDefaults {
	return usecases.PlayerDefaults{
		MaxQueueLength:    m.config.MaxQueueLength,
		PauseTimeout:      m.config.PauseTimeout,
		DisconnectTimeout: m.config.DisconnectTimeout,
		MoveSettleDelay:   m.config.MoveSettleDelay,
		Volume:            m.config.DefaultVolume,
	}
}

func (m *MusicPlayerModule) newSettingsStore(ctx context.Context) (ports.SettingsStore, error) {
	if m.config.RedisURL == "" {
		return infrastructure.NewMemorySettingsStore(), nil
	}

	store, err := infrastructure.NewRedisSettingsStore(ctx, m.config.RedisURL, m.config.RedisKeyPrefix)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, store)
	return store, nil
}

// newPlayRecorder returns nil when play history is disabled.
func (m *MusicPlayerModule) newPlayRecorder(ctx context.Context) (ports.PlayRecorder, error) {
	if m.config.DatabaseURL == "" {
		return nil, nil
	}

	recorder, err := infrastructure.NewPostgresPlayRecorder(ctx, m.config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, recorder)
	return recorder, nil
}

func (m *MusicPlayerModule) newSecondaryResolvers(ctx context.Context) ([]ports.SecondaryResolver, error) {
	if m.config.SpotifyClientID == "" {
		return nil, nil
	}

	spotify, err := infrastructure.NewSpotifyResolver(ctx, infrastructure.SpotifyConfig{
		ClientID:     m.config.SpotifyClientID,
		ClientSecret: m.config.SpotifyClientSecret,
		Market:       m.config.SpotifyMarket,
	})
	if err != nil {
		return nil, err
	}
	return []ports.SecondaryResolver{spotify}, nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	// Leave every voice channel before the node goes away
	if m.players != nil {
		for _, player := range m.players.All() {
			if _, err := application.DestroyPlayer(ctx, m.players, player.GuildID()); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	for _, closer := range m.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
