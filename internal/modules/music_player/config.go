package music_player

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/sglre6355/vibr/internal/bot"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"   validate:"hostname_port"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"             envDefault:"false"`
	LavalinkNodeName string `env:"LAVALINK_NODE_NAME"          envDefault:"main"`

	MaxQueueLength    int           `env:"MAX_QUEUE_LENGTH"   envDefault:"500"  validate:"gt=0"`
	PauseTimeout      time.Duration `env:"PAUSE_TIMEOUT"      envDefault:"1m"   validate:"gt=0"`
	DisconnectTimeout time.Duration `env:"DISCONNECT_TIMEOUT" envDefault:"5m"   validate:"gt=0"`
	MoveSettleDelay   time.Duration `env:"MOVE_SETTLE_DELAY"  envDefault:"1s"   validate:"gte=0"`
	DefaultVolume     int           `env:"DEFAULT_VOLUME"     envDefault:"100"  validate:"gte=0,lte=1000"`

	// Optional backends. Empty values fall back to in-memory or disable the feature.
	RedisURL       string `env:"REDIS_URL"        validate:"omitempty,url"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"vibr"`
	DatabaseURL    string `env:"DATABASE_URL"`

	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET" validate:"required_with=SpotifyClientID"`
	SpotifyMarket       string `env:"SPOTIFY_MARKET"        envDefault:"US" validate:"omitempty,len=2"`

	// Notifications per second and channel.
	NotificationRate  float64 `env:"NOTIFICATION_RATE"  envDefault:"0.5" validate:"gte=0"`
	NotificationBurst int     `env:"NOTIFICATION_BURST" envDefault:"3"   validate:"gte=0"`
	EventBufferSize   int     `env:"EVENT_BUFFER_SIZE"  envDefault:"100" validate:"gte=0"`
}

// loadConfig parses and validates the module configuration from the environment.
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse music player config")
	}
	if err := bot.ValidateStruct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid music player config")
	}
	return cfg, nil
}
