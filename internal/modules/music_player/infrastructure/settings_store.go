package infrastructure

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
)

const (
	settingsFieldVolume = "volume"
	settingsFieldDND    = "dnd"
)

// MemorySettingsStore keeps guild settings for the lifetime of the process.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings map[snowflake.ID]ports.GuildSettings
}

// NewMemorySettingsStore creates a new MemorySettingsStore.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{settings: make(map[snowflake.ID]ports.GuildSettings)}
}

func (s *MemorySettingsStore) Load(
	_ context.Context,
	guildID snowflake.ID,
) (ports.GuildSettings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[guildID]
	return settings, ok, nil
}

func (s *MemorySettingsStore) Save(
	_ context.Context,
	guildID snowflake.ID,
	settings ports.GuildSettings,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[guildID] = settings
	return nil
}

// RedisSettingsStore keeps guild settings in a Redis hash per guild.
type RedisSettingsStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSettingsStore connects to the Redis server at url and pings it,
// retrying with backoff while the server comes up.
func NewRedisSettingsStore(ctx context.Context, url, keyPrefix string) (*RedisSettingsStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(opts)

	backoff := 200 * time.Millisecond
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			break
		}
		if attempt == 5 {
			_ = client.Close()
			return nil, errors.Wrap(err, "failed to ping redis")
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Wrap(ctx.Err(), "failed to ping redis")
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	if keyPrefix == "" {
		keyPrefix = "vibr"
	}
	return &RedisSettingsStore{client: client, prefix: keyPrefix}, nil
}

func (s *RedisSettingsStore) key(guildID snowflake.ID) string {
	return s.prefix + ":guild:" + guildID.String() + ":settings"
}

func (s *RedisSettingsStore) Load(
	ctx context.Context,
	guildID snowflake.ID,
) (ports.GuildSettings, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(guildID)).Result()
	if err != nil {
		return ports.GuildSettings{}, false, errors.Wrapf(err, "failed to load settings for guild %s", guildID)
	}
	return decodeSettings(fields)
}

func (s *RedisSettingsStore) Save(
	ctx context.Context,
	guildID snowflake.ID,
	settings ports.GuildSettings,
) error {
	err := s.client.HSet(ctx, s.key(guildID), encodeSettings(settings)).Err()
	if err != nil {
		return errors.Wrapf(err, "failed to save settings for guild %s", guildID)
	}
	return nil
}

// Close closes the Redis connection pool.
func (s *RedisSettingsStore) Close() error {
	return s.client.Close()
}

func encodeSettings(settings ports.GuildSettings) map[string]any {
	return map[string]any{
		settingsFieldVolume: strconv.Itoa(settings.Volume),
		settingsFieldDND:    strconv.FormatBool(settings.DND),
	}
}

func decodeSettings(fields map[string]string) (ports.GuildSettings, bool, error) {
	if len(fields) == 0 {
		return ports.GuildSettings{}, false, nil
	}

	var settings ports.GuildSettings
	if raw, ok := fields[settingsFieldVolume]; ok {
		volume, err := strconv.Atoi(raw)
		if err != nil {
			return ports.GuildSettings{}, false, errors.Wrapf(err, "malformed volume %q", raw)
		}
		settings.Volume = volume
	}
	if raw, ok := fields[settingsFieldDND]; ok {
		dnd, err := strconv.ParseBool(raw)
		if err != nil {
			return ports.GuildSettings{}, false, errors.Wrapf(err, "malformed dnd %q", raw)
		}
		settings.DND = dnd
	}
	return settings, true, nil
}

var (
	_ ports.SettingsStore = (*MemorySettingsStore)(nil)
	_ ports.SettingsStore = (*RedisSettingsStore)(nil)
)
