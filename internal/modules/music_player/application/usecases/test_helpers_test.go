package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

const (
	testGuildID      = snowflake.ID(1)
	testUserID       = snowflake.ID(2)
	testTextChannel  = snowflake.ID(3)
	testVoiceChannel = snowflake.ID(4)
)

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		Encoded:    "encoded-" + id,
		Identifier: id,
		Title:      "Track " + id,
		Author:     "Artist",
		Duration:   3 * time.Minute,
	}
}

type mockHandle struct {
	plays     []ports.PlayRequest
	paused    []bool
	stops     int
	volumes   []int
	filters   map[string]bool
	destroyed int
	playErr   error
}

func (m *mockHandle) Play(_ context.Context, req ports.PlayRequest) (string, error) {
	if m.playErr != nil {
		return "", m.playErr
	}
	m.plays = append(m.plays, req)
	return req.Encoded, nil
}

func (m *mockHandle) SetPaused(_ context.Context, paused bool) error {
	m.paused = append(m.paused, paused)
	return nil
}

func (m *mockHandle) Stop(context.Context) error {
	m.stops++
	return nil
}

func (m *mockHandle) Seek(context.Context, time.Duration) error { return nil }

func (m *mockHandle) SetVolume(_ context.Context, percent int) error {
	m.volumes = append(m.volumes, percent)
	return nil
}

func (m *mockHandle) AddFilter(_ context.Context, label string, _ domain.Filter, _ bool) error {
	if m.filters == nil {
		m.filters = make(map[string]bool)
	}
	m.filters[label] = true
	return nil
}

func (m *mockHandle) RemoveFilter(_ context.Context, label string, _ bool) error {
	delete(m.filters, label)
	return nil
}

func (m *mockHandle) HasFilter(label string) bool { return m.filters[label] }

func (m *mockHandle) ClearFilters(context.Context, bool) error {
	clear(m.filters)
	return nil
}

func (m *mockHandle) Position() time.Duration { return 0 }

func (m *mockHandle) Destroy(context.Context) error {
	m.destroyed++
	return nil
}

type mockVoiceNode struct {
	handle     *mockHandle
	connectErr error
	connects   []snowflake.ID
	moves      []snowflake.ID
}

func (m *mockVoiceNode) Connect(_ context.Context, _, channelID snowflake.ID) (ports.PlayerHandle, error) {
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	m.connects = append(m.connects, channelID)
	if m.handle == nil {
		m.handle = &mockHandle{}
	}
	return m.handle, nil
}

func (m *mockVoiceNode) MoveChannel(_ context.Context, _, channelID snowflake.ID) error {
	m.moves = append(m.moves, channelID)
	return nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(_, userID snowflake.ID) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

func (m *mockVoiceStateProvider) CountListeners(snowflake.ID, snowflake.ID) (int, error) {
	return 1, nil
}

type mockTrackResolver struct {
	loadErr    error
	loadResult *ports.LoadResult
	queries    []string
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.queries = append(m.queries, query)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

type mockSecondaryResolver struct {
	track *domain.Track
	err   error
}

func (m *mockSecondaryResolver) Resolve(_ context.Context, query *domain.SearchQuery) (*domain.Track, bool, error) {
	if _, ok := query.SpotifyTrackID(); !ok {
		return nil, false, nil
	}
	if m.err != nil {
		return nil, false, m.err
	}
	return m.track, true, nil
}

type mockSettingsStore struct {
	stored map[snowflake.ID]ports.GuildSettings
	saves  int
}

func (m *mockSettingsStore) Load(_ context.Context, guildID snowflake.ID) (ports.GuildSettings, bool, error) {
	s, ok := m.stored[guildID]
	return s, ok, nil
}

func (m *mockSettingsStore) Save(_ context.Context, guildID snowflake.ID, settings ports.GuildSettings) error {
	if m.stored == nil {
		m.stored = make(map[snowflake.ID]ports.GuildSettings)
	}
	m.stored[guildID] = settings
	m.saves++
	return nil
}

type mockRegistry struct {
	mu      sync.Mutex
	players map[snowflake.ID]*application.Player
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{players: make(map[snowflake.ID]*application.Player)}
}

func (m *mockRegistry) Get(guildID snowflake.ID) (*application.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	return p, ok
}

func (m *mockRegistry) Add(p *application.Player) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[p.GuildID()]; ok {
		return false
	}
	m.players[p.GuildID()] = p
	return true
}

func (m *mockRegistry) Remove(guildID snowflake.ID) (*application.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[guildID]
	delete(m.players, guildID)
	return p, ok
}

func (m *mockRegistry) All() []*application.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*application.Player
	for _, p := range m.players {
		result = append(result, p)
	}
	return result
}

func (m *mockRegistry) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// noopScheduler never runs callbacks.
type noopScheduler struct{}

type noopTask struct{}

func (noopTask) Cancel() {}

func (noopScheduler) AfterFunc(time.Duration, func()) application.Task {
	return noopTask{}
}

// connectPlayer registers a connected player for testGuildID.
func (m *mockRegistry) connectPlayer(handle *mockHandle) *application.Player {
	p := application.NewPlayer(application.PlayerConfig{
		GuildID:   testGuildID,
		ChannelID: testVoiceChannel,
		Handle:    handle,
		Scheduler: noopScheduler{},
	})
	m.Add(p)
	return p
}

// playing registers a player that is playing current with queued behind it.
func (m *mockRegistry) playing(handle *mockHandle, current string, queued ...string) *application.Player {
	p := m.connectPlayer(handle)
	ids := append([]string{current}, queued...)
	entries := make([]domain.QueueEntry, len(ids))
	for i, id := range ids {
		entries[i] = domain.NewQueueEntry(mockTrack(id), testUserID)
	}
	if _, err := p.Enqueue(context.Background(), entries...); err != nil {
		panic(err)
	}
	return p
}

func queuedIDs(p *application.Player) []string {
	var ids []string
	for _, e := range p.Snapshot().Queue {
		ids = append(ids, e.Track.Identifier)
	}
	return ids
}
