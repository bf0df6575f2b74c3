package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// mockHandle is a test double for ports.PlayerHandle.
type mockHandle struct {
	mu        sync.Mutex
	plays     []ports.PlayRequest
	paused    []bool
	stops     int
	seeks     []time.Duration
	volumes   []int
	filters   map[string]domain.Filter
	destroyed int
	playErr   error
	pauseErr  error
}

func newMockHandle() *mockHandle {
	return &mockHandle{filters: make(map[string]domain.Filter)}
}

func (m *mockHandle) Play(_ context.Context, req ports.PlayRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return "", m.playErr
	}
	m.plays = append(m.plays, req)
	if req.Encoded != "" {
		return req.Encoded, nil
	}
	return "resolved-" + req.Identifier, nil
}

func (m *mockHandle) SetPaused(_ context.Context, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused = append(m.paused, paused)
	return nil
}

func (m *mockHandle) Stop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	return nil
}

func (m *mockHandle) Seek(_ context.Context, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, position)
	return nil
}

func (m *mockHandle) SetVolume(_ context.Context, percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, percent)
	return nil
}

func (m *mockHandle) AddFilter(_ context.Context, label string, filter domain.Filter, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[label] = filter
	return nil
}

func (m *mockHandle) RemoveFilter(_ context.Context, label string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.filters, label)
	return nil
}

func (m *mockHandle) HasFilter(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.filters[label]
	return ok
}

func (m *mockHandle) ClearFilters(context.Context, bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.filters)
	return nil
}

func (m *mockHandle) Position() time.Duration {
	return 0
}

func (m *mockHandle) Destroy(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed++
	return nil
}

func (m *mockHandle) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.plays)
}

func (m *mockHandle) lastPlay() ports.PlayRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays[len(m.plays)-1]
}

func (m *mockHandle) pauseCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.paused...)
}

// mockNotifier is a test double for ports.Notifier.
type mockNotifier struct {
	mu           sync.Mutex
	nowPlaying   []ports.NowPlayingInfo
	endOfQueue   int
	autoPaused   int
	idle         int
	err          error
	lastChannels []snowflake.ID
}

func (m *mockNotifier) record(channelID snowflake.ID) error {
	m.lastChannels = append(m.lastChannels, channelID)
	return m.err
}

func (m *mockNotifier) SendNowPlaying(_ context.Context, channelID snowflake.ID, info ports.NowPlayingInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(channelID); err != nil {
		return err
	}
	m.nowPlaying = append(m.nowPlaying, info)
	return nil
}

func (m *mockNotifier) SendEndOfQueue(_ context.Context, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(channelID); err != nil {
		return err
	}
	m.endOfQueue++
	return nil
}

func (m *mockNotifier) SendAutoPaused(_ context.Context, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(channelID); err != nil {
		return err
	}
	m.autoPaused++
	return nil
}

func (m *mockNotifier) SendIdleDisconnect(_ context.Context, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(channelID); err != nil {
		return err
	}
	m.idle++
	return nil
}

// manualScheduler records scheduled callbacks so tests can fire them.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() {
	t.cancelled = true
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// pending returns the scheduled tasks that were not cancelled.
func (s *manualScheduler) pending() []*manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*manualTask
	for _, t := range s.tasks {
		if !t.cancelled {
			result = append(result, t)
		}
	}
	return result
}

// fireAll runs every task that was scheduled with delay d, cancelled or not.
// Cancelled tasks model callbacks that raced past Cancel.
func (s *manualScheduler) fireAll(d time.Duration) {
	s.mu.Lock()
	var due []*manualTask
	for _, t := range s.tasks {
		if t.delay == d {
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
}

// memoryRegistry is a minimal PlayerRegistry for tests.
type memoryRegistry struct {
	mu      sync.Mutex
	players map[snowflake.ID]*Player
}

func newMemoryRegistry(players ...*Player) *memoryRegistry {
	r := &memoryRegistry{players: make(map[snowflake.ID]*Player)}
	for _, p := range players {
		r.players[p.GuildID()] = p
	}
	return r
}

func (r *memoryRegistry) Get(guildID snowflake.ID) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[guildID]
	return p, ok
}

func (r *memoryRegistry) Add(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[p.GuildID()]; ok {
		return false
	}
	r.players[p.GuildID()] = p
	return true
}

func (r *memoryRegistry) Remove(guildID snowflake.ID) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[guildID]
	delete(r.players, guildID)
	return p, ok
}

func (r *memoryRegistry) All() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		result = append(result, p)
	}
	return result
}

func (r *memoryRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

const (
	testGuildID        = snowflake.ID(1)
	testVoiceChannel   = snowflake.ID(100)
	testNoticeChannel  = snowflake.ID(200)
	testPauseTimeout   = time.Minute
	testDisconnectTime = 5 * time.Minute
)

var errNode = errors.New("node unreachable")

type playerFixture struct {
	player    *Player
	handle    *mockHandle
	notifier  *mockNotifier
	scheduler *manualScheduler
	idled     []*Player
}

func newPlayerFixture() *playerFixture {
	f := &playerFixture{
		handle:    newMockHandle(),
		notifier:  &mockNotifier{},
		scheduler: &manualScheduler{},
	}
	f.player = NewPlayer(PlayerConfig{
		GuildID:           testGuildID,
		ChannelID:         testVoiceChannel,
		Handle:            f.handle,
		Notifier:          f.notifier,
		Scheduler:         f.scheduler,
		MaxQueueLength:    domain.DefaultMaxQueueLength,
		PauseTimeout:      testPauseTimeout,
		DisconnectTimeout: testDisconnectTime,
		OnIdleDisconnect: func(p *Player) {
			f.idled = append(f.idled, p)
		},
	})
	f.player.SetNotificationChannel(testNoticeChannel)
	return f
}

func testEntry(id string, requester snowflake.ID) domain.QueueEntry {
	return domain.NewQueueEntry(&domain.Track{
		Encoded:    "enc-" + id,
		Identifier: id,
		Title:      "Song " + id,
		Duration:   3 * time.Minute,
	}, requester)
}

// nodeTrack is the track the node reports in events for testEntry(id).
func nodeTrack(id string) *domain.Track {
	return &domain.Track{Encoded: "enc-" + id, Identifier: id}
}

func queueIDs(p *Player) []string {
	var ids []string
	_ = p.WithQueue(func(q *domain.Queue) error {
		for _, e := range q.Entries() {
			ids = append(ids, e.Track.Identifier)
		}
		return nil
	})
	return ids
}
