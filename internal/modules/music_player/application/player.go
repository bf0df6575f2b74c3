package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// Volume bounds accepted by the node.
const (
	MinVolume     = 0
	MaxVolume     = 1000
	DefaultVolume = 100
)

// timerCallTimeout bounds node calls made from timer callbacks.
const timerCallTimeout = 10 * time.Second

// PlayerConfig configures a new Player.
type PlayerConfig struct {
	GuildID           snowflake.ID
	ChannelID         snowflake.ID
	Handle            ports.PlayerHandle
	Notifier          ports.Notifier
	Scheduler         Scheduler
	MaxQueueLength    int
	PauseTimeout      time.Duration
	DisconnectTimeout time.Duration
	MoveSettleDelay   time.Duration
	Volume            int
	DND               bool

	// OnIdleDisconnect tears the player down after the disconnect timer fires.
	// It is called without the player lock held.
	OnIdleDisconnect func(p *Player)
}

// PlayOptions tune a single Play call.
type PlayOptions struct {
	Start           time.Duration
	End             time.Duration
	IgnoreIfPlaying bool
}

// PlayerSnapshot is a read-only view of a player for presentation.
type PlayerSnapshot struct {
	GuildID                snowflake.ID
	ChannelID              snowflake.ID
	Current                *domain.QueueEntry
	State                  domain.PlaybackState
	Position               time.Duration
	Queue                  []domain.QueueEntry
	LoopMode               domain.LoopMode
	LoopedUser             snowflake.ID
	Volume                 int
	DND                    bool
	NotificationChannelID  snowflake.ID
	PauseTimerPending      bool
	DisconnectTimerPending bool
	QueueDuration          time.Duration
	MaxQueueLength         int
}

// Player orchestrates one guild's node handle, queue, loop policy and idle timers.
// Every exported method holds the player mutex for its whole critical section,
// node calls included, so concurrent events for the same guild never interleave.
type Player struct {
	mu sync.Mutex

	guildID   snowflake.ID
	channelID snowflake.ID
	sessionID uuid.UUID
	handle    ports.PlayerHandle
	notifier  ports.Notifier
	scheduler Scheduler
	log       *slog.Logger

	queue   *domain.Queue
	current *domain.QueueEntry
	state   domain.PlaybackState
	// currentEncoded is what the node was asked to play for current.
	currentEncoded string

	loopMode   domain.LoopMode
	loopTrack  *domain.QueueEntry
	loopQueue  []domain.QueueEntry
	loopedUser snowflake.ID
	// currentLooped reports whether current is already in loopQueue.
	currentLooped bool

	dnd                   bool
	notificationChannelID snowflake.ID
	volume                int

	pauseTimeout      time.Duration
	disconnectTimeout time.Duration
	moveSettleDelay   time.Duration
	pauseTimer        idleTimer
	disconnectTimer   idleTimer
	onIdleDisconnect  func(p *Player)

	destroyed bool
}

// NewPlayer creates a stopped player with an empty queue.
func NewPlayer(cfg PlayerConfig) *Player {
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = TimeScheduler{}
	}
	volume := cfg.Volume
	if volume <= 0 || volume > MaxVolume {
		volume = DefaultVolume
	}

	sessionID := uuid.New()
	return &Player{
		guildID:           cfg.GuildID,
		channelID:         cfg.ChannelID,
		sessionID:         sessionID,
		handle:            cfg.Handle,
		notifier:          cfg.Notifier,
		scheduler:         scheduler,
		log:               slog.With("guild", cfg.GuildID, "session", sessionID.String()),
		queue:             domain.NewQueue(cfg.MaxQueueLength),
		state:             domain.PlaybackStopped,
		dnd:               cfg.DND,
		volume:            volume,
		pauseTimeout:      cfg.PauseTimeout,
		disconnectTimeout: cfg.DisconnectTimeout,
		moveSettleDelay:   cfg.MoveSettleDelay,
		onIdleDisconnect:  cfg.OnIdleDisconnect,
	}
}

// GuildID returns the guild this player belongs to.
func (p *Player) GuildID() snowflake.ID {
	return p.guildID
}

// SessionID identifies this connection in logs.
func (p *Player) SessionID() uuid.UUID {
	return p.sessionID
}

// ChannelID returns the voice channel the player is connected to.
func (p *Player) ChannelID() snowflake.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

// State returns the current playback state.
func (p *Player) State() domain.PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns a copy of the playing entry, or nil.
func (p *Player) Current() *domain.QueueEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return copyEntry(p.current)
}

// IsDestroyed reports whether Destroy has been called.
func (p *Player) IsDestroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}

// Snapshot returns a consistent read-only view of the player.
func (p *Player) Snapshot() PlayerSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := PlayerSnapshot{
		GuildID:                p.guildID,
		ChannelID:              p.channelID,
		Current:                copyEntry(p.current),
		State:                  p.state,
		Queue:                  p.queue.Entries(),
		LoopMode:               p.loopMode,
		LoopedUser:             p.loopedUser,
		Volume:                 p.volume,
		DND:                    p.dnd,
		NotificationChannelID:  p.notificationChannelID,
		PauseTimerPending:      p.pauseTimer.pending(),
		DisconnectTimerPending: p.disconnectTimer.pending(),
		QueueDuration:          p.queue.TotalDuration(),
		MaxQueueLength:         p.queue.MaxLen(),
	}
	if p.state.HasTrack() && p.handle != nil {
		snap.Position = p.handle.Position()
	}
	return snap
}

// --- Playback ---

// Play starts entry on the node, replacing the current track.
func (p *Player) Play(ctx context.Context, entry domain.QueueEntry, opts PlayOptions) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playLocked(ctx, entry, opts)
}

func (p *Player) playLocked(ctx context.Context, entry domain.QueueEntry, opts PlayOptions) error {
	if p.destroyed {
		return ErrPlayerDestroyed
	}
	if opts.IgnoreIfPlaying && p.state == domain.PlaybackPlaying {
		return nil
	}

	p.pauseTimer.cancel()
	p.disconnectTimer.cancel()

	req := ports.PlayRequest{
		Track: entry.Track,
		Start: opts.Start,
		End:   opts.End,
	}
	if entry.Track.HasNodeID() {
		req.Encoded = entry.Track.Encoded
	} else {
		req.Identifier = entry.Track.PlaybackIdentifier()
	}

	encoded, err := p.handle.Play(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to play %q: %w", entry.Track.Title, err)
	}

	p.current = &entry
	p.currentEncoded = encoded
	p.currentLooped = false
	p.state = domain.PlaybackPlaying
	p.log.Debug("playing track", "title", entry.Track.Title, "requester", entry.RequesterID)
	return nil
}

// SetPause pauses or resumes playback. Pausing arms the disconnect timer and
// resuming cancels it.
func (p *Player) SetPause(ctx context.Context, paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setPauseLocked(ctx, paused)
}

func (p *Player) setPauseLocked(ctx context.Context, paused bool) error {
	if p.destroyed {
		return ErrPlayerDestroyed
	}
	if p.current == nil {
		return ErrNothingPlaying
	}

	if err := p.handle.SetPaused(ctx, paused); err != nil {
		return fmt.Errorf("failed to set paused=%t: %w", paused, err)
	}

	if paused {
		p.state = domain.PlaybackPaused
		p.armDisconnectLocked()
	} else {
		p.state = domain.PlaybackPlaying
		p.disconnectTimer.cancel()
	}
	return nil
}

// Stop stops playback and arms the disconnect timer. The queue is left as is.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked(ctx)
}

// StopAndClear stops playback and empties the queue in one critical section,
// so no track end can start a queued entry in between. It returns the number
// of entries removed.
func (p *Player) StopAndClear(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.stopLocked(ctx); err != nil {
		return 0, err
	}
	return p.queue.Clear(), nil
}

func (p *Player) stopLocked(ctx context.Context) error {
	if p.destroyed {
		return ErrPlayerDestroyed
	}
	if err := p.handle.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	p.current = nil
	p.state = domain.PlaybackStopped
	p.pauseTimer.cancel()
	p.armDisconnectLocked()
	return nil
}

// Seek moves the position of the current track.
func (p *Player) Seek(ctx context.Context, position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPlayerDestroyed
	}
	if p.current == nil {
		return ErrNothingPlaying
	}
	if p.current.Track.IsStream || position < 0 || position > p.current.Track.Duration {
		return ErrNotSeekable
	}
	if err := p.handle.Seek(ctx, position); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// SetVolume sets the playback volume in percent.
func (p *Player) SetVolume(ctx context.Context, percent int) error {
	if percent < MinVolume || percent > MaxVolume {
		return ErrInvalidVolume
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPlayerDestroyed
	}
	if err := p.handle.SetVolume(ctx, percent); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	p.volume = percent
	return nil
}

// Volume returns the playback volume in percent.
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Skip drops n-1 queued entries and plays the n-th. A track loop is cleared
// because the user asked to move on.
func (p *Player) Skip(ctx context.Context, n int) (domain.QueueEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return domain.QueueEntry{}, ErrPlayerDestroyed
	}

	entry, err := p.queue.Skip(n)
	if err != nil {
		return domain.QueueEntry{}, err
	}
	if p.loopMode.LoopsTrack() {
		p.clearLoopLocked()
	}
	if err := p.playLocked(ctx, entry, PlayOptions{}); err != nil {
		return domain.QueueEntry{}, err
	}
	return entry, nil
}

// Enqueue adds entries to the queue and starts playback when the player is stopped.
// A single entry goes through EnqueueOne, several through EnqueueMany.
// position is the 0-based queue index of the first new entry, or -1 when it
// started playing right away.
func (p *Player) Enqueue(ctx context.Context, entries ...domain.QueueEntry) (position int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return 0, ErrPlayerDestroyed
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if len(entries) == 1 {
		p.queue.EnqueueOne(entries[0].Track, entries[0].RequesterID)
	} else if err := p.queue.EnqueueMany(entries); err != nil {
		return 0, err
	}
	position = p.queue.Len() - len(entries)

	if p.state != domain.PlaybackStopped {
		return position, nil
	}

	next, err := p.queue.Take()
	if err != nil {
		return 0, err
	}
	if err := p.playLocked(ctx, next, PlayOptions{}); err != nil {
		_ = p.queue.Insert(0, next.Track, next.RequesterID)
		return 0, err
	}
	return -1, nil
}

// WithQueue runs fn against the queue under the player lock.
func (p *Player) WithQueue(fn func(q *domain.Queue) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPlayerDestroyed
	}
	return fn(p.queue)
}

// --- Filters ---

// AddFilter applies filter under label.
func (p *Player) AddFilter(ctx context.Context, label string, filter domain.Filter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPlayerDestroyed
	}
	return p.handle.AddFilter(ctx, label, filter, true)
}

// RemoveFilter removes the filter registered under label.
func (p *Player) RemoveFilter(ctx context.Context, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPlayerDestroyed
	}
	return p.handle.RemoveFilter(ctx, label, true)
}

// HasFilter reports whether a filter is registered under label.
func (p *Player) HasFilter(label string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.destroyed && p.handle.HasFilter(label)
}

// ClearFilters removes every filter.
func (p *Player) ClearFilters(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return ErrPlayerDestroyed
	}
	return p.handle.ClearFilters(ctx, true)
}

// --- Loop modes ---

// LoopMode returns the active loop mode.
func (p *Player) LoopMode() domain.LoopMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopMode
}

// ToggleLoopTrack loops the current track, or disables an active track loop.
func (p *Player) ToggleLoopTrack(userID snowflake.ID) (domain.LoopMode, error) {
	return p.toggleTrackLoop(userID, domain.LoopModeTrack)
}

// LoopOnce replays the current track a single time after it ends.
// Calling it again before the replay cancels it.
func (p *Player) LoopOnce(userID snowflake.ID) (domain.LoopMode, error) {
	return p.toggleTrackLoop(userID, domain.LoopModeTrackOnce)
}

func (p *Player) toggleTrackLoop(userID snowflake.ID, mode domain.LoopMode) (domain.LoopMode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loopMode == mode {
		p.clearLoopLocked()
		return p.loopMode, nil
	}
	if p.current == nil {
		return p.loopMode, ErrNothingPlaying
	}

	p.clearLoopLocked()
	p.loopMode = mode
	p.loopTrack = copyEntry(p.current)
	p.loopedUser = userID
	return p.loopMode, nil
}

// ToggleLoopQueue starts repeating everything played from now on, or stops it.
func (p *Player) ToggleLoopQueue(userID snowflake.ID) domain.LoopMode {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loopMode == domain.LoopModeQueue {
		p.clearLoopLocked()
		return p.loopMode
	}

	p.clearLoopLocked()
	p.loopMode = domain.LoopModeQueue
	p.loopQueue = make([]domain.QueueEntry, 0, 1)
	if p.current != nil {
		p.loopQueue = append(p.loopQueue, *p.current)
		p.currentLooped = true
	}
	p.loopedUser = userID
	return p.loopMode
}

// LoopQueueSnapshot returns a copy of the accumulated loop-queue snapshot.
func (p *Player) LoopQueueSnapshot() []domain.QueueEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := make([]domain.QueueEntry, len(p.loopQueue))
	copy(result, p.loopQueue)
	return result
}

func (p *Player) clearLoopLocked() {
	p.loopMode = domain.LoopModeNone
	p.loopTrack = nil
	p.loopQueue = nil
	p.loopedUser = 0
}

// --- Notifications ---

// SetDND toggles suppression of per-track notifications.
func (p *Player) SetDND(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dnd = enabled
}

// DND reports whether per-track notifications are suppressed.
func (p *Player) DND() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dnd
}

// SetNotificationChannel sets where notifications are sent. Zero disables them.
func (p *Player) SetNotificationChannel(channelID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notificationChannelID = channelID
}

// NotificationChannel returns the notification channel, or zero.
func (p *Player) NotificationChannel() snowflake.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notificationChannelID
}

// notifyLocked sends through the notification channel. A failed send drops
// the channel so later events do not repeat the failure.
func (p *Player) notifyLocked(kind string, send func(channelID snowflake.ID) error) {
	channelID := p.notificationChannelID
	if channelID == 0 || p.notifier == nil {
		return
	}
	if err := send(channelID); err != nil {
		p.log.Warn("failed to send notification, dropping notification channel",
			"kind", kind,
			"channel", channelID,
			"error", err,
		)
		p.notificationChannelID = 0
	}
}

// --- Idle timers ---

// StartPauseTimer arms the pause timer if a track is playing.
// Arming again replaces the pending timer.
func (p *Player) StartPauseTimer() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed || p.state != domain.PlaybackPlaying {
		return false
	}
	p.pauseTimer.arm(p.scheduler, p.pauseTimeout, p.firePauseTimer)
	return true
}

// CancelPauseTimer cancels a pending pause timer. It is a no-op when none is armed.
func (p *Player) CancelPauseTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseTimer.cancel()
}

// StartDisconnectTimer arms the disconnect timer, replacing a pending one.
func (p *Player) StartDisconnectTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return
	}
	p.armDisconnectLocked()
}

// CancelDisconnectTimer cancels a pending disconnect timer.
func (p *Player) CancelDisconnectTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disconnectTimer.cancel()
}

func (p *Player) armDisconnectLocked() {
	p.disconnectTimer.arm(p.scheduler, p.disconnectTimeout, p.fireDisconnectTimer)
}

func (p *Player) firePauseTimer(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.pauseTimer.fired(gen) || p.destroyed || p.state != domain.PlaybackPlaying {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timerCallTimeout)
	defer cancel()

	if err := p.setPauseLocked(ctx, true); err != nil {
		p.log.Error("failed to pause idle player", "error", err)
		return
	}
	p.log.Info("paused player with no listeners")
	p.notifyLocked("auto_paused", func(channelID snowflake.ID) error {
		return p.notifier.SendAutoPaused(ctx, channelID)
	})
}

func (p *Player) fireDisconnectTimer(gen uint64) {
	p.mu.Lock()
	if !p.disconnectTimer.fired(gen) || p.destroyed {
		p.mu.Unlock()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timerCallTimeout)
	defer cancel()

	p.log.Info("disconnecting idle player")
	p.notifyLocked("idle_disconnect", func(channelID snowflake.ID) error {
		return p.notifier.SendIdleDisconnect(ctx, channelID)
	})
	onIdle := p.onIdleDisconnect
	p.mu.Unlock()

	if onIdle != nil {
		onIdle(p)
		return
	}
	if err := p.Destroy(ctx); err != nil {
		p.log.Error("failed to destroy idle player", "error", err)
	}
}

// --- Lifecycle ---

// SetChannel records the voice channel after the bot was moved.
func (p *Player) SetChannel(channelID snowflake.ID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = channelID
}

// Destroy cancels all timers, clears playback state and releases the node handle.
// Only the first call reaches the node.
func (p *Player) Destroy(ctx context.Context) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil
	}
	p.destroyed = true
	p.pauseTimer.cancel()
	p.disconnectTimer.cancel()
	p.queue.Clear()
	p.current = nil
	p.state = domain.PlaybackStopped
	p.clearLoopLocked()
	p.mu.Unlock()

	p.log.Info("destroyed player")
	if err := p.handle.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy node player: %w", err)
	}
	return nil
}

func copyEntry(e *domain.QueueEntry) *domain.QueueEntry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
