package application

import (
	"context"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

func TestPlayer_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards encoded track and cancels timers", func(t *testing.T) {
		f := newPlayerFixture()
		f.player.StartDisconnectTimer()

		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{Start: time.Second}))

		req := f.handle.lastPlay()
		assert.Equal(t, "enc-a", req.Encoded)
		assert.Empty(t, req.Identifier)
		assert.Equal(t, time.Second, req.Start)
		assert.Equal(t, domain.PlaybackPlaying, f.player.State())
		assert.Equal(t, "a", f.player.Current().Track.Identifier)
		assert.Empty(t, f.scheduler.pending(), "play must cancel pending timers")
	})

	t.Run("substitutes URI for tracks without node id", func(t *testing.T) {
		f := newPlayerFixture()
		entry := domain.NewQueueEntry(&domain.Track{
			Title:      "Spotify Song",
			URI:        "https://open.spotify.com/track/abc",
			SourceName: "spotify",
		}, 1)

		require.NoError(t, f.player.Play(ctx, entry, PlayOptions{}))

		req := f.handle.lastPlay()
		assert.Empty(t, req.Encoded)
		assert.Equal(t, "https://open.spotify.com/track/abc", req.Identifier)
	})

	t.Run("ignore if playing", func(t *testing.T) {
		f := newPlayerFixture()
		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
		require.NoError(t, f.player.Play(ctx, testEntry("b", 1), PlayOptions{IgnoreIfPlaying: true}))

		assert.Equal(t, 1, f.handle.playCount())
		assert.Equal(t, "a", f.player.Current().Track.Identifier)
	})

	t.Run("node failure leaves state untouched", func(t *testing.T) {
		f := newPlayerFixture()
		f.handle.playErr = errNode

		err := f.player.Play(ctx, testEntry("a", 1), PlayOptions{})
		require.ErrorIs(t, err, errNode)
		assert.Nil(t, f.player.Current())
		assert.Equal(t, domain.PlaybackStopped, f.player.State())
	})
}

func TestPlayer_SetPause(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()

	require.ErrorIs(t, f.player.SetPause(ctx, true), ErrNothingPlaying)

	require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))

	require.NoError(t, f.player.SetPause(ctx, true))
	assert.Equal(t, domain.PlaybackPaused, f.player.State())
	assert.True(t, f.player.Snapshot().DisconnectTimerPending, "pausing arms the disconnect timer")

	require.NoError(t, f.player.SetPause(ctx, false))
	assert.Equal(t, domain.PlaybackPlaying, f.player.State())
	assert.False(t, f.player.Snapshot().DisconnectTimerPending, "resuming cancels the disconnect timer")
	assert.Equal(t, []bool{true, false}, f.handle.pauseCalls())
}

func TestPlayer_Stop(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()
	require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
	_, err := f.player.Enqueue(ctx, testEntry("b", 1))
	require.NoError(t, err)

	require.NoError(t, f.player.Stop(ctx))

	snap := f.player.Snapshot()
	assert.Nil(t, snap.Current)
	assert.Equal(t, domain.PlaybackStopped, snap.State)
	assert.True(t, snap.DisconnectTimerPending)
	assert.Equal(t, []string{"b"}, queueIDs(f.player), "stop leaves the queue to the caller")
}

func TestPlayer_StopAndClear(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()
	require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
	_, err := f.player.Enqueue(ctx, testEntry("b", 1), testEntry("c", 1))
	require.NoError(t, err)

	cleared, err := f.player.StopAndClear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)
	assert.Empty(t, queueIDs(f.player))
	assert.Equal(t, domain.PlaybackStopped, f.player.State())

	// The node's end for the stopped track finds nothing to start.
	require.NoError(t, f.player.HandleTrackEnd(ctx, nodeTrack("a"), domain.TrackEndFinished))
	assert.Nil(t, f.player.Current())
	assert.Equal(t, 1, f.handle.playCount())

	require.NoError(t, f.player.Destroy(ctx))
	_, err = f.player.StopAndClear(ctx)
	assert.ErrorIs(t, err, ErrPlayerDestroyed)
}

func TestPlayer_SeekAndVolume(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()

	assert.ErrorIs(t, f.player.Seek(ctx, time.Second), ErrNothingPlaying)
	require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))

	require.NoError(t, f.player.Seek(ctx, 30*time.Second))
	assert.ErrorIs(t, f.player.Seek(ctx, time.Hour), ErrNotSeekable)

	require.NoError(t, f.player.SetVolume(ctx, 150))
	assert.Equal(t, 150, f.player.Volume())
	assert.ErrorIs(t, f.player.SetVolume(ctx, 1001), ErrInvalidVolume)
	assert.ErrorIs(t, f.player.SetVolume(ctx, -1), ErrInvalidVolume)
	assert.Equal(t, []int{150}, f.handle.volumes)
}

func TestPlayer_Filters(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()
	nightcore, _ := domain.PresetFilter(domain.FilterNightcore)

	require.NoError(t, f.player.AddFilter(ctx, domain.FilterNightcore, nightcore))
	assert.True(t, f.player.HasFilter(domain.FilterNightcore))

	require.NoError(t, f.player.RemoveFilter(ctx, domain.FilterNightcore))
	assert.False(t, f.player.HasFilter(domain.FilterNightcore))

	require.NoError(t, f.player.AddFilter(ctx, domain.Filter8D, domain.Filter{}))
	require.NoError(t, f.player.ClearFilters(ctx))
	assert.False(t, f.player.HasFilter(domain.Filter8D))
}

func TestPlayer_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("starts playback when stopped", func(t *testing.T) {
		f := newPlayerFixture()

		pos, err := f.player.Enqueue(ctx, testEntry("a", 1), testEntry("b", 1))
		require.NoError(t, err)

		assert.Equal(t, -1, pos)
		assert.Equal(t, "a", f.player.Current().Track.Identifier)
		assert.Equal(t, []string{"b"}, queueIDs(f.player))
	})

	t.Run("queues behind the current track", func(t *testing.T) {
		f := newPlayerFixture()
		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))

		pos, err := f.player.Enqueue(ctx, testEntry("b", 1))
		require.NoError(t, err)
		assert.Equal(t, 0, pos)

		pos, err = f.player.Enqueue(ctx, testEntry("c", 1), testEntry("d", 1))
		require.NoError(t, err)
		assert.Equal(t, 1, pos)
		assert.Equal(t, []string{"b", "c", "d"}, queueIDs(f.player))
	})

	t.Run("failed start keeps the entry queued", func(t *testing.T) {
		f := newPlayerFixture()
		f.handle.playErr = errNode

		_, err := f.player.Enqueue(ctx, testEntry("a", 1))
		require.ErrorIs(t, err, errNode)
		assert.Equal(t, []string{"a"}, queueIDs(f.player))
	})
}

func TestPlayer_Skip(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()
	_, err := f.player.Enqueue(ctx, testEntry("a", 1), testEntry("b", 2), testEntry("c", 3), testEntry("d", 4))
	require.NoError(t, err)
	_, err = f.player.ToggleLoopTrack(9)
	require.NoError(t, err)

	entry, err := f.player.Skip(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, "c", entry.Track.Identifier)
	assert.Equal(t, "c", f.player.Current().Track.Identifier)
	assert.Equal(t, []string{"d"}, queueIDs(f.player))
	assert.Equal(t, domain.LoopModeNone, f.player.LoopMode())

	_, err = f.player.Skip(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)
}

func TestPlayer_LoopTrackToggle(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()

	_, err := f.player.ToggleLoopTrack(7)
	require.ErrorIs(t, err, ErrNothingPlaying)

	_, err = f.player.Enqueue(ctx, testEntry("a", 1), testEntry("b", 1))
	require.NoError(t, err)
	before := queueIDs(f.player)

	mode, err := f.player.ToggleLoopTrack(7)
	require.NoError(t, err)
	assert.Equal(t, domain.LoopModeTrack, mode)
	assert.Equal(t, snowflake.ID(7), f.player.Snapshot().LoopedUser)

	mode, err = f.player.ToggleLoopTrack(7)
	require.NoError(t, err)
	assert.Equal(t, domain.LoopModeNone, mode)
	assert.Nil(t, f.player.loopTrack)
	assert.Equal(t, before, queueIDs(f.player), "toggling the track loop leaves the queue alone")
}

func TestPlayer_LoopQueueToggle(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()
	require.NoError(t, f.player.Play(ctx, testEntry("x", 1), PlayOptions{}))

	assert.Equal(t, domain.LoopModeQueue, f.player.ToggleLoopQueue(3))
	snapshot := f.player.LoopQueueSnapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "x", snapshot[0].Track.Identifier)

	assert.Equal(t, domain.LoopModeNone, f.player.ToggleLoopQueue(3))
	assert.Empty(t, f.player.LoopQueueSnapshot())
}

func TestPlayer_PauseTimer(t *testing.T) {
	ctx := context.Background()

	t.Run("not armed while stopped", func(t *testing.T) {
		f := newPlayerFixture()
		assert.False(t, f.player.StartPauseTimer())
	})

	t.Run("fires force pause and notifies", func(t *testing.T) {
		f := newPlayerFixture()
		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
		require.True(t, f.player.StartPauseTimer())

		f.scheduler.fireAll(testPauseTimeout)

		assert.Equal(t, domain.PlaybackPaused, f.player.State())
		assert.Equal(t, []bool{true}, f.handle.pauseCalls())
		assert.Equal(t, 1, f.notifier.autoPaused)
		assert.True(t, f.player.Snapshot().DisconnectTimerPending)
	})

	t.Run("re-arming replaces the previous timer", func(t *testing.T) {
		f := newPlayerFixture()
		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
		require.True(t, f.player.StartPauseTimer())
		require.True(t, f.player.StartPauseTimer())

		pending := f.scheduler.pending()
		require.Len(t, pending, 1)

		// Both callbacks run, but only the live one acts.
		f.scheduler.fireAll(testPauseTimeout)
		assert.Equal(t, []bool{true}, f.handle.pauseCalls())
	})

	t.Run("cancelled timer does not fire", func(t *testing.T) {
		f := newPlayerFixture()
		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
		require.True(t, f.player.StartPauseTimer())
		f.player.CancelPauseTimer()
		f.player.CancelPauseTimer()

		f.scheduler.fireAll(testPauseTimeout)
		assert.Empty(t, f.handle.pauseCalls())
		assert.Equal(t, domain.PlaybackPlaying, f.player.State())
	})

	t.Run("play cancels pending pause timer", func(t *testing.T) {
		f := newPlayerFixture()
		require.NoError(t, f.player.Play(ctx, testEntry("a", 1), PlayOptions{}))
		require.True(t, f.player.StartPauseTimer())
		require.NoError(t, f.player.Play(ctx, testEntry("b", 1), PlayOptions{}))

		f.scheduler.fireAll(testPauseTimeout)
		assert.Empty(t, f.handle.pauseCalls())
	})
}

func TestPlayer_DisconnectTimer(t *testing.T) {
	f := newPlayerFixture()
	f.player.StartDisconnectTimer()

	f.scheduler.fireAll(testDisconnectTime)

	require.Len(t, f.idled, 1)
	assert.Same(t, f.player, f.idled[0])
	assert.Equal(t, 1, f.notifier.idle)
}

func TestPlayer_DisconnectTimerWithoutHook(t *testing.T) {
	handle := newMockHandle()
	scheduler := &manualScheduler{}
	p := NewPlayer(PlayerConfig{
		GuildID:           testGuildID,
		Handle:            handle,
		Scheduler:         scheduler,
		DisconnectTimeout: testDisconnectTime,
	})
	p.StartDisconnectTimer()

	scheduler.fireAll(testDisconnectTime)

	assert.True(t, p.IsDestroyed())
	assert.Equal(t, 1, handle.destroyed)
}

func TestPlayer_Destroy(t *testing.T) {
	ctx := context.Background()
	f := newPlayerFixture()
	_, err := f.player.Enqueue(ctx, testEntry("a", 1), testEntry("b", 1))
	require.NoError(t, err)
	require.True(t, f.player.StartPauseTimer())
	f.player.StartDisconnectTimer()

	require.NoError(t, f.player.Destroy(ctx))
	require.NoError(t, f.player.Destroy(ctx))

	assert.Equal(t, 1, f.handle.destroyed, "node handle is released once")
	assert.Empty(t, f.scheduler.pending(), "destroy cancels every timer")
	assert.Nil(t, f.player.Current())
	assert.ErrorIs(t, f.player.Play(ctx, testEntry("c", 1), PlayOptions{}), ErrPlayerDestroyed)
	assert.ErrorIs(t, f.player.WithQueue(func(*domain.Queue) error { return nil }), ErrPlayerDestroyed)

	f.scheduler.fireAll(testDisconnectTime)
	assert.Empty(t, f.idled)
}

func TestNewPlayer_VolumeDefaults(t *testing.T) {
	tests := []struct {
		name   string
		volume int
		want   int
	}{
		{name: "zero uses default", volume: 0, want: DefaultVolume},
		{name: "too loud uses default", volume: 5000, want: DefaultVolume},
		{name: "explicit", volume: 80, want: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(PlayerConfig{GuildID: testGuildID, Handle: newMockHandle(), Volume: tt.volume})
			assert.Equal(t, tt.want, p.Volume())
		})
	}
}
