package application

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// HandleTrackStart records the now-current entry in the loop-queue snapshot
// while queue looping is active. It returns the current entry, or nil when
// track is not the current entry.
func (p *Player) HandleTrackStart(track *domain.Track) *domain.QueueEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed || p.current == nil || !p.isCurrentLocked(track) {
		return nil
	}
	if p.loopMode == domain.LoopModeQueue && !p.currentLooped {
		p.loopQueue = append(p.loopQueue, *p.current)
		p.currentLooped = true
	}
	return copyEntry(p.current)
}

// HandleTrackEnd decides what plays next after the node reports that track
// ended. Only finished and load-failed tracks advance; stops and replacements
// are driven by the command that caused them. Ends of tracks that are no
// longer current are ignored.
func (p *Player) HandleTrackEnd(ctx context.Context, track *domain.Track, reason domain.TrackEndReason) error {
	if !reason.ShouldAdvanceQueue() {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil
	}
	if !p.isCurrentLocked(track) {
		p.log.Debug("ignoring end of stale track", "reason", reason)
		return nil
	}

	// Never replay a track the node failed to load.
	if reason == domain.TrackEndLoadFailed && p.loopMode.LoopsTrack() {
		p.log.Warn("dropping track loop after load failure")
		p.clearLoopLocked()
	}

	switch {
	case p.loopMode.LoopsTrack() && p.loopTrack != nil:
		entry := *p.loopTrack
		if p.loopMode == domain.LoopModeTrackOnce {
			p.clearLoopLocked()
		}
		if err := p.playLocked(ctx, entry, PlayOptions{}); err != nil {
			return err
		}
		if !p.dnd {
			p.notifyLocked("looping", func(channelID snowflake.ID) error {
				return p.notifier.SendNowPlaying(ctx, channelID, ports.NowPlayingInfo{
					GuildID: p.guildID,
					Entry:   entry,
					Looping: true,
				})
			})
		}
		return nil

	case p.loopMode == domain.LoopModeQueue && len(p.loopQueue) > 0 && p.queue.IsEmpty():
		if err := p.queue.EnqueueMany(p.loopQueue); err != nil {
			p.log.Warn("failed to re-append loop queue", "size", len(p.loopQueue), "error", err)
		} else {
			p.loopQueue = make([]domain.QueueEntry, 0, len(p.loopQueue))
		}
	}

	entry, err := p.queue.Take()
	if errors.Is(err, domain.ErrQueueEmpty) {
		p.current = nil
		p.state = domain.PlaybackStopped
		if !p.dnd {
			p.notifyLocked("end_of_queue", func(channelID snowflake.ID) error {
				return p.notifier.SendEndOfQueue(ctx, channelID)
			})
		}
		p.armDisconnectLocked()
		return nil
	}
	if err != nil {
		return err
	}

	if err := p.playLocked(ctx, entry, PlayOptions{}); err != nil {
		return err
	}
	if !p.dnd {
		p.notifyLocked("now_playing", func(channelID snowflake.ID) error {
			return p.notifier.SendNowPlaying(ctx, channelID, ports.NowPlayingInfo{
				GuildID: p.guildID,
				Entry:   entry,
			})
		})
	}
	return nil
}

// isCurrentLocked reports whether track, as reported by the node, is the
// current entry. Events that carry no track are attributed to it.
func (p *Player) isCurrentLocked(track *domain.Track) bool {
	if track == nil {
		return true
	}
	if p.current == nil {
		return false
	}
	if track.Encoded != "" && p.currentEncoded != "" {
		return track.Encoded == p.currentEncoded
	}
	return track.Identifier != "" && track.Identifier == p.current.Track.Identifier
}

// HandleChannelMove follows the bot into channelID. When a track is playing it
// is paused while the voice connection settles and then resumed.
func (p *Player) HandleChannelMove(ctx context.Context, channelID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return nil
	}
	p.channelID = channelID
	if p.state != domain.PlaybackPlaying {
		return nil
	}

	if err := p.handle.SetPaused(ctx, true); err != nil {
		return err
	}

	settle := time.NewTimer(p.moveSettleDelay)
	defer settle.Stop()
	select {
	case <-settle.C:
	case <-ctx.Done():
	}

	// The resume must run even when ctx was cancelled during the wait.
	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timerCallTimeout)
	defer cancel()
	return p.handle.SetPaused(restoreCtx, false)
}
