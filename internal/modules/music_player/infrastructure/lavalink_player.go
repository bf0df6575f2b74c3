package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// ErrTrackUnresolvable is returned when a track without a node id cannot be
// found on the node, not even by searching its title.
var ErrTrackUnresolvable = errors.New("track could not be resolved on the node")

// lavalinkPlayerHandle controls one guild's Lavalink player.
type lavalinkPlayerHandle struct {
	adapter *LavalinkAdapter
	guildID snowflake.ID

	mu      sync.Mutex
	filters map[string]domain.Filter

	destroyOnce sync.Once
	destroyErr  error
}

func (h *lavalinkPlayerHandle) player() disgolink.Player {
	return h.adapter.link.Player(h.guildID)
}

// Play starts the request. Tracks that carry no encoded form are resolved
// first, falling back to a title search.
func (h *lavalinkPlayerHandle) Play(ctx context.Context, req ports.PlayRequest) (string, error) {
	encoded := req.Encoded
	if encoded == "" {
		resolved, err := h.resolve(ctx, req)
		if err != nil {
			return "", err
		}
		encoded = resolved
	}

	opts := []lavalink.PlayerUpdateOpt{lavalink.WithEncodedTrack(encoded)}
	if req.Start > 0 {
		opts = append(opts, lavalink.WithPosition(toLavalinkDuration(req.Start)))
	}
	if req.End > 0 {
		opts = append(opts, lavalink.WithEndTime(toLavalinkDuration(req.End)))
	}

	if err := h.player().Update(ctx, opts...); err != nil {
		return "", errors.Wrap(err, "failed to play track")
	}
	return encoded, nil
}

func (h *lavalinkPlayerHandle) resolve(ctx context.Context, req ports.PlayRequest) (string, error) {
	queries := make([]string, 0, 2)
	if req.Identifier != "" {
		queries = append(queries, req.Identifier)
	}
	if req.Track != nil {
		queries = append(queries, domain.FallbackSearchQuery(req.Track))
	}

	for _, query := range queries {
		result, err := h.adapter.LoadTracks(ctx, query)
		if err != nil {
			return "", err
		}
		if len(result.Tracks) > 0 && result.Tracks[0].Encoded != "" {
			return result.Tracks[0].Encoded, nil
		}
		slog.Debug("no node track for query", "guild", h.guildID, "query", query)
	}
	return "", ErrTrackUnresolvable
}

// SetPaused pauses or resumes playback.
func (h *lavalinkPlayerHandle) SetPaused(ctx context.Context, paused bool) error {
	if err := h.player().Update(ctx, lavalink.WithPaused(paused)); err != nil {
		return errors.Wrapf(err, "failed to set paused=%t", paused)
	}
	return nil
}

// Stop stops playback without leaving the channel.
func (h *lavalinkPlayerHandle) Stop(ctx context.Context) error {
	if err := h.player().Update(ctx, lavalink.WithNullTrack()); err != nil {
		return errors.Wrap(err, "failed to stop playback")
	}
	return nil
}

// Seek moves the playback position.
func (h *lavalinkPlayerHandle) Seek(ctx context.Context, position time.Duration) error {
	if err := h.player().Update(ctx, lavalink.WithPosition(toLavalinkDuration(position))); err != nil {
		return errors.Wrap(err, "failed to seek")
	}
	return nil
}

// SetVolume sets the volume in percent.
func (h *lavalinkPlayerHandle) SetVolume(ctx context.Context, percent int) error {
	if err := h.player().Update(ctx, lavalink.WithVolume(percent)); err != nil {
		return errors.Wrap(err, "failed to set volume")
	}
	return nil
}

func (h *lavalinkPlayerHandle) AddFilter(
	ctx context.Context,
	label string,
	filter domain.Filter,
	fastApply bool,
) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := make(map[string]domain.Filter, len(h.filters)+1)
	for k, v := range h.filters {
		next[k] = v
	}
	next[label] = filter

	if err := h.applyFilters(ctx, next, fastApply); err != nil {
		return err
	}
	h.filters = next
	return nil
}

func (h *lavalinkPlayerHandle) RemoveFilter(ctx context.Context, label string, fastApply bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.filters[label]; !ok {
		return nil
	}
	next := lo.OmitByKeys(h.filters, []string{label})

	if err := h.applyFilters(ctx, next, fastApply); err != nil {
		return err
	}
	h.filters = next
	return nil
}

func (h *lavalinkPlayerHandle) HasFilter(label string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.filters[label]
	return ok
}

func (h *lavalinkPlayerHandle) ClearFilters(ctx context.Context, fastApply bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := map[string]domain.Filter{}
	if err := h.applyFilters(ctx, next, fastApply); err != nil {
		return err
	}
	h.filters = next
	return nil
}

// applyFilters sends the combined filters. With fastApply the player seeks to
// its current position so the node flushes audio buffered with old filters.
func (h *lavalinkPlayerHandle) applyFilters(
	ctx context.Context,
	filters map[string]domain.Filter,
	fastApply bool,
) error {
	combined, err := toLavalinkFilters(filters)
	if err != nil {
		return err
	}

	player := h.player()
	opts := []lavalink.PlayerUpdateOpt{lavalink.WithFilters(combined)}
	if fastApply && player.Track() != nil {
		opts = append(opts, lavalink.WithPosition(player.Position()))
	}

	if err := player.Update(ctx, opts...); err != nil {
		return errors.Wrap(err, "failed to update filters")
	}
	return nil
}

// toLavalinkFilters merges the filters in label order and converts the result
// through its JSON form, which both types share.
func toLavalinkFilters(filters map[string]domain.Filter) (lavalink.Filters, error) {
	labels := lo.Keys(filters)
	slices.Sort(labels)

	var merged domain.Filter
	for _, label := range labels {
		merged = merged.Merge(filters[label])
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return lavalink.Filters{}, errors.Wrap(err, "failed to encode filters")
	}
	var out lavalink.Filters
	if err := json.Unmarshal(raw, &out); err != nil {
		return lavalink.Filters{}, errors.Wrap(err, "failed to decode filters")
	}
	return out, nil
}

// Position returns the position last reported by the node.
func (h *lavalinkPlayerHandle) Position() time.Duration {
	player := h.adapter.link.ExistingPlayer(h.guildID)
	if player == nil {
		return 0
	}
	return time.Duration(player.Position()) * time.Millisecond
}

// Destroy removes the node player and leaves the voice channel.
func (h *lavalinkPlayerHandle) Destroy(ctx context.Context) error {
	h.destroyOnce.Do(func() {
		if player := h.adapter.link.ExistingPlayer(h.guildID); player != nil {
			if err := player.Destroy(ctx); err != nil {
				slog.Warn("failed to destroy player", "guild", h.guildID, "error", err)
			}
		}

		err := h.adapter.gateway.ChannelVoiceJoinManual(h.guildID.String(), "", false, false)
		if err != nil {
			h.destroyErr = errors.Wrap(err, "failed to leave voice channel")
		}
	})
	return h.destroyErr
}

var _ ports.PlayerHandle = (*lavalinkPlayerHandle)(nil)
