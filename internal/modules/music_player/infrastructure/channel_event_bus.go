package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size of the event channel.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// topic holds the handlers of one event type.
type topic[E any] struct {
	name     string
	mu       sync.RWMutex
	handlers []func(context.Context, E)
}

func newTopic[E any](name string) *topic[E] {
	return &topic[E]{name: name}
}

func (t *topic[E]) subscribe(handler func(context.Context, E)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// envelope binds event to this topic's handlers for the shared dispatcher.
func (t *topic[E]) envelope(event E, guildID snowflake.ID) envelope {
	return envelope{
		name:    t.name,
		guildID: guildID,
		deliver: func(ctx context.Context) {
			t.mu.RLock()
			handlers := t.handlers
			t.mu.RUnlock()
			for _, handler := range handlers {
				t.invoke(ctx, handler, event)
			}
		},
	}
}

// invoke runs one handler, recovering a panic so the dispatcher survives it.
func (t *topic[E]) invoke(ctx context.Context, handler func(context.Context, E), event E) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "type", t.name, "panic", r)
		}
	}()
	handler(ctx, event)
}

type envelope struct {
	name    string
	guildID snowflake.ID
	deliver func(context.Context)
}

// ChannelEventBus provides a channel-based event bus for node events.
// It implements both EventPublisher and EventSubscriber interfaces.
//
// All event types share one buffered channel and one dispatcher, so handlers
// observe events in publish order across types: a track's start is always
// handled before its end.
type ChannelEventBus struct {
	trackStarted   *topic[domain.TrackStartedEvent]
	trackEnded     *topic[domain.TrackEndedEvent]
	trackException *topic[domain.TrackExceptionEvent]

	events chan envelope
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		trackStarted:   newTopic[domain.TrackStartedEvent]("TrackStarted"),
		trackEnded:     newTopic[domain.TrackEndedEvent]("TrackEnded"),
		trackException: newTopic[domain.TrackExceptionEvent]("TrackException"),
		events:         make(chan envelope, bufferSize),
		ctx:            ctx,
		cancel:         cancel,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

func (b *ChannelEventBus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case env, ok := <-b.events:
			if !ok {
				return
			}
			env.deliver(b.ctx)
		}
	}
}

// publish never blocks: when the buffer is full the event is dropped with a warning.
func (b *ChannelEventBus) publish(env envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", env.name)
		return
	}
	select {
	case b.events <- env:
		slog.Debug("published event", "type", env.name, "guild", env.guildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", env.name, "guild", env.guildID)
	}
}

// --- EventPublisher interface ---

// PublishTrackStarted publishes a TrackStartedEvent.
func (b *ChannelEventBus) PublishTrackStarted(event domain.TrackStartedEvent) {
	b.publish(b.trackStarted.envelope(event, event.GuildID))
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	b.publish(b.trackEnded.envelope(event, event.GuildID))
}

// PublishTrackException publishes a TrackExceptionEvent.
func (b *ChannelEventBus) PublishTrackException(event domain.TrackExceptionEvent) {
	b.publish(b.trackException.envelope(event, event.GuildID))
}

// --- EventSubscriber interface ---

// OnTrackStarted registers a handler for TrackStartedEvent.
func (b *ChannelEventBus) OnTrackStarted(handler func(context.Context, domain.TrackStartedEvent)) {
	b.trackStarted.subscribe(handler)
}

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.trackEnded.subscribe(handler)
}

// OnTrackException registers a handler for TrackExceptionEvent.
func (b *ChannelEventBus) OnTrackException(
	handler func(context.Context, domain.TrackExceptionEvent),
) {
	b.trackException.subscribe(handler)
}

// Close stops the dispatchers. Events still buffered are dropped.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.events)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
