package ports

import (
	"context"

	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// EventPublisher publishes node events for asynchronous handling.
type EventPublisher interface {
	PublishTrackStarted(event domain.TrackStartedEvent)
	PublishTrackEnded(event domain.TrackEndedEvent)
	PublishTrackException(event domain.TrackExceptionEvent)
}

// EventSubscriber registers handlers for node events.
type EventSubscriber interface {
	OnTrackStarted(handler func(context.Context, domain.TrackStartedEvent))
	OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent))
	OnTrackException(handler func(context.Context, domain.TrackExceptionEvent))
}
