package usecases

import (
	"errors"

	"github.com/sglre6355/vibr/internal/modules/music_player/application"
	"github.com/sglre6355/vibr/internal/modules/music_player/domain"
)

// Errors returned by the command services.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrNotInVoiceChannel is returned when the user is not in a voice channel.
	ErrNotInVoiceChannel = errors.New("you must be in a voice channel")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrLoadFailed is returned when the node reports an error while loading.
	ErrLoadFailed = errors.New("failed to load track")

	// ErrQueueEmpty is returned when the queue holds fewer entries than required.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrQueueFull is returned when the tracks do not fit into the queue.
	ErrQueueFull = errors.New("the queue is full")

	// ErrInvalidPosition is returned when an invalid queue position is specified.
	ErrInvalidPosition = errors.New("invalid queue position")

	// ErrInvalidVolume is returned when a volume is outside 0..1000.
	ErrInvalidVolume = errors.New("volume must be between 0 and 1000")

	// ErrNotSeekable is returned for streams and positions past the end of the track.
	ErrNotSeekable = errors.New("cannot seek to that position")

	// ErrUnknownFilter is returned when a filter preset does not exist.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrNodeUnavailable is returned when no audio node is configured.
	ErrNodeUnavailable = errors.New("music playback is currently unavailable")
)

// translateError maps engine and queue errors onto the errors of this package.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, application.ErrPlayerDestroyed):
		return ErrNotConnected
	case errors.Is(err, application.ErrNothingPlaying):
		return ErrNotPlaying
	case errors.Is(err, application.ErrInvalidVolume):
		return ErrInvalidVolume
	case errors.Is(err, application.ErrNotSeekable):
		return ErrNotSeekable
	case errors.Is(err, domain.ErrQueueEmpty):
		return ErrQueueEmpty
	case errors.Is(err, domain.ErrQueueFull):
		return ErrQueueFull
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return ErrInvalidPosition
	default:
		return err
	}
}
