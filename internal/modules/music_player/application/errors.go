package application

import "errors"

// Player errors.
var (
	ErrPlayerDestroyed = errors.New("player has been destroyed")
	ErrNothingPlaying  = errors.New("nothing is playing")
	ErrInvalidVolume   = errors.New("volume must be between 0 and 1000")
	ErrNotSeekable     = errors.New("current track is not seekable")
)
