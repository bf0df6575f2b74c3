package domain

import "errors"

// Queue errors.
var (
	ErrQueueEmpty      = errors.New("queue is empty")
	ErrQueueFull       = errors.New("queue is full")
	ErrIndexOutOfRange = errors.New("queue index out of range")
)
