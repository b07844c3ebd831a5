package domain

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid status request")
	ErrQueueFull         = errors.New("request queue full")
	ErrDispatcherStopped = errors.New("dispatcher stopped")
	ErrRelayClosed       = errors.New("relay connection closed")
)
