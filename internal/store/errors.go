package store

import "errors"

var (
	// ErrWorkoutFull is returned when a registration would exceed the
	// workout's max_participants.
	ErrWorkoutFull = errors.New("workout is at maximum capacity")

	// ErrPollClosed is returned when casting a vote on a closed poll.
	ErrPollClosed = errors.New("poll is closed")

	// ErrPollReopen is returned when trying to move a closed poll back to
	// active. The transition is one-way.
	ErrPollReopen = errors.New("closed polls cannot be reopened")
)
