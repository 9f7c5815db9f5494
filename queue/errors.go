package queue

import "errors"

// Command failures. Every one of these is terminal for the user action that
// produced it; callers surface them and never retry automatically.
var (
	// Check-in rules
	ErrDuplicatePhone = errors.New("phone number is already in the waiting queue")
	ErrQueuePaused    = errors.New("queue is paused")
	ErrEventNotActive = errors.New("event is not active")
	ErrInvalidRoster  = errors.New("team roster must contain exactly five complete players")

	// Match lifecycle
	ErrMatchInProgress   = errors.New("a match is already in progress")
	ErrInsufficientTeams = errors.New("not enough waiting teams to start a match")
	ErrNoActiveMatch     = errors.New("no match is in progress")

	// Admin removals
	ErrPlayingTeamLocked = errors.New("cannot remove a team that is currently playing")

	ErrTeamNotFound   = errors.New("team not found in queue")
	ErrPlayerNotFound = errors.New("player not found in queue")
)
