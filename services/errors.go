package services

import "errors"

// Errors shared across the engine services. State-machine and validation
// violations are returned as-is so callers can map them to user-facing
// messages with errors.Is.
var (
	// Tournament state machine
	ErrInsufficientParticipants   = errors.New("tournament requires at least 2 active participants")
	ErrTournamentAlreadyStarted   = errors.New("tournament has already started")
	ErrTournamentAlreadyCompleted = errors.New("tournament has already completed")
	ErrTournamentNotActive        = errors.New("tournament is not active")
	ErrMaxRoundsReached           = errors.New("tournament is already at its final round")

	// Result reporting
	ErrAmbiguousWinner       = errors.New("reported winner is not part of the match")
	ErrResultMissing         = errors.New("a result string is required")
	ErrResultAlreadyReported = errors.New("result already reported, use a correction instead")
	ErrResultNotReported     = errors.New("no reported result to correct")
	ErrByeMatchImmutable     = errors.New("bye matches cannot be reported or corrected")

	// Data integrity: a rated result must carry both stored deltas, or the
	// revert protocol cannot run safely.
	ErrRatingDeltaMissing = errors.New("stored rating delta is missing for a rated result")
)
