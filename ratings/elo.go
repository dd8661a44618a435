package ratings

import (
	"math"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
)

// DefaultKFactor is the maximum rating swing for a single game.
const DefaultKFactor = 32.0

// Outcome is one side's result classification. It drives both the actual
// score fed into the Elo formula and which win/loss/draw counters move.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeLoss
	OutcomeDraw
)

// Opposite returns the classification of the other side of the same game.
func (o Outcome) Opposite() Outcome {
	switch o {
	case OutcomeWin:
		return OutcomeLoss
	case OutcomeLoss:
		return OutcomeWin
	default:
		return OutcomeDraw
	}
}

// ActualScore returns the S term for the Elo update. Draws score 0 for both
// sides rather than the textbook 0.5; the existing rating history was built
// on that convention, so it must not change here.
func (o Outcome) ActualScore() float64 {
	if o == OutcomeWin {
		return 1
	}
	return 0
}

// Origin tells the bookkeeping which context a rated game came from.
type Origin int

const (
	OriginDuel Origin = iota
	OriginTournament
)

// Calculator computes Elo-style MMR updates for a single head-to-head
// result. It holds no state between calls.
type Calculator struct {
	kFactor float64
}

func NewCalculator() *Calculator {
	return &Calculator{kFactor: DefaultKFactor}
}

// ComputeUpdate returns both sides' new ratings and the applied deltas for
// one game. scoreA and scoreB are the actual scores (1 win, 0 loss, 0 for
// either side of a draw). Deltas are meant to be persisted alongside the
// match so a later correction can revert them without replaying history.
func (c *Calculator) ComputeUpdate(ratingA, ratingB int, scoreA, scoreB float64) (newRatingA, newRatingB, deltaA, deltaB int) {
	expectedA := c.expectedScore(float64(ratingA), float64(ratingB))
	expectedB := 1.0 - expectedA

	// math.Round rounds half away from zero, which keeps stored deltas exact
	// integer round-trips.
	newRatingA = int(math.Round(float64(ratingA) + c.kFactor*(scoreA-expectedA)))
	newRatingB = int(math.Round(float64(ratingB) + c.kFactor*(scoreB-expectedB)))

	deltaA = newRatingA - ratingA
	deltaB = newRatingB - ratingB
	return newRatingA, newRatingB, deltaA, deltaB
}

func (c *Calculator) expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// RecordOutcome moves one game's result into a rating record: the aggregate
// triple and the matching origin triple move together so the aggregate stays
// the sum of the two origins.
func RecordOutcome(r *models.Rating, outcome Outcome, origin Origin) {
	bump(r, outcome, origin, 1)
}

// UnrecordOutcome rolls back a previously recorded result, used when a
// reported result is corrected.
func UnrecordOutcome(r *models.Rating, outcome Outcome, origin Origin) {
	bump(r, outcome, origin, -1)
}

func bump(r *models.Rating, outcome Outcome, origin Origin, sign int) {
	switch outcome {
	case OutcomeWin:
		r.Wins += sign
		if origin == OriginDuel {
			r.DuelWins += sign
		} else {
			r.TournamentWins += sign
		}
	case OutcomeLoss:
		r.Losses += sign
		if origin == OriginDuel {
			r.DuelLosses += sign
		} else {
			r.TournamentLosses += sign
		}
	case OutcomeDraw:
		r.Draws += sign
		if origin == OriginDuel {
			r.DuelDraws += sign
		} else {
			r.TournamentDraws += sign
		}
	}
}
