package services

import (
	"context"
	"fmt"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/first5455/vibe-tournament-organization-sub000/ratings"
	"github.com/first5455/vibe-tournament-organization-sub000/repositories"
)

// RatingDeltas carries the MMR movement applied to both sides of one rated
// game. Nil pointers mean the game was not rated.
type RatingDeltas struct {
	Player1Delta *int `json:"player1_delta,omitempty"`
	Player2Delta *int `json:"player2_delta,omitempty"`
}

// outcomesFromResult derives both sides' classifications from a stored
// result. A winner decides win/loss; a winnerless auto-resolved result
// ("0-0") counts as a loss for both sides; any other winnerless result is a
// draw for both.
func outcomesFromResult(winnerID *int, player1ID int, result *string) (ratings.Outcome, ratings.Outcome) {
	if winnerID == nil {
		if result != nil && *result == models.ResultAutoResolved {
			return ratings.OutcomeLoss, ratings.OutcomeLoss
		}
		return ratings.OutcomeDraw, ratings.OutcomeDraw
	}
	outcome := ratings.OutcomeLoss
	if *winnerID == player1ID {
		outcome = ratings.OutcomeWin
	}
	return outcome, outcome.Opposite()
}

// applyRating computes one rated game's MMR movement from the players'
// current ratings, persists the new ratings together with the win/loss/draw
// bookkeeping, and returns the applied deltas.
func applyRating(
	ctx context.Context,
	exec repositories.SQLExecutor,
	ratingRepo repositories.RatingRepository,
	calculator *ratings.Calculator,
	gameID, user1ID, user2ID int,
	outcome1, outcome2 ratings.Outcome,
	origin ratings.Origin,
) (delta1, delta2 int, err error) {
	rating1, err := ratingRepo.GetOrCreateForUpdate(ctx, exec, user1ID, gameID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load rating for user %d: %w", user1ID, err)
	}
	rating2, err := ratingRepo.GetOrCreateForUpdate(ctx, exec, user2ID, gameID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load rating for user %d: %w", user2ID, err)
	}

	newMMR1, newMMR2, delta1, delta2 := calculator.ComputeUpdate(
		rating1.MMR, rating2.MMR,
		outcome1.ActualScore(), outcome2.ActualScore(),
	)

	rating1.MMR = newMMR1
	rating2.MMR = newMMR2
	ratings.RecordOutcome(rating1, outcome1, origin)
	ratings.RecordOutcome(rating2, outcome2, origin)

	if err := ratingRepo.Update(ctx, exec, rating1); err != nil {
		return 0, 0, err
	}
	if err := ratingRepo.Update(ctx, exec, rating2); err != nil {
		return 0, 0, err
	}
	return delta1, delta2, nil
}

// revertRating undoes a previously applied rated result by subtracting the
// stored deltas and rolling back the bookkeeping of the old classification.
// Ratings are path-dependent, so the stored deltas are authoritative; the
// result is never recomputed from scratch here.
func revertRating(
	ctx context.Context,
	exec repositories.SQLExecutor,
	ratingRepo repositories.RatingRepository,
	gameID, user1ID, user2ID int,
	delta1, delta2 int,
	outcome1, outcome2 ratings.Outcome,
	origin ratings.Origin,
) error {
	rating1, err := ratingRepo.GetOrCreateForUpdate(ctx, exec, user1ID, gameID)
	if err != nil {
		return fmt.Errorf("failed to load rating for user %d: %w", user1ID, err)
	}
	rating2, err := ratingRepo.GetOrCreateForUpdate(ctx, exec, user2ID, gameID)
	if err != nil {
		return fmt.Errorf("failed to load rating for user %d: %w", user2ID, err)
	}

	rating1.MMR -= delta1
	rating2.MMR -= delta2
	ratings.UnrecordOutcome(rating1, outcome1, origin)
	ratings.UnrecordOutcome(rating2, outcome2, origin)

	if err := ratingRepo.Update(ctx, exec, rating1); err != nil {
		return err
	}
	return ratingRepo.Update(ctx, exec, rating2)
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
