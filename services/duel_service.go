package services

import (
	"context"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/first5455/vibe-tournament-organization-sub000/ratings"
	"github.com/first5455/vibe-tournament-organization-sub000/repositories"
)

// CreateDuelParams describes a standalone head-to-head game. A nil user
// reference marks that side as a guest.
type CreateDuelParams struct {
	GameID        int  `json:"game_id"`
	Player1UserID *int `json:"player1_user_id,omitempty"`
	Player2UserID *int `json:"player2_user_id,omitempty"`
}

// DuelService manages duels: head-to-head games outside any tournament.
// Duels carry no participant scores; their only side effect is on ratings,
// and only when both sides are registered users.
type DuelService interface {
	CreateDuel(ctx context.Context, params CreateDuelParams) (*models.Duel, error)
	ReportResult(ctx context.Context, duelID int, winnerUserID *int, result *string) (*models.Duel, error)
	CorrectResult(ctx context.Context, duelID int, winnerUserID *int, result *string) (*models.Duel, error)
}

type duelService struct {
	txRunner   repositories.TxRunner
	duelRepo   repositories.DuelRepository
	ratingRepo repositories.RatingRepository
	calculator *ratings.Calculator
}

func NewDuelService(
	txRunner repositories.TxRunner,
	duelRepo repositories.DuelRepository,
	ratingRepo repositories.RatingRepository,
) DuelService {
	return &duelService{
		txRunner:   txRunner,
		duelRepo:   duelRepo,
		ratingRepo: ratingRepo,
		calculator: ratings.NewCalculator(),
	}
}

func (s *duelService) CreateDuel(ctx context.Context, params CreateDuelParams) (*models.Duel, error) {
	duel := &models.Duel{
		GameID:        params.GameID,
		Player1UserID: params.Player1UserID,
		Player2UserID: params.Player2UserID,
	}
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.duelRepo.Create(ctx, exec, duel)
	})
	if err != nil {
		return nil, err
	}
	return duel, nil
}

func (s *duelService) ReportResult(ctx context.Context, duelID int, winnerUserID *int, result *string) (*models.Duel, error) {
	duel, err := s.duelRepo.GetByID(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.Result != nil {
		return nil, ErrResultAlreadyReported
	}
	if err := validateDuelReport(duel, winnerUserID, result); err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.duelRepo.UpdateResult(ctx, exec, duel.ID, result, winnerUserID); err != nil {
			return err
		}
		return s.rateDuel(ctx, exec, duel, winnerUserID, result)
	})
	if err != nil {
		return nil, err
	}

	duel.WinnerUserID = winnerUserID
	duel.Result = result
	return duel, nil
}

// CorrectResult reverts the duel's previous rating effect via the stored
// deltas, then applies the corrected outcome, in a single transaction.
func (s *duelService) CorrectResult(ctx context.Context, duelID int, winnerUserID *int, result *string) (*models.Duel, error) {
	duel, err := s.duelRepo.GetByID(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.Result == nil {
		return nil, ErrResultNotReported
	}
	if err := validateDuelReport(duel, winnerUserID, result); err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.duelRepo.UpdateResult(ctx, exec, duel.ID, result, winnerUserID); err != nil {
			return err
		}
		if err := s.unrateDuel(ctx, exec, duel); err != nil {
			return err
		}
		return s.rateDuel(ctx, exec, duel, winnerUserID, result)
	})
	if err != nil {
		return nil, err
	}

	duel.WinnerUserID = winnerUserID
	duel.Result = result
	return duel, nil
}

func validateDuelReport(duel *models.Duel, winnerUserID *int, result *string) error {
	// Duels are recognized as decided by their result string, same as
	// matches; a winner alone is not enough to report.
	if result == nil {
		return ErrResultMissing
	}
	if winnerUserID != nil {
		player1 := duel.Player1UserID != nil && *duel.Player1UserID == *winnerUserID
		player2 := duel.Player2UserID != nil && *duel.Player2UserID == *winnerUserID
		if !player1 && !player2 {
			return ErrAmbiguousWinner
		}
	}
	return nil
}

func (s *duelService) rateDuel(ctx context.Context, exec repositories.SQLExecutor, duel *models.Duel, winnerUserID *int, result *string) error {
	if duel.Player1UserID == nil || duel.Player2UserID == nil {
		return nil
	}

	outcome1, outcome2 := outcomesFromResult(winnerUserID, *duel.Player1UserID, result)
	delta1, delta2, err := applyRating(ctx, exec, s.ratingRepo, s.calculator,
		duel.GameID, *duel.Player1UserID, *duel.Player2UserID,
		outcome1, outcome2, ratings.OriginDuel)
	if err != nil {
		return err
	}
	if err := s.duelRepo.UpdateRatingDeltas(ctx, exec, duel.ID, &delta1, &delta2); err != nil {
		return err
	}
	duel.Player1MMRChange = &delta1
	duel.Player2MMRChange = &delta2
	return nil
}

func (s *duelService) unrateDuel(ctx context.Context, exec repositories.SQLExecutor, duel *models.Duel) error {
	if duel.Player1MMRChange == nil && duel.Player2MMRChange == nil {
		return nil
	}
	if duel.Player1MMRChange == nil || duel.Player2MMRChange == nil {
		return ErrRatingDeltaMissing
	}
	if duel.Player1UserID == nil || duel.Player2UserID == nil {
		return ErrRatingDeltaMissing
	}

	outcome1, outcome2 := outcomesFromResult(duel.WinnerUserID, *duel.Player1UserID, duel.Result)
	if err := revertRating(ctx, exec, s.ratingRepo,
		duel.GameID, *duel.Player1UserID, *duel.Player2UserID,
		*duel.Player1MMRChange, *duel.Player2MMRChange,
		outcome1, outcome2, ratings.OriginDuel); err != nil {
		return err
	}
	duel.Player1MMRChange = nil
	duel.Player2MMRChange = nil
	return s.duelRepo.UpdateRatingDeltas(ctx, exec, duel.ID, nil, nil)
}
