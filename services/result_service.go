package services

import (
	"context"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/first5455/vibe-tournament-organization-sub000/ratings"
	"github.com/first5455/vibe-tournament-organization-sub000/repositories"
)

// MatchResultService records and corrects tournament match outcomes,
// keeping participant scores and player ratings in step with each edit.
type MatchResultService interface {
	ReportResult(ctx context.Context, matchID int, winnerID *int, result *string) (*models.Match, error)
	CorrectResult(ctx context.Context, matchID int, winnerID *int, result *string) (*models.Match, error)
}

type matchResultService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	ratingRepo      repositories.RatingRepository
	calculator      *ratings.Calculator
}

func NewMatchResultService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	ratingRepo repositories.RatingRepository,
) MatchResultService {
	return &matchResultService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		ratingRepo:      ratingRepo,
		calculator:      ratings.NewCalculator(),
	}
}

func (s *matchResultService) ReportResult(ctx context.Context, matchID int, winnerID *int, result *string) (*models.Match, error) {
	match, tournament, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.HasResult() {
		return nil, ErrResultAlreadyReported
	}
	if err := validateReport(match, winnerID, result); err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, result, winnerID); err != nil {
			return err
		}
		if winnerID != nil {
			if err := s.participantRepo.AdjustScore(ctx, exec, *winnerID, 1); err != nil {
				return err
			}
		}
		return s.rateMatch(ctx, exec, tournament, match, winnerID, result)
	})
	if err != nil {
		return nil, err
	}

	match.WinnerID = winnerID
	match.Result = result
	return match, nil
}

// CorrectResult replaces an already-reported outcome: the old score credit
// moves to the new winner and the old rating deltas are reverted before the
// corrected outcome is applied, all in one transaction.
func (s *matchResultService) CorrectResult(ctx context.Context, matchID int, winnerID *int, result *string) (*models.Match, error) {
	match, tournament, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasResult() {
		return nil, ErrResultNotReported
	}
	if err := validateReport(match, winnerID, result); err != nil {
		return nil, err
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, result, winnerID); err != nil {
			return err
		}

		if match.WinnerID != nil {
			if err := s.participantRepo.AdjustScore(ctx, exec, *match.WinnerID, -1); err != nil {
				return err
			}
		}
		if winnerID != nil {
			if err := s.participantRepo.AdjustScore(ctx, exec, *winnerID, 1); err != nil {
				return err
			}
		}

		if err := s.unrateMatch(ctx, exec, tournament, match); err != nil {
			return err
		}
		return s.rateMatch(ctx, exec, tournament, match, winnerID, result)
	})
	if err != nil {
		return nil, err
	}

	match.WinnerID = winnerID
	match.Result = result
	return match, nil
}

func (s *matchResultService) loadMatch(ctx context.Context, matchID int) (*models.Match, *models.Tournament, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if match.IsBye {
		return nil, nil, ErrByeMatchImmutable
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	if tournament.Status != models.TournamentStatusActive {
		return nil, nil, ErrTournamentNotActive
	}
	return match, tournament, nil
}

func validateReport(match *models.Match, winnerID *int, result *string) error {
	// A decided match is recognized by its result string, so a report
	// without one would read as still open and could be applied twice.
	if result == nil {
		return ErrResultMissing
	}
	if winnerID != nil {
		if *winnerID != match.Player1ID && (match.Player2ID == nil || *winnerID != *match.Player2ID) {
			return ErrAmbiguousWinner
		}
	}
	return nil
}

// rateMatch applies the outcome to both players' ratings and stores the
// deltas on the match for later reversal. Matches involving a guest or a
// tournament without a game pool stay unrated.
func (s *matchResultService) rateMatch(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	match *models.Match,
	winnerID *int,
	result *string,
) error {
	if tournament.GameID == nil || match.Player2ID == nil {
		return nil
	}
	user1, user2, err := s.matchUsers(ctx, match)
	if err != nil || user1 == nil || user2 == nil {
		return err
	}

	outcome1, outcome2 := outcomesFromResult(winnerID, match.Player1ID, result)
	delta1, delta2, err := applyRating(ctx, exec, s.ratingRepo, s.calculator,
		*tournament.GameID, *user1, *user2, outcome1, outcome2, ratings.OriginTournament)
	if err != nil {
		return err
	}
	if err := s.matchRepo.UpdateRatingDeltas(ctx, exec, match.ID, &delta1, &delta2); err != nil {
		return err
	}
	match.Player1MMRChange = &delta1
	match.Player2MMRChange = &delta2
	return nil
}

// unrateMatch undoes the rating effect of the match's previous outcome
// using the deltas stored at report time, never by recomputation.
func (s *matchResultService) unrateMatch(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	match *models.Match,
) error {
	if match.Player1MMRChange == nil && match.Player2MMRChange == nil {
		return nil
	}
	if match.Player1MMRChange == nil || match.Player2MMRChange == nil {
		return ErrRatingDeltaMissing
	}
	if tournament.GameID == nil || match.Player2ID == nil {
		return ErrRatingDeltaMissing
	}
	user1, user2, err := s.matchUsers(ctx, match)
	if err != nil {
		return err
	}
	if user1 == nil || user2 == nil {
		return ErrRatingDeltaMissing
	}

	outcome1, outcome2 := outcomesFromResult(match.WinnerID, match.Player1ID, match.Result)
	if err := revertRating(ctx, exec, s.ratingRepo,
		*tournament.GameID, *user1, *user2,
		*match.Player1MMRChange, *match.Player2MMRChange,
		outcome1, outcome2, ratings.OriginTournament); err != nil {
		return err
	}
	match.Player1MMRChange = nil
	match.Player2MMRChange = nil
	return s.matchRepo.UpdateRatingDeltas(ctx, exec, match.ID, nil, nil)
}

func (s *matchResultService) matchUsers(ctx context.Context, match *models.Match) (*int, *int, error) {
	player1, err := s.participantRepo.GetByID(ctx, match.Player1ID)
	if err != nil {
		return nil, nil, err
	}
	player2, err := s.participantRepo.GetByID(ctx, *match.Player2ID)
	if err != nil {
		return nil, nil, err
	}
	return player1.UserID, player2.UserID, nil
}
