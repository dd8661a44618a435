package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/first5455/vibe-tournament-organization-sub000/brackets"
	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/first5455/vibe-tournament-organization-sub000/ratings"
	"github.com/first5455/vibe-tournament-organization-sub000/repositories"
	"golang.org/x/sync/errgroup"
)

// StartResult reports what starting a tournament produced. For round-robin
// the matches cover the complete schedule; for Swiss only round 1 exists.
type StartResult struct {
	TotalRounds int             `json:"total_rounds"`
	Matches     []*models.Match `json:"matches"`
}

// AdvanceResult reports a round transition. PairingFallback is true when the
// Swiss generator had to ignore the no-repeat constraint to keep going.
type AdvanceResult struct {
	NewRound        int             `json:"new_round"`
	Matches         []*models.Match `json:"matches"`
	AutoResolved    int             `json:"auto_resolved"`
	PairingFallback bool            `json:"pairing_fallback,omitempty"`
}

// StopResult reports tournament finalization. WinnerUserID is nil when the
// top finisher is a guest, since the winner reference is a user identity.
type StopResult struct {
	WinnerUserID *int `json:"winner_user_id,omitempty"`
	AutoResolved int  `json:"auto_resolved"`
}

// TournamentService drives the tournament round state machine:
// pending -> active -> completed, with CurrentRound advancing inside active.
type TournamentService interface {
	StartTournament(ctx context.Context, tournamentID int) (*StartResult, error)
	AdvanceRound(ctx context.Context, tournamentID int) (*AdvanceResult, error)
	StopTournament(ctx context.Context, tournamentID int) (*StopResult, error)
	StartDueTournaments(ctx context.Context) error
}

type tournamentService struct {
	txRunner        repositories.TxRunner
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	ratingRepo      repositories.RatingRepository
	swiss           *brackets.SwissGenerator
	roundRobin      *brackets.RoundRobinGenerator
	calculator      *ratings.Calculator
	logger          *slog.Logger
}

func NewTournamentService(
	txRunner repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	ratingRepo repositories.RatingRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		txRunner:        txRunner,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		ratingRepo:      ratingRepo,
		swiss:           brackets.NewSwissGenerator(),
		roundRobin:      brackets.NewRoundRobinGenerator(),
		calculator:      ratings.NewCalculator(),
		logger:          logger,
	}
}

func (s *tournamentService) StartTournament(ctx context.Context, tournamentID int) (*StartResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	switch tournament.Status {
	case models.TournamentStatusActive:
		return nil, ErrTournamentAlreadyStarted
	case models.TournamentStatusCompleted:
		return nil, ErrTournamentAlreadyCompleted
	}

	participants, err := s.participantRepo.ListByTournament(ctx, tournamentID, true)
	if err != nil {
		return nil, err
	}
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}

	var totalRounds int
	switch tournament.Type {
	case models.TournamentTypeRoundRobin:
		totalRounds = s.roundRobin.TotalRounds(len(participants))
	case models.TournamentTypeSwiss:
		totalRounds = brackets.SwissTotalRounds(len(participants))
	default:
		return nil, fmt.Errorf("unsupported tournament type %q", tournament.Type)
	}

	result := &StartResult{TotalRounds: totalRounds}
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var matches []*models.Match
		switch tournament.Type {
		case models.TournamentTypeRoundRobin:
			// The circle method is stateless, so the whole schedule is
			// written up front.
			ids := participantIDs(participants)
			for i, round := range s.roundRobin.GenerateAllRounds(ids) {
				matches = append(matches, pairingsToMatches(tournamentID, i+1, round)...)
			}
		case models.TournamentTypeSwiss:
			pool, err := s.buildPool(ctx, exec, tournament, participants)
			if err != nil {
				return err
			}
			pairings, fallback := s.swiss.GenerateRound(pool, brackets.BuildHistory(nil))
			if fallback {
				s.logger.Warn("swiss pairing fell back to naive adjacent pairing",
					slog.Int("tournament_id", tournamentID), slog.Int("round", 1))
			}
			matches = pairingsToMatches(tournamentID, 1, pairings)
		}

		for _, match := range matches {
			if err := s.matchRepo.Create(ctx, exec, match); err != nil {
				return err
			}
			// A bye is an automatic win; the point is credited when the
			// bye's round becomes the current one.
			if match.IsBye && match.Round == 1 {
				if err := s.participantRepo.AdjustScore(ctx, exec, match.Player1ID, 1); err != nil {
					return err
				}
			}
		}
		result.Matches = matches
		return s.tournamentRepo.UpdateStatusAndRounds(ctx, exec, tournamentID, models.TournamentStatusActive, 1, totalRounds)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tournamentService) AdvanceRound(ctx context.Context, tournamentID int) (*AdvanceResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	switch tournament.Status {
	case models.TournamentStatusPending:
		return nil, ErrTournamentNotActive
	case models.TournamentStatusCompleted:
		return nil, ErrTournamentAlreadyCompleted
	}
	if tournament.CurrentRound >= tournament.TotalRounds {
		return nil, ErrMaxRoundsReached
	}

	allParticipants, matches, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	active := activeParticipants(allParticipants)
	users := usersByParticipant(allParticipants)

	newRound := tournament.CurrentRound + 1
	result := &AdvanceResult{NewRound: newRound}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		resolved, err := s.autoResolveMatches(ctx, exec, tournament, matchesForRound(matches, tournament.CurrentRound), users)
		if err != nil {
			return err
		}
		result.AutoResolved = resolved

		switch tournament.Type {
		case models.TournamentTypeRoundRobin:
			next := matchesForRound(matches, newRound)
			for _, match := range next {
				if match.IsBye {
					if err := s.participantRepo.AdjustScore(ctx, exec, match.Player1ID, 1); err != nil {
						return err
					}
				}
			}
			result.Matches = next
		case models.TournamentTypeSwiss:
			pool, err := s.buildPool(ctx, exec, tournament, active)
			if err != nil {
				return err
			}
			pairings, fallback := s.swiss.GenerateRound(pool, brackets.BuildHistory(matches))
			if fallback {
				result.PairingFallback = true
				s.logger.Warn("swiss pairing fell back to naive adjacent pairing",
					slog.Int("tournament_id", tournamentID), slog.Int("round", newRound))
			}
			newMatches := pairingsToMatches(tournamentID, newRound, pairings)
			for _, match := range newMatches {
				if err := s.matchRepo.Create(ctx, exec, match); err != nil {
					return err
				}
				if match.IsBye {
					if err := s.participantRepo.AdjustScore(ctx, exec, match.Player1ID, 1); err != nil {
						return err
					}
				}
			}
			result.Matches = newMatches
		default:
			return fmt.Errorf("unsupported tournament type %q", tournament.Type)
		}
		return s.tournamentRepo.UpdateCurrentRound(ctx, exec, tournamentID, newRound)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tournamentService) StopTournament(ctx context.Context, tournamentID int) (*StopResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	switch tournament.Status {
	case models.TournamentStatusPending:
		return nil, ErrTournamentNotActive
	case models.TournamentStatusCompleted:
		return nil, ErrTournamentAlreadyCompleted
	}

	allParticipants, matches, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	active := activeParticipants(allParticipants)
	users := usersByParticipant(allParticipants)

	result := &StopResult{WinnerUserID: computeWinner(active)}
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		// Unlike a round advance, stopping settles every open match in the
		// tournament, not just the current round.
		resolved, err := s.autoResolveMatches(ctx, exec, tournament, matches, users)
		if err != nil {
			return err
		}
		result.AutoResolved = resolved
		return s.tournamentRepo.Complete(ctx, exec, tournamentID, result.WinnerUserID, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StartDueTournaments starts every pending tournament whose start date has
// passed. Individual failures are logged and skipped so one broken
// tournament cannot stall the scheduler.
func (s *tournamentService) StartDueTournaments(ctx context.Context) error {
	due, err := s.tournamentRepo.ListPendingDue(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to list due tournaments: %w", err)
	}
	for _, tournament := range due {
		if _, err := s.StartTournament(ctx, tournament.ID); err != nil {
			if errors.Is(err, ErrInsufficientParticipants) {
				s.logger.Warn("due tournament has too few participants, skipping",
					slog.Int("tournament_id", tournament.ID))
				continue
			}
			s.logger.Error("failed to auto-start tournament",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament auto-started", slog.Int("tournament_id", tournament.ID))
	}
	return nil
}

// loadSnapshot fetches the full participant list and match history in
// parallel. The caller serializes engine invocations per tournament, so the
// two reads observe a consistent state.
func (s *tournamentService) loadSnapshot(ctx context.Context, tournamentID int) ([]*models.Participant, []*models.Match, error) {
	var participants []*models.Participant
	var matches []*models.Match

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListByTournament(gCtx, tournamentID, false)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return participants, matches, nil
}

// autoResolveMatches closes every still-undecided non-bye match in the given
// set as a mutual loss: result "0-0", no winner, and a rating loss for both
// sides when the match is rated.
func (s *tournamentService) autoResolveMatches(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	matches []*models.Match,
	users map[int]*int,
) (int, error) {
	resolved := 0
	for _, match := range matches {
		if match.IsBye || match.HasResult() {
			continue
		}
		if err := s.matchRepo.UpdateResult(ctx, exec, match.ID, strPtr(models.ResultAutoResolved), nil); err != nil {
			return resolved, err
		}
		match.Result = strPtr(models.ResultAutoResolved)
		match.WinnerID = nil

		if tournament.GameID != nil && match.Player2ID != nil {
			user1 := users[match.Player1ID]
			user2 := users[*match.Player2ID]
			// Guests have no rating pool entry; their matches stay unrated.
			if user1 != nil && user2 != nil {
				delta1, delta2, err := applyRating(ctx, exec, s.ratingRepo, s.calculator,
					*tournament.GameID, *user1, *user2,
					ratings.OutcomeLoss, ratings.OutcomeLoss, ratings.OriginTournament)
				if err != nil {
					return resolved, err
				}
				if err := s.matchRepo.UpdateRatingDeltas(ctx, exec, match.ID, &delta1, &delta2); err != nil {
					return resolved, err
				}
				match.Player1MMRChange = &delta1
				match.Player2MMRChange = &delta2
			}
		}
		resolved++
	}
	return resolved, nil
}

// buildPool projects participants into pairable players. Rating is the
// user's MMR in the tournament's game pool; guests and unrated tournaments
// fall back to the default.
func (s *tournamentService) buildPool(
	ctx context.Context,
	exec repositories.SQLExecutor,
	tournament *models.Tournament,
	participants []*models.Participant,
) ([]brackets.PoolPlayer, error) {
	pool := make([]brackets.PoolPlayer, 0, len(participants))
	for _, p := range participants {
		player := brackets.PoolPlayer{ID: p.ID, Score: p.Score, Rating: models.DefaultMMR}
		if tournament.GameID != nil && p.UserID != nil {
			rating, err := s.ratingRepo.Get(ctx, exec, *p.UserID, *tournament.GameID)
			switch {
			case err == nil:
				player.Rating = rating.MMR
			case errors.Is(err, repositories.ErrRatingNotFound):
				// first rated game, default stands
			default:
				return nil, err
			}
		}
		pool = append(pool, player)
	}
	return pool, nil
}

func pairingsToMatches(tournamentID, round int, pairings []brackets.Pairing) []*models.Match {
	matches := make([]*models.Match, 0, len(pairings))
	for _, pairing := range pairings {
		match := &models.Match{
			TournamentID: tournamentID,
			Round:        round,
			Player1ID:    pairing.Player1ID,
		}
		if pairing.IsBye() {
			match.IsBye = true
			match.WinnerID = intPtr(pairing.Player1ID)
			match.Result = strPtr(models.ResultBye)
		} else {
			match.Player2ID = pairing.Player2ID
		}
		matches = append(matches, match)
	}
	return matches
}

func participantIDs(participants []*models.Participant) []int {
	ids := make([]int, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	return ids
}

func activeParticipants(participants []*models.Participant) []*models.Participant {
	active := make([]*models.Participant, 0, len(participants))
	for _, p := range participants {
		if !p.Dropped {
			active = append(active, p)
		}
	}
	return active
}

func usersByParticipant(participants []*models.Participant) map[int]*int {
	users := make(map[int]*int, len(participants))
	for _, p := range participants {
		users[p.ID] = p.UserID
	}
	return users
}

func matchesForRound(matches []*models.Match, round int) []*models.Match {
	filtered := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Round == round {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// computeWinner picks the standings leader: score descending, Buchholz
// breaking ties. A guest leader yields no recordable winner.
func computeWinner(active []*models.Participant) *int {
	if len(active) == 0 {
		return nil
	}
	sorted := make([]*models.Participant, len(active))
	copy(sorted, active)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].TieBreakers.Buchholz > sorted[j].TieBreakers.Buchholz
	})
	return sorted[0].UserID
}
