package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/lib/pq"
)

var (
	ErrRatingNotFound    = errors.New("rating record not found")
	ErrRatingUserInvalid = errors.New("rating user conflict or invalid")
)

type RatingRepository interface {
	// Get loads the user's current rating in a game pool without creating or
	// locking anything. Callers treat ErrRatingNotFound as the default MMR.
	Get(ctx context.Context, exec SQLExecutor, userID, gameID int) (*models.Rating, error)
	// GetOrCreateForUpdate loads the user's rating in a game pool, creating
	// the default record if none exists. It locks the row for the remainder
	// of the transaction: concurrent rating updates for the same user+game
	// must be serialized because revert/reapply assumes a current read.
	GetOrCreateForUpdate(ctx context.Context, exec SQLExecutor, userID, gameID int) (*models.Rating, error)
	Update(ctx context.Context, exec SQLExecutor, rating *models.Rating) error
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

const ratingColumns = `id, user_id, game_id, mmr, wins, losses, draws,
	duel_wins, duel_losses, duel_draws,
	tournament_wins, tournament_losses, tournament_draws, updated_at`

func scanRating(scanner interface{ Scan(...interface{}) error }, r *models.Rating) error {
	return scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.GameID,
		&r.MMR,
		&r.Wins,
		&r.Losses,
		&r.Draws,
		&r.DuelWins,
		&r.DuelLosses,
		&r.DuelDraws,
		&r.TournamentWins,
		&r.TournamentLosses,
		&r.TournamentDraws,
		&r.UpdatedAt,
	)
}

func (r *postgresRatingRepository) Get(ctx context.Context, exec SQLExecutor, userID, gameID int) (*models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND game_id = $2`
	rating := &models.Rating{}
	err := scanRating(exec.QueryRowContext(ctx, query, userID, gameID), rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to scan rating for user %d game %d: %w", userID, gameID, err)
	}
	return rating, nil
}

func (r *postgresRatingRepository) GetOrCreateForUpdate(ctx context.Context, exec SQLExecutor, userID, gameID int) (*models.Rating, error) {
	insert := `
		INSERT INTO ratings (user_id, game_id, mmr)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, game_id) DO NOTHING`
	if _, err := exec.ExecContext(ctx, insert, userID, gameID, models.DefaultMMR); err != nil {
		return nil, r.handleRatingError(err)
	}

	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE user_id = $1 AND game_id = $2 FOR UPDATE`
	rating := &models.Rating{}
	err := scanRating(exec.QueryRowContext(ctx, query, userID, gameID), rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to scan rating for user %d game %d: %w", userID, gameID, err)
	}
	return rating, nil
}

func (r *postgresRatingRepository) Update(ctx context.Context, exec SQLExecutor, rating *models.Rating) error {
	query := `
		UPDATE ratings SET
			mmr = $1,
			wins = $2, losses = $3, draws = $4,
			duel_wins = $5, duel_losses = $6, duel_draws = $7,
			tournament_wins = $8, tournament_losses = $9, tournament_draws = $10,
			updated_at = NOW()
		WHERE id = $11`

	result, err := exec.ExecContext(ctx, query,
		rating.MMR,
		rating.Wins, rating.Losses, rating.Draws,
		rating.DuelWins, rating.DuelLosses, rating.DuelDraws,
		rating.TournamentWins, rating.TournamentLosses, rating.TournamentDraws,
		rating.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating %d: %w", rating.ID, err)
	}
	return checkAffectedRows(result, ErrRatingNotFound)
}

func (r *postgresRatingRepository) handleRatingError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "ratings_user_id_fkey":
			return ErrRatingUserInvalid
		}
	}
	return err
}
