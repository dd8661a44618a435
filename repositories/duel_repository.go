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
	ErrDuelNotFound    = errors.New("duel not found")
	ErrDuelUserInvalid = errors.New("duel user conflict or invalid")
)

type DuelRepository interface {
	Create(ctx context.Context, exec SQLExecutor, duel *models.Duel) error
	GetByID(ctx context.Context, id int) (*models.Duel, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, result *string, winnerUserID *int) error
	UpdateRatingDeltas(ctx context.Context, exec SQLExecutor, id int, player1Delta, player2Delta *int) error
}

type postgresDuelRepository struct {
	db *sql.DB
}

func NewPostgresDuelRepository(db *sql.DB) DuelRepository {
	return &postgresDuelRepository{db: db}
}

const duelColumns = `id, game_id, player1_user_id, player2_user_id, winner_user_id, result, player1_mmr_change, player2_mmr_change, created_at`

func scanDuel(scanner interface{ Scan(...interface{}) error }, d *models.Duel) error {
	return scanner.Scan(
		&d.ID,
		&d.GameID,
		&d.Player1UserID,
		&d.Player2UserID,
		&d.WinnerUserID,
		&d.Result,
		&d.Player1MMRChange,
		&d.Player2MMRChange,
		&d.CreatedAt,
	)
}

func (r *postgresDuelRepository) Create(ctx context.Context, exec SQLExecutor, duel *models.Duel) error {
	query := `
		INSERT INTO duels
			(game_id, player1_user_id, player2_user_id, winner_user_id, result, player1_mmr_change, player2_mmr_change)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		duel.GameID,
		duel.Player1UserID,
		duel.Player2UserID,
		duel.WinnerUserID,
		duel.Result,
		duel.Player1MMRChange,
		duel.Player2MMRChange,
	).Scan(&duel.ID, &duel.CreatedAt)

	return r.handleDuelError(err)
}

func (r *postgresDuelRepository) GetByID(ctx context.Context, id int) (*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE id = $1`

	duel := &models.Duel{}
	err := scanDuel(r.db.QueryRowContext(ctx, query, id), duel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDuelNotFound
		}
		return nil, fmt.Errorf("failed to scan duel by id %d: %w", id, err)
	}
	return duel, nil
}

func (r *postgresDuelRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, result *string, winnerUserID *int) error {
	query := `UPDATE duels SET result = $1, winner_user_id = $2 WHERE id = $3`
	res, err := exec.ExecContext(ctx, query, result, winnerUserID, id)
	if err != nil {
		return r.handleDuelError(err)
	}
	return checkAffectedRows(res, ErrDuelNotFound)
}

func (r *postgresDuelRepository) UpdateRatingDeltas(ctx context.Context, exec SQLExecutor, id int, player1Delta, player2Delta *int) error {
	query := `UPDATE duels SET player1_mmr_change = $1, player2_mmr_change = $2 WHERE id = $3`
	res, err := exec.ExecContext(ctx, query, player1Delta, player2Delta, id)
	if err != nil {
		return fmt.Errorf("failed to update rating deltas for duel %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrDuelNotFound)
}

func (r *postgresDuelRepository) handleDuelError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "duels_player1_user_id_fkey", "duels_player2_user_id_fkey", "duels_winner_user_id_fkey":
			return ErrDuelUserInvalid
		}
	}
	return err
}
