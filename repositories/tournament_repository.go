package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListPendingDue(ctx context.Context, now time.Time) ([]*models.Tournament, error)
	UpdateStatusAndRounds(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, currentRound, totalRounds int) error
	UpdateCurrentRound(ctx context.Context, exec SQLExecutor, id int, currentRound int) error
	Complete(ctx context.Context, exec SQLExecutor, id int, winnerUserID *int, endDate time.Time) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, game_id, type, status, current_round, total_rounds, winner_user_id, start_date, end_date, created_at`

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	tournament := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID,
		&tournament.Name,
		&tournament.GameID,
		&tournament.Type,
		&tournament.Status,
		&tournament.CurrentRound,
		&tournament.TotalRounds,
		&tournament.WinnerUserID,
		&tournament.StartDate,
		&tournament.EndDate,
		&tournament.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) ListPendingDue(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE status = $1 AND start_date <= $2
		ORDER BY start_date ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.TournamentStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		var tournament models.Tournament
		if scanErr := rows.Scan(
			&tournament.ID,
			&tournament.Name,
			&tournament.GameID,
			&tournament.Type,
			&tournament.Status,
			&tournament.CurrentRound,
			&tournament.TotalRounds,
			&tournament.WinnerUserID,
			&tournament.StartDate,
			&tournament.EndDate,
			&tournament.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, &tournament)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatusAndRounds(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, currentRound, totalRounds int) error {
	query := `UPDATE tournaments SET status = $1, current_round = $2, total_rounds = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, status, currentRound, totalRounds, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateCurrentRound(ctx context.Context, exec SQLExecutor, id int, currentRound int) error {
	query := `UPDATE tournaments SET current_round = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, currentRound, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d round: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Complete(ctx context.Context, exec SQLExecutor, id int, winnerUserID *int, endDate time.Time) error {
	query := `UPDATE tournaments SET status = $1, winner_user_id = $2, end_date = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, models.TournamentStatusCompleted, winnerUserID, endDate, id)
	if err != nil {
		return fmt.Errorf("failed to complete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
