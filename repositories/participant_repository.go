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
	ErrParticipantNotFound          = errors.New("participant not found")
	ErrParticipantTournamentInvalid = errors.New("participant tournament conflict or invalid")
)

type ParticipantRepository interface {
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Participant, error)
	AdjustScore(ctx context.Context, exec SQLExecutor, id int, delta int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, tournament_id, user_id, guest_name, score, dropped, tie_breakers, created_at`

func scanParticipant(scanner interface{ Scan(...interface{}) error }, p *models.Participant) error {
	return scanner.Scan(
		&p.ID,
		&p.TournamentID,
		&p.UserID,
		&p.GuestName,
		&p.Score,
		&p.Dropped,
		&p.TieBreakers,
		&p.CreatedAt,
	)
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	participant := &models.Participant{}
	err := scanParticipant(r.db.QueryRowContext(ctx, query, id), participant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant by id %d: %w", id, err)
	}
	return participant, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE tournament_id = $1`
	if activeOnly {
		query += ` AND dropped = FALSE`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var participant models.Participant
		if scanErr := scanParticipant(rows, &participant); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &participant)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) AdjustScore(ctx context.Context, exec SQLExecutor, id int, delta int) error {
	query := `UPDATE participants SET score = score + $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, delta, id)
	if err != nil {
		return r.handleParticipantError(err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) handleParticipantError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "participants_tournament_id_fkey":
			return ErrParticipantTournamentInvalid
		}
	}
	return err
}
