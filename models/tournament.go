package models

import "time"

// TournamentStatus represents tournament lifecycle states, matching the ENUM in the DB.
type TournamentStatus string

const (
	TournamentStatusPending   TournamentStatus = "pending"
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
)

// TournamentType selects the pairing algorithm used for round generation.
type TournamentType string

const (
	TournamentTypeSwiss      TournamentType = "swiss"
	TournamentTypeRoundRobin TournamentType = "round_robin"
)

// Tournament is the aggregate state of one event. CurrentRound stays 0 while
// the tournament is pending. GameID selects the rating pool; a tournament
// without one is unrated. WinnerUserID references a user identity, not a
// participant, so a guest winner is recorded as nil.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	GameID       *int             `json:"game_id,omitempty" db:"game_id"`
	Type         TournamentType   `json:"type" db:"type"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	TotalRounds  int              `json:"total_rounds" db:"total_rounds"`
	WinnerUserID *int             `json:"winner_user_id,omitempty" db:"winner_user_id"`
	StartDate    time.Time        `json:"start_date" db:"start_date"`
	EndDate      *time.Time       `json:"end_date,omitempty" db:"end_date"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Participants []Participant `json:"participants,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}
