package models

import "time"

const (
	// ResultBye marks matches where a participant had no opponent.
	ResultBye = "Bye"
	// ResultAutoResolved is written when an unfinished match is closed by a
	// round advance or tournament stop. Both sides are treated as losers.
	ResultAutoResolved = "0-0"
)

// Match is one scheduled or completed pairing within a round. Player2ID is
// nil iff IsBye. The MMR change columns are set only when both players are
// registered users and the tournament is rated; they are the stored deltas
// the revert protocol relies on.
type Match struct {
	ID               int       `json:"id" db:"id"`
	TournamentID     int       `json:"tournament_id" db:"tournament_id"`
	Round            int       `json:"round" db:"round"`
	Player1ID        int       `json:"player1_id" db:"player1_id"`
	Player2ID        *int      `json:"player2_id,omitempty" db:"player2_id"`
	WinnerID         *int      `json:"winner_id,omitempty" db:"winner_id"`
	Result           *string   `json:"result,omitempty" db:"result"`
	IsBye            bool      `json:"is_bye" db:"is_bye"`
	Player1MMRChange *int      `json:"player1_mmr_change,omitempty" db:"player1_mmr_change"`
	Player2MMRChange *int      `json:"player2_mmr_change,omitempty" db:"player2_mmr_change"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// HasResult reports whether the match has been decided, by report or
// auto-resolution.
func (m *Match) HasResult() bool {
	return m.Result != nil
}
