package models

import "time"

// DefaultMMR is the starting rating for a user's first game in a pool.
const DefaultMMR = 1000

// Rating is one user's standing in one game's rating pool. The aggregate
// win/loss/draw triple must always equal the sum of the duel and tournament
// triples; callers update both sides of that invariant in the same
// transaction.
type Rating struct {
	ID     int `json:"id" db:"id"`
	UserID int `json:"user_id" db:"user_id"`
	GameID int `json:"game_id" db:"game_id"`
	MMR    int `json:"mmr" db:"mmr"`

	Wins   int `json:"wins" db:"wins"`
	Losses int `json:"losses" db:"losses"`
	Draws  int `json:"draws" db:"draws"`

	DuelWins   int `json:"duel_wins" db:"duel_wins"`
	DuelLosses int `json:"duel_losses" db:"duel_losses"`
	DuelDraws  int `json:"duel_draws" db:"duel_draws"`

	TournamentWins   int `json:"tournament_wins" db:"tournament_wins"`
	TournamentLosses int `json:"tournament_losses" db:"tournament_losses"`
	TournamentDraws  int `json:"tournament_draws" db:"tournament_draws"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
