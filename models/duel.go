package models

import "time"

// Duel is a standalone head-to-head game outside any tournament. A nil user
// reference means that side was a guest; guest duels are never rated. The
// MMR change columns mirror the ones on Match and feed the same revert
// protocol.
type Duel struct {
	ID               int       `json:"id" db:"id"`
	GameID           int       `json:"game_id" db:"game_id"`
	Player1UserID    *int      `json:"player1_user_id,omitempty" db:"player1_user_id"`
	Player2UserID    *int      `json:"player2_user_id,omitempty" db:"player2_user_id"`
	WinnerUserID     *int      `json:"winner_user_id,omitempty" db:"winner_user_id"`
	Result           *string   `json:"result,omitempty" db:"result"`
	Player1MMRChange *int      `json:"player1_mmr_change,omitempty" db:"player1_mmr_change"`
	Player2MMRChange *int      `json:"player2_mmr_change,omitempty" db:"player2_mmr_change"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
