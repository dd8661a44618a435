package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TieBreakers holds standings tiebreak metrics. Buchholz is supplied by an
// external standings job; the engine only consumes it for sorting. New
// metrics get explicit fields here rather than an open map.
type TieBreakers struct {
	Buchholz int `json:"buchholz"`
}

// Value serializes tie breakers for the JSONB column.
func (t TieBreakers) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan reads tie breakers back from the JSONB column. NULL means no metrics
// have been computed yet.
func (t *TieBreakers) Scan(src interface{}) error {
	if src == nil {
		*t = TieBreakers{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported tie_breakers column type %T", src)
	}
	return json.Unmarshal(raw, t)
}

// Participant is one entrant's identity within a single tournament. Exactly
// one of UserID and GuestName is set. Dropped participants are excluded from
// future pairing but keep their match history.
type Participant struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	UserID       *int        `json:"user_id,omitempty" db:"user_id"`
	GuestName    *string     `json:"guest_name,omitempty" db:"guest_name"`
	Score        int         `json:"score" db:"score"`
	Dropped      bool        `json:"dropped" db:"dropped"`
	TieBreakers  TieBreakers `json:"tie_breakers" db:"tie_breakers"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

func (p *Participant) IsGuest() bool {
	return p.UserID == nil
}
