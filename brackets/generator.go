package brackets

// PoolPlayer is one pairable participant: the current score plus the rating
// used as the ordering tiebreak.
type PoolPlayer struct {
	ID     int
	Score  int
	Rating int
}

// Pairing is one generated table for a round. Player2ID == nil denotes a bye.
type Pairing struct {
	Player1ID int
	Player2ID *int
}

func (p Pairing) IsBye() bool {
	return p.Player2ID == nil
}
