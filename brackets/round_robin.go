package brackets

import "sort"

// ghostID is the synthetic entrant padded into odd pools. Real participant
// IDs are positive, so zero can never collide.
const ghostID = 0

// RoundRobinGenerator schedules rounds with the circle method. It is
// stateless: the same participant set and round number always produce the
// same pairings, with no match history consulted. That makes it safe to
// generate the whole schedule up front at tournament start.
type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() *RoundRobinGenerator {
	return &RoundRobinGenerator{}
}

// TotalRounds is n-1 for an even field and n for an odd one (every round
// then includes one bye).
func (g *RoundRobinGenerator) TotalRounds(participantCount int) int {
	if participantCount < 2 {
		return 0
	}
	if participantCount%2 == 0 {
		return participantCount - 1
	}
	return participantCount
}

// GenerateRound computes one round's pairings. Participants are taken in
// ascending ID order; the first entrant stays fixed while the rest rotate by
// roundNumber-1 positions, and position i is paired against position n-1-i.
// Pairings against the ghost entrant come back as byes for the real partner.
func (g *RoundRobinGenerator) GenerateRound(participantIDs []int, roundNumber int) []Pairing {
	if len(participantIDs) < 2 {
		return []Pairing{}
	}

	ids := make([]int, len(participantIDs))
	copy(ids, participantIDs)
	sort.Ints(ids)
	if len(ids)%2 == 1 {
		ids = append(ids, ghostID)
	}

	n := len(ids)
	rotation := (roundNumber - 1) % (n - 1)

	arranged := make([]int, n)
	arranged[0] = ids[0]
	for i := 1; i < n; i++ {
		arranged[i] = ids[1+(i-1+rotation)%(n-1)]
	}

	pairings := make([]Pairing, 0, n/2)
	for i := 0; i < n/2; i++ {
		a, b := arranged[i], arranged[n-1-i]
		switch {
		case a == ghostID:
			pairings = append(pairings, Pairing{Player1ID: b})
		case b == ghostID:
			pairings = append(pairings, Pairing{Player1ID: a})
		default:
			opponentID := b
			pairings = append(pairings, Pairing{Player1ID: a, Player2ID: &opponentID})
		}
	}
	return pairings
}

// GenerateAllRounds produces the complete schedule in one pass.
func (g *RoundRobinGenerator) GenerateAllRounds(participantIDs []int) [][]Pairing {
	total := g.TotalRounds(len(participantIDs))
	rounds := make([][]Pairing, 0, total)
	for round := 1; round <= total; round++ {
		rounds = append(rounds, g.GenerateRound(participantIDs, round))
	}
	return rounds
}
