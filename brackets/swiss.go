package brackets

import (
	"math"
	"sort"
)

// DefaultSearchBudget caps the number of nodes the backtracking search may
// visit per round. The search is worst-case exponential in the pool size;
// hitting the cap is treated the same as an unsolvable pool and falls back
// to naive pairing instead of hanging.
const DefaultSearchBudget = 200_000

// SwissGenerator produces one round of Swiss pairings at a time. Each call
// needs the accumulated History, because the no-repeat and single-bye
// constraints depend on every previous round.
type SwissGenerator struct {
	searchBudget int
}

func NewSwissGenerator() *SwissGenerator {
	return &SwissGenerator{searchBudget: DefaultSearchBudget}
}

// SwissTotalRounds returns the planned round count for a Swiss event:
// max(1, ceil(log2(n))).
func SwissTotalRounds(participantCount int) int {
	if participantCount < 2 {
		return 1
	}
	rounds := int(math.Ceil(math.Log2(float64(participantCount))))
	if rounds < 1 {
		rounds = 1
	}
	return rounds
}

// GenerateRound pairs the active pool for the next round. The pool is
// ordered by score then rating, descending, which biases the search toward
// pairing similarly-performing players. The returned flag is true when no
// valid assignment exists (or the search budget ran out) and the naive
// adjacent pairing was used instead; callers should log that case since it
// can repeat a previous pairing.
func (g *SwissGenerator) GenerateRound(pool []PoolPlayer, history *History) ([]Pairing, bool) {
	if len(pool) == 0 {
		return []Pairing{}, false
	}

	sorted := make([]PoolPlayer, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Rating > sorted[j].Rating
	})

	// A field of one means the tournament has narrowed to a single finisher;
	// they get the bye even if they already had one.
	if len(sorted) == 1 {
		return []Pairing{{Player1ID: sorted[0].ID}}, false
	}

	budget := g.searchBudget

	if len(sorted)%2 == 1 {
		// Try bye candidates from the bottom of the standings upward,
		// skipping anyone who already had one. The first candidate whose
		// remaining pool is solvable takes the bye.
		for i := len(sorted) - 1; i >= 0; i-- {
			if history.HasBye(sorted[i].ID) {
				continue
			}
			rest := make([]PoolPlayer, 0, len(sorted)-1)
			rest = append(rest, sorted[:i]...)
			rest = append(rest, sorted[i+1:]...)
			if pairings, ok := pairPool(rest, history, &budget); ok {
				return append(pairings, Pairing{Player1ID: sorted[i].ID}), false
			}
		}
		return naivePairing(sorted), true
	}

	if pairings, ok := pairPool(sorted, history, &budget); ok {
		return pairings, false
	}
	return naivePairing(sorted), true
}

// pairPool recursively pairs an even-sized pool. The highest-ranked unpaired
// player is matched against the first candidate, in pool order, that they
// have not already played and that leaves the remainder solvable.
func pairPool(pool []PoolPlayer, history *History, budget *int) ([]Pairing, bool) {
	if len(pool) == 0 {
		return []Pairing{}, true
	}
	*budget--
	if *budget < 0 {
		return nil, false
	}

	first := pool[0]
	for j := 1; j < len(pool); j++ {
		opponent := pool[j]
		if history.HavePlayed(first.ID, opponent.ID) {
			continue
		}
		rest := make([]PoolPlayer, 0, len(pool)-2)
		rest = append(rest, pool[1:j]...)
		rest = append(rest, pool[j+1:]...)
		sub, ok := pairPool(rest, history, budget)
		if ok {
			opponentID := opponent.ID
			return append([]Pairing{{Player1ID: first.ID, Player2ID: &opponentID}}, sub...), true
		}
		if *budget < 0 {
			return nil, false
		}
	}
	return nil, false
}

// naivePairing pairs adjacent players in standings order, ignoring the
// no-repeat constraint, with the leftover player taking a bye. It always
// succeeds, which keeps the tournament moving when no valid pairing exists.
func naivePairing(sorted []PoolPlayer) []Pairing {
	pairings := make([]Pairing, 0, (len(sorted)+1)/2)
	for i := 0; i+1 < len(sorted); i += 2 {
		opponentID := sorted[i+1].ID
		pairings = append(pairings, Pairing{Player1ID: sorted[i].ID, Player2ID: &opponentID})
	}
	if len(sorted)%2 == 1 {
		pairings = append(pairings, Pairing{Player1ID: sorted[len(sorted)-1].ID})
	}
	return pairings
}
