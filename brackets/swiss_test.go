package brackets

import (
	"fmt"
	"testing"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pairingsToMatches converts a generated round into match records so the
// next round's history can be built from them.
func pairingsToMatches(round int, pairings []Pairing) []*models.Match {
	matches := make([]*models.Match, 0, len(pairings))
	for _, p := range pairings {
		m := &models.Match{TournamentID: 1, Round: round, Player1ID: p.Player1ID}
		if p.IsBye() {
			m.IsBye = true
		} else {
			m.Player2ID = p.Player2ID
		}
		matches = append(matches, m)
	}
	return matches
}

func assertCompletePairing(t *testing.T, pool []PoolPlayer, pairings []Pairing) {
	t.Helper()
	seen := make(map[int]bool)
	for _, p := range pairings {
		assert.False(t, seen[p.Player1ID], "participant %d paired twice", p.Player1ID)
		seen[p.Player1ID] = true
		if !p.IsBye() {
			assert.False(t, seen[*p.Player2ID], "participant %d paired twice", *p.Player2ID)
			seen[*p.Player2ID] = true
		}
	}
	require.Len(t, seen, len(pool), "every pool member must be paired or byed")
}

func TestSwiss_EvenPoolFirstRoundPairsAdjacent(t *testing.T) {
	g := NewSwissGenerator()
	pool := []PoolPlayer{
		{ID: 1, Score: 3, Rating: 1200},
		{ID: 2, Score: 3, Rating: 1100},
		{ID: 3, Score: 1, Rating: 1000},
		{ID: 4, Score: 0, Rating: 1300},
	}

	pairings, fallback := g.GenerateRound(pool, BuildHistory(nil))

	require.False(t, fallback)
	require.Len(t, pairings, 2)
	// Descending by score, rating breaks the tie: 1,2 then 3,4.
	assert.Equal(t, 1, pairings[0].Player1ID)
	assert.Equal(t, 2, *pairings[0].Player2ID)
	assert.Equal(t, 3, pairings[1].Player1ID)
	assert.Equal(t, 4, *pairings[1].Player2ID)
}

func TestSwiss_NoRepeatAcrossRounds(t *testing.T) {
	g := NewSwissGenerator()
	pool := make([]PoolPlayer, 8)
	for i := range pool {
		pool[i] = PoolPlayer{ID: i + 1, Score: 0, Rating: 1000 + 10*i}
	}

	var allMatches []*models.Match
	met := make(map[string]int)

	for round := 1; round <= 4; round++ {
		pairings, fallback := g.GenerateRound(pool, BuildHistory(allMatches))
		require.False(t, fallback, "round %d should be solvable", round)
		assertCompletePairing(t, pool, pairings)

		for _, p := range pairings {
			require.False(t, p.IsBye(), "even pool must not produce byes")
			a, b := p.Player1ID, *p.Player2ID
			if a > b {
				a, b = b, a
			}
			key := fmt.Sprintf("%d-%d", a, b)
			met[key]++
			assert.Equal(t, 1, met[key], "pair %s repeated in round %d", key, round)
		}
		allMatches = append(allMatches, pairingsToMatches(round, pairings)...)
	}
}

func TestSwiss_ByeUniqueness(t *testing.T) {
	g := NewSwissGenerator()
	pool := make([]PoolPlayer, 5)
	for i := range pool {
		pool[i] = PoolPlayer{ID: i + 1, Score: 0, Rating: 1000}
	}

	var allMatches []*models.Match
	byes := make(map[int]int)

	for round := 1; round <= 4; round++ {
		pairings, fallback := g.GenerateRound(pool, BuildHistory(allMatches))
		require.False(t, fallback, "round %d should be solvable", round)
		assertCompletePairing(t, pool, pairings)

		for _, p := range pairings {
			if p.IsBye() {
				byes[p.Player1ID]++
			}
		}
		allMatches = append(allMatches, pairingsToMatches(round, pairings)...)
	}

	for id, count := range byes {
		assert.Equal(t, 1, count, "participant %d received %d byes", id, count)
	}
}

func TestSwiss_FallbackWhenAllPairsPlayed(t *testing.T) {
	g := NewSwissGenerator()
	pool := []PoolPlayer{
		{ID: 1, Score: 1, Rating: 1000},
		{ID: 2, Score: 0, Rating: 1000},
	}
	history := BuildHistory([]*models.Match{
		{TournamentID: 1, Round: 1, Player1ID: 1, Player2ID: intPtr(2)},
	})

	pairings, fallback := g.GenerateRound(pool, history)

	assert.True(t, fallback)
	require.Len(t, pairings, 1)
	assert.Equal(t, 1, pairings[0].Player1ID)
	assert.Equal(t, 2, *pairings[0].Player2ID)
}

// The generator must always return a complete pairing set, via fallback if
// necessary, for any pool size.
func TestSwiss_FallbackTermination(t *testing.T) {
	g := NewSwissGenerator()
	for n := 1; n <= 9; n++ {
		pool := make([]PoolPlayer, n)
		var matches []*models.Match
		for i := range pool {
			pool[i] = PoolPlayer{ID: i + 1, Score: 0, Rating: 1000}
			// Everyone already played everyone, and everyone had a bye.
			matches = append(matches, &models.Match{Player1ID: i + 1, IsBye: true})
			for j := i + 1; j < n; j++ {
				matches = append(matches, &models.Match{Player1ID: i + 1, Player2ID: intPtr(j + 1)})
			}
		}

		pairings, _ := g.GenerateRound(pool, BuildHistory(matches))
		assertCompletePairing(t, pool, pairings)
	}
}

func TestSwiss_SinglePlayerGetsBye(t *testing.T) {
	g := NewSwissGenerator()
	pool := []PoolPlayer{{ID: 7, Score: 2, Rating: 1000}}

	// Even with a prior bye, the last remaining player is byed, not errored.
	history := BuildHistory([]*models.Match{{Player1ID: 7, IsBye: true}})
	pairings, fallback := g.GenerateRound(pool, history)

	assert.False(t, fallback)
	require.Len(t, pairings, 1)
	assert.True(t, pairings[0].IsBye())
	assert.Equal(t, 7, pairings[0].Player1ID)
}

func TestSwiss_EmptyPool(t *testing.T) {
	g := NewSwissGenerator()
	pairings, fallback := g.GenerateRound(nil, BuildHistory(nil))
	assert.Empty(t, pairings)
	assert.False(t, fallback)
}

func TestSwiss_ByeGoesToBottomWithoutPriorBye(t *testing.T) {
	g := NewSwissGenerator()
	pool := []PoolPlayer{
		{ID: 1, Score: 3, Rating: 1000},
		{ID: 2, Score: 2, Rating: 1000},
		{ID: 3, Score: 1, Rating: 1000},
	}
	// The bottom player already had a bye, so the next one up takes it.
	history := BuildHistory([]*models.Match{{Player1ID: 3, IsBye: true}})

	pairings, fallback := g.GenerateRound(pool, history)

	require.False(t, fallback)
	assertCompletePairing(t, pool, pairings)
	for _, p := range pairings {
		if p.IsBye() {
			assert.Equal(t, 2, p.Player1ID)
		}
	}
}

func TestSwiss_ExhaustedBudgetFallsBack(t *testing.T) {
	g := &SwissGenerator{searchBudget: 0}
	pool := make([]PoolPlayer, 6)
	for i := range pool {
		pool[i] = PoolPlayer{ID: i + 1, Score: 0, Rating: 1000}
	}

	pairings, fallback := g.GenerateRound(pool, BuildHistory(nil))

	assert.True(t, fallback)
	assertCompletePairing(t, pool, pairings)
}

func TestSwissTotalRounds(t *testing.T) {
	tests := []struct {
		participants int
		want         int
	}{
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{16, 4},
		{17, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SwissTotalRounds(tt.participants), "n=%d", tt.participants)
	}
}
