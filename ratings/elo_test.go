package ratings

import (
	"testing"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUpdate_EqualRatingsWin(t *testing.T) {
	calc := NewCalculator()

	newA, newB, deltaA, deltaB := calc.ComputeUpdate(1000, 1000, 1, 0)

	assert.Equal(t, 1016, newA)
	assert.Equal(t, 984, newB)
	assert.Equal(t, 16, deltaA)
	assert.Equal(t, -16, deltaB)
}

func TestComputeUpdate_FavoriteWinsSmallGain(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name             string
		ratingA, ratingB int
		scoreA, scoreB   float64
		wantDeltaA       int
	}{
		{"favorite beats underdog", 1200, 1000, 1, 0, 8},
		{"underdog beats favorite", 1000, 1200, 1, 0, 24},
		{"favorite loses", 1200, 1000, 0, 1, -24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newA, _, deltaA, deltaB := calc.ComputeUpdate(tt.ratingA, tt.ratingB, tt.scoreA, tt.scoreB)
			assert.Equal(t, tt.wantDeltaA, deltaA)
			assert.Equal(t, tt.ratingA+deltaA, newA)
			// Symmetric expectations mean the two deltas cancel up to rounding.
			assert.InDelta(t, 0, deltaA+deltaB, 1)
		})
	}
}

// Draws feed zero actual score to both sides, so neither rating may ever
// increase from a drawn game.
func TestComputeUpdate_DrawNeverIncreases(t *testing.T) {
	calc := NewCalculator()

	cases := [][2]int{{1000, 1000}, {1200, 1000}, {800, 1400}, {1500, 1495}}
	for _, c := range cases {
		newA, newB, deltaA, deltaB := calc.ComputeUpdate(c[0], c[1], 0, 0)
		assert.LessOrEqual(t, newA, c[0], "ratings %v", c)
		assert.LessOrEqual(t, newB, c[1], "ratings %v", c)
		assert.LessOrEqual(t, deltaA, 0)
		assert.LessOrEqual(t, deltaB, 0)
	}

	// Equal ratings: both lose exactly K*0.5.
	newA, newB, _, _ := calc.ComputeUpdate(1000, 1000, 0, 0)
	assert.Equal(t, 984, newA)
	assert.Equal(t, 984, newB)
}

func TestComputeUpdate_RevertRoundTrip(t *testing.T) {
	calc := NewCalculator()

	ratingA, ratingB := 1032, 968

	// First report: A wins.
	newA, newB, deltaA, deltaB := calc.ComputeUpdate(ratingA, ratingB, 1, 0)
	afterFirstA, afterFirstB := newA, newB

	// Correction to B winning: subtract stored deltas, recompute fresh.
	revA, revB := newA-deltaA, newB-deltaB
	require.Equal(t, ratingA, revA)
	require.Equal(t, ratingB, revB)
	newA, newB, deltaA, deltaB = calc.ComputeUpdate(revA, revB, 0, 1)

	// Correcting back to the original winner restores the post-first-report
	// ratings exactly, since stored deltas round-trip as integers.
	revA, revB = newA-deltaA, newB-deltaB
	newA, newB, _, _ = calc.ComputeUpdate(revA, revB, 1, 0)
	assert.Equal(t, afterFirstA, newA)
	assert.Equal(t, afterFirstB, newB)
}

func TestOutcome_Opposite(t *testing.T) {
	assert.Equal(t, OutcomeLoss, OutcomeWin.Opposite())
	assert.Equal(t, OutcomeWin, OutcomeLoss.Opposite())
	assert.Equal(t, OutcomeDraw, OutcomeDraw.Opposite())
}

func TestRecordOutcome_KeepsAggregateInSync(t *testing.T) {
	r := &models.Rating{UserID: 1, GameID: 1, MMR: models.DefaultMMR}

	RecordOutcome(r, OutcomeWin, OriginTournament)
	RecordOutcome(r, OutcomeLoss, OriginDuel)
	RecordOutcome(r, OutcomeDraw, OriginDuel)
	RecordOutcome(r, OutcomeWin, OriginDuel)

	assert.Equal(t, 2, r.Wins)
	assert.Equal(t, 1, r.Losses)
	assert.Equal(t, 1, r.Draws)
	assert.Equal(t, r.Wins, r.DuelWins+r.TournamentWins)
	assert.Equal(t, r.Losses, r.DuelLosses+r.TournamentLosses)
	assert.Equal(t, r.Draws, r.DuelDraws+r.TournamentDraws)

	UnrecordOutcome(r, OutcomeWin, OriginTournament)
	assert.Equal(t, 1, r.Wins)
	assert.Equal(t, 0, r.TournamentWins)
	assert.Equal(t, 1, r.DuelWins)
}
