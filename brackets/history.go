package brackets

import "github.com/first5455/vibe-tournament-organization-sub000/models"

// History is a derived view over a tournament's past matches: which
// participant pairs have already met, and who has already received a bye.
// It is rebuilt from the full match list on every call and never cached.
type History struct {
	playedAgainst map[int]map[int]struct{}
	receivedBye   map[int]struct{}
}

// BuildHistory folds all matches played so far into a History. Played pairs
// are recorded in both directions; byes accumulate across every round.
func BuildHistory(matches []*models.Match) *History {
	h := &History{
		playedAgainst: make(map[int]map[int]struct{}),
		receivedBye:   make(map[int]struct{}),
	}
	for _, m := range matches {
		if m.IsBye || m.Player2ID == nil {
			h.receivedBye[m.Player1ID] = struct{}{}
			continue
		}
		h.addPlayed(m.Player1ID, *m.Player2ID)
		h.addPlayed(*m.Player2ID, m.Player1ID)
	}
	return h
}

func (h *History) addPlayed(a, b int) {
	opponents, ok := h.playedAgainst[a]
	if !ok {
		opponents = make(map[int]struct{})
		h.playedAgainst[a] = opponents
	}
	opponents[b] = struct{}{}
}

// HavePlayed reports whether the two participants met in any prior round.
func (h *History) HavePlayed(a, b int) bool {
	_, ok := h.playedAgainst[a][b]
	return ok
}

// HasBye reports whether the participant already received a bye.
func (h *History) HasBye(participantID int) bool {
	_, ok := h.receivedBye[participantID]
	return ok
}
