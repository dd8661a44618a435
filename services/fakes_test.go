package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/first5455/vibe-tournament-organization-sub000/models"
	"github.com/first5455/vibe-tournament-organization-sub000/repositories"
)

// In-memory repository fakes. They honor the same sentinel errors as the
// Postgres implementations and hand out copies so that service-side
// mutations only reach the store through the repository methods.

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(repositories.SQLExecutor) error) error {
	return fn(nil)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTournamentRepo) ListPendingDue(ctx context.Context, now time.Time) ([]*models.Tournament, error) {
	var due []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == models.TournamentStatusPending && !t.StartDate.After(now) {
			clone := *t
			due = append(due, &clone)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (r *fakeTournamentRepo) UpdateStatusAndRounds(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, currentRound, totalRounds int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	t.CurrentRound = currentRound
	t.TotalRounds = totalRounds
	return nil
}

func (r *fakeTournamentRepo) UpdateCurrentRound(ctx context.Context, exec repositories.SQLExecutor, id int, currentRound int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.CurrentRound = currentRound
	return nil
}

func (r *fakeTournamentRepo) Complete(ctx context.Context, exec repositories.SQLExecutor, id int, winnerUserID *int, endDate time.Time) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = models.TournamentStatusCompleted
	t.WinnerUserID = winnerUserID
	t.EndDate = &endDate
	return nil
}

type fakeParticipantRepo struct {
	participants map[int]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant)}
}

func (r *fakeParticipantRepo) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int, activeOnly bool) ([]*models.Participant, error) {
	var list []*models.Participant
	for _, p := range r.participants {
		if p.TournamentID != tournamentID {
			continue
		}
		if activeOnly && p.Dropped {
			continue
		}
		clone := *p
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeParticipantRepo) AdjustScore(ctx context.Context, exec repositories.SQLExecutor, id int, delta int) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Score += delta
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	match.CreatedAt = time.Now().UTC()
	r.nextID++
	clone := *match
	r.matches[match.ID] = &clone
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	clone := *m
	return &clone, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	var list []*models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		clone := *m
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result *string, winnerID *int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Result = result
	m.WinnerID = winnerID
	return nil
}

func (r *fakeMatchRepo) UpdateRatingDeltas(ctx context.Context, exec repositories.SQLExecutor, id int, player1Delta, player2Delta *int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Player1MMRChange = player1Delta
	m.Player2MMRChange = player2Delta
	return nil
}

type ratingKey struct {
	userID int
	gameID int
}

type fakeRatingRepo struct {
	ratings map[ratingKey]*models.Rating
	nextID  int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: make(map[ratingKey]*models.Rating), nextID: 1}
}

func (r *fakeRatingRepo) Get(ctx context.Context, exec repositories.SQLExecutor, userID, gameID int) (*models.Rating, error) {
	rating, ok := r.ratings[ratingKey{userID, gameID}]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	clone := *rating
	return &clone, nil
}

func (r *fakeRatingRepo) GetOrCreateForUpdate(ctx context.Context, exec repositories.SQLExecutor, userID, gameID int) (*models.Rating, error) {
	key := ratingKey{userID, gameID}
	rating, ok := r.ratings[key]
	if !ok {
		rating = &models.Rating{ID: r.nextID, UserID: userID, GameID: gameID, MMR: models.DefaultMMR}
		r.nextID++
		r.ratings[key] = rating
	}
	clone := *rating
	return &clone, nil
}

func (r *fakeRatingRepo) Update(ctx context.Context, exec repositories.SQLExecutor, rating *models.Rating) error {
	key := ratingKey{rating.UserID, rating.GameID}
	if _, ok := r.ratings[key]; !ok {
		return repositories.ErrRatingNotFound
	}
	clone := *rating
	clone.UpdatedAt = time.Now().UTC()
	r.ratings[key] = &clone
	return nil
}

type fakeDuelRepo struct {
	duels  map[int]*models.Duel
	nextID int
}

func newFakeDuelRepo() *fakeDuelRepo {
	return &fakeDuelRepo{duels: make(map[int]*models.Duel), nextID: 1}
}

func (r *fakeDuelRepo) Create(ctx context.Context, exec repositories.SQLExecutor, duel *models.Duel) error {
	duel.ID = r.nextID
	duel.CreatedAt = time.Now().UTC()
	r.nextID++
	clone := *duel
	r.duels[duel.ID] = &clone
	return nil
}

func (r *fakeDuelRepo) GetByID(ctx context.Context, id int) (*models.Duel, error) {
	d, ok := r.duels[id]
	if !ok {
		return nil, repositories.ErrDuelNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *fakeDuelRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, id int, result *string, winnerUserID *int) error {
	d, ok := r.duels[id]
	if !ok {
		return repositories.ErrDuelNotFound
	}
	d.Result = result
	d.WinnerUserID = winnerUserID
	return nil
}

func (r *fakeDuelRepo) UpdateRatingDeltas(ctx context.Context, exec repositories.SQLExecutor, id int, player1Delta, player2Delta *int) error {
	d, ok := r.duels[id]
	if !ok {
		return repositories.ErrDuelNotFound
	}
	d.Player1MMRChange = player1Delta
	d.Player2MMRChange = player2Delta
	return nil
}
