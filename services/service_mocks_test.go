package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
)

// Транзакционные сервисы требуют *sql.DB, но сами запросы идут через
// фейковые репозитории. Драйвер-заглушка поддерживает только Begin/Commit/
// Rollback — этого достаточно для withTransaction.
type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return &stubConn{}, nil }

type stubConn struct{}

func (*stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (*stubConn) Close() error                        { return nil }
func (*stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicetest", stubDriver{})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("servicetest", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// memStore — общее in-memory состояние фейковых репозиториев.
type memStore struct {
	mu sync.Mutex

	tournaments map[string]*models.Tournament
	teams       map[string]*models.Team
	players     map[string]*models.Player
	games       map[string]models.Game
	selected    map[string]map[string]bool
	animals     map[string]models.Animal
	users       map[string]*models.User

	teamScores   []*models.TeamScore
	playerScores []*models.PlayerScore

	nextID int
	now    time.Time

	// Инъекция сбоев.
	incrementVersionErrs []error
	countOverride        *int
	insertErr            error

	// Водяные знаки закоммиченных журналов: при инъекции сбоя бампа версии
	// строки незавершённой попытки откатываются, как это сделала бы БД.
	committedTeamScores   int
	committedPlayerScores int
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: make(map[string]*models.Tournament),
		teams:       make(map[string]*models.Team),
		players:     make(map[string]*models.Player),
		games:       make(map[string]models.Game),
		selected:    make(map[string]map[string]bool),
		animals:     make(map[string]models.Animal),
		users:       make(map[string]*models.User),
		now:         time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) genID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Second)
	return s.now
}

func (s *memStore) addTournament(name string, status models.TournamentStatus) *models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Tournament{
		ID:      s.genID("trn"),
		Name:    name,
		Status:  status,
		Version: 1,
	}
	s.tournaments[t.ID] = t
	return t
}

func (s *memStore) addGame(name string) models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := models.Game{ID: s.genID("game"), Name: name, WinPoints: 10}
	s.games[g.ID] = g
	return g
}

func (s *memStore) selectGame(tournamentID, gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[tournamentID] == nil {
		s.selected[tournamentID] = make(map[string]bool)
	}
	s.selected[tournamentID][gameID] = true
}

func (s *memStore) addTeam(tournamentID, name string) *models.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Team{ID: s.genID("team"), Name: name, TournamentID: tournamentID}
	s.teams[t.ID] = t
	return t
}

func (s *memStore) addPlayer(tournamentID, teamID, name string) *models.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Player{ID: s.genID("plr"), Name: name, TeamID: teamID, TournamentID: tournamentID}
	s.players[p.ID] = p
	return p
}

func (s *memStore) addAnimal(name, emoji string) models.Animal {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Animal{ID: s.genID("anm"), Name: name, Emoji: emoji}
	s.animals[name] = a
	return a
}

func (s *memStore) addTeamScore(tournamentID, gameID, teamID string, change int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamScores = append(s.teamScores, &models.TeamScore{
		ID: s.genID("ts"), TournamentID: tournamentID, GameID: gameID, TeamID: teamID,
		ScoreChange: change, Reason: reason, CreatedAt: s.tick(),
	})
	s.committedTeamScores = len(s.teamScores)
}

func (s *memStore) addPlayerScore(tournamentID, gameID, playerID string, teamID *string, change int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerScores = append(s.playerScores, &models.PlayerScore{
		ID: s.genID("ps"), TournamentID: tournamentID, GameID: gameID, PlayerID: playerID,
		TeamID: teamID, ScoreChange: change, Reason: reason, CreatedAt: s.tick(),
	})
	s.committedPlayerScores = len(s.playerScores)
}

// --- TournamentRepository ---

type fakeTournamentRepo struct{ store *memStore }

func (r *fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	if t.ID == "" {
		t.ID = r.store.genID("trn")
	}
	if t.Version == 0 {
		t.Version = 1
	}
	t.CreatedAt = r.store.tick()
	t.UpdatedAt = t.CreatedAt
	stored := *t
	r.store.tournaments[t.ID] = &stored
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeTournamentRepo) FindActive(_ context.Context, _ repositories.SQLExecutor) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.tournaments {
		if t.Status == models.StatusActive {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.store.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	stored.Name = t.Name
	stored.Description = t.Description
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) DeactivateOthers(_ context.Context, _ repositories.SQLExecutor, exceptID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, t := range r.store.tournaments {
		if t.ID != exceptID && t.Status == models.StatusActive {
			t.Status = models.StatusInactive
			n++
		}
	}
	return n, nil
}

func (r *fakeTournamentRepo) IncrementVersion(_ context.Context, _ repositories.SQLExecutor, id string, version int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if len(r.store.incrementVersionErrs) > 0 {
		err := r.store.incrementVersionErrs[0]
		r.store.incrementVersionErrs = r.store.incrementVersionErrs[1:]
		if err != nil {
			// Откат незакоммиченных вставок этой попытки.
			r.store.teamScores = r.store.teamScores[:r.store.committedTeamScores]
			r.store.playerScores = r.store.playerScores[:r.store.committedPlayerScores]
			return err
		}
	}
	t, ok := r.store.tournaments[id]
	if !ok || t.Version != version {
		r.store.teamScores = r.store.teamScores[:r.store.committedTeamScores]
		r.store.playerScores = r.store.playerScores[:r.store.committedPlayerScores]
		return repositories.ErrTournamentVersionConflict
	}
	t.Version++
	r.store.committedTeamScores = len(r.store.teamScores)
	r.store.committedPlayerScores = len(r.store.playerScores)
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.store.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) AddSelectedGame(_ context.Context, _ repositories.SQLExecutor, tournamentID, gameID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.games[gameID]; !ok {
		return repositories.ErrTournamentInvalidGame
	}
	if r.store.selected[tournamentID] == nil {
		r.store.selected[tournamentID] = make(map[string]bool)
	}
	r.store.selected[tournamentID][gameID] = true
	return nil
}

func (r *fakeTournamentRepo) GameSelected(_ context.Context, _ repositories.SQLExecutor, tournamentID, gameID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.selected[tournamentID][gameID], nil
}

func (r *fakeTournamentRepo) ListSelectedGames(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Game, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.Game, 0)
	for gameID := range r.store.selected[tournamentID] {
		out = append(out, r.store.games[gameID])
	}
	return out, nil
}

// --- TeamRepository ---

type fakeTeamRepo struct{ store *memStore }

func (r *fakeTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.teams {
		if existing.TournamentID == team.TournamentID && existing.Name == team.Name {
			return repositories.ErrTeamNameConflict
		}
	}
	if team.ID == "" {
		team.ID = r.store.genID("team")
	}
	team.CreatedAt = r.store.tick()
	team.UpdatedAt = team.CreatedAt
	stored := *team
	r.store.teams[team.ID] = &stored
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.Team, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Team, 0)
	for _, t := range r.store.teams {
		if t.TournamentID == tournamentID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) ExistsByName(_ context.Context, _ repositories.SQLExecutor, tournamentID, name, exceptID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.teams {
		if t.TournamentID == tournamentID && t.Name == name && t.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamRepo) Rename(_ context.Context, _ repositories.SQLExecutor, id, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.Name = name
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(_ context.Context, _ repositories.SQLExecutor, id string, logoKey *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.store.teams, id)
	return nil
}

func (r *fakeTeamRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, t := range r.store.teams {
		if t.TournamentID == tournamentID {
			delete(r.store.teams, id)
		}
	}
	return nil
}

// --- PlayerRepository ---

type fakePlayerRepo struct{ store *memStore }

func (r *fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p.ID == "" {
		p.ID = r.store.genID("plr")
	}
	p.CreatedAt = r.store.tick()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	r.store.players[p.ID] = &stored
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.Player, 0)
	for _, p := range r.store.players {
		if p.TournamentID == tournamentID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) Update(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.players[p.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	stored.Name = p.Name
	stored.TeamID = p.TeamID
	stored.AnimalID = p.AnimalID
	return nil
}

func (r *fakePlayerRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.store.players, id)
	return nil
}

func (r *fakePlayerRepo) DeleteByTeam(_ context.Context, _ repositories.SQLExecutor, teamID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, p := range r.store.players {
		if p.TeamID == teamID {
			delete(r.store.players, id)
		}
	}
	return nil
}

func (r *fakePlayerRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, p := range r.store.players {
		if p.TournamentID == tournamentID {
			delete(r.store.players, id)
		}
	}
	return nil
}

// --- GameRepository / AnimalRepository ---

type fakeGameRepo struct{ store *memStore }

func (r *fakeGameRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]models.Game, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.Game, 0, len(r.store.games))
	for _, g := range r.store.games {
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Game, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	g, ok := r.store.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	return &g, nil
}

type fakeAnimalRepo struct{ store *memStore }

func (r *fakeAnimalRepo) List(_ context.Context, _ repositories.SQLExecutor) ([]models.Animal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.Animal, 0, len(r.store.animals))
	for _, a := range r.store.animals {
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAnimalRepo) GetByName(_ context.Context, _ repositories.SQLExecutor, name string) (*models.Animal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.animals[name]
	if !ok {
		return nil, repositories.ErrAnimalNotFound
	}
	return &a, nil
}

// --- ScoreRepository ---

type fakeScoreRepo struct{ store *memStore }

func (r *fakeScoreRepo) InsertTeamScore(_ context.Context, _ repositories.SQLExecutor, s *models.TeamScore) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.insertErr != nil {
		return r.store.insertErr
	}
	if s.ID == "" {
		s.ID = r.store.genID("ts")
	}
	s.CreatedAt = r.store.tick()
	stored := *s
	r.store.teamScores = append(r.store.teamScores, &stored)
	return nil
}

func (r *fakeScoreRepo) InsertPlayerScore(_ context.Context, _ repositories.SQLExecutor, s *models.PlayerScore) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.insertErr != nil {
		return r.store.insertErr
	}
	if s.ID == "" {
		s.ID = r.store.genID("ps")
	}
	s.CreatedAt = r.store.tick()
	stored := *s
	r.store.playerScores = append(r.store.playerScores, &stored)
	return nil
}

func (r *fakeScoreRepo) RequestSeen(_ context.Context, _ repositories.SQLExecutor, tournamentID, gameID, requestID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seen := r.countLocked(models.ScoreModeTeam, tournamentID, gameID, requestID) > 0 ||
		r.countLocked(models.ScoreModePlayer, tournamentID, gameID, requestID) > 0
	return seen, nil
}

func (r *fakeScoreRepo) CountByRequest(_ context.Context, _ repositories.SQLExecutor, mode models.ScoreMode, tournamentID, gameID, requestID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.countOverride != nil {
		return *r.store.countOverride, nil
	}
	return r.countLocked(mode, tournamentID, gameID, requestID), nil
}

func (r *fakeScoreRepo) countLocked(mode models.ScoreMode, tournamentID, gameID, requestID string) int {
	count := 0
	switch mode {
	case models.ScoreModeTeam:
		for _, s := range r.store.teamScores {
			if s.TournamentID == tournamentID && s.GameID == gameID && s.RequestID == requestID {
				count++
			}
		}
	case models.ScoreModePlayer:
		for _, s := range r.store.playerScores {
			if s.TournamentID == tournamentID && s.GameID == gameID && s.RequestID == requestID {
				count++
			}
		}
	}
	return count
}

func (r *fakeScoreRepo) ListTeamScores(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.TeamScore, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.TeamScore, 0)
	for _, s := range r.store.teamScores {
		if s.TournamentID == tournamentID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeScoreRepo) ListPlayerScores(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.PlayerScore, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.PlayerScore, 0)
	for _, s := range r.store.playerScores {
		if s.TournamentID == tournamentID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeScoreRepo) DeleteByTeam(_ context.Context, _ repositories.SQLExecutor, teamID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.teamScores[:0]
	for _, s := range r.store.teamScores {
		if s.TeamID != teamID {
			kept = append(kept, s)
		}
	}
	r.store.teamScores = kept

	keptPlayers := r.store.playerScores[:0]
	for _, s := range r.store.playerScores {
		if s.TeamID == nil || *s.TeamID != teamID {
			keptPlayers = append(keptPlayers, s)
		}
	}
	r.store.playerScores = keptPlayers
	return nil
}

func (r *fakeScoreRepo) DeletePlayerScoresByPlayers(_ context.Context, _ repositories.SQLExecutor, playerIDs []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	drop := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		drop[id] = true
	}
	kept := r.store.playerScores[:0]
	for _, s := range r.store.playerScores {
		if !drop[s.PlayerID] {
			kept = append(kept, s)
		}
	}
	r.store.playerScores = kept
	return nil
}

func (r *fakeScoreRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	keptTeams := r.store.teamScores[:0]
	for _, s := range r.store.teamScores {
		if s.TournamentID != tournamentID {
			keptTeams = append(keptTeams, s)
		}
	}
	r.store.teamScores = keptTeams

	keptPlayers := r.store.playerScores[:0]
	for _, s := range r.store.playerScores {
		if s.TournamentID != tournamentID {
			keptPlayers = append(keptPlayers, s)
		}
	}
	r.store.playerScores = keptPlayers
	return nil
}

// --- уведомления и кэш ---

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *fakeNotifier) NotifyLeaderboardUpdated(tournamentID, gameID string, mode models.ScoreMode, requestID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, fmt.Sprintf("%s/%s/%s/%s", tournamentID, gameID, mode, requestID))
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type fakeCache struct {
	mu          sync.Mutex
	views       map[string]*models.LeaderboardView
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{views: make(map[string]*models.LeaderboardView)}
}

func (c *fakeCache) Get(_ context.Context, tournamentID string) (*models.LeaderboardView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views[tournamentID], nil
}

func (c *fakeCache) Set(_ context.Context, tournamentID string, view *models.LeaderboardView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[tournamentID] = view
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, tournamentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, tournamentID)
	c.invalidated = append(c.invalidated, tournamentID)
	return nil
}
