package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zgamesdev/zgames-backend/models"
)

type playerFixture struct {
	store   *memStore
	cache   *fakeCache
	service PlayerService
}

func newPlayerFixture(t *testing.T) *playerFixture {
	t.Helper()
	store := newMemStore()
	store.addAnimal("Cat", "🐱")
	store.addAnimal("Fox", "🦊")
	cache := newFakeCache()
	return &playerFixture{
		store: store,
		cache: cache,
		service: NewPlayerService(
			newTestDB(t),
			&fakePlayerRepo{store: store},
			&fakeTeamRepo{store: store},
			&fakeAnimalRepo{store: store},
			&fakeScoreRepo{store: store},
			cache,
			testLogger(),
		),
	}
}

func TestAddPlayer(t *testing.T) {
	f := newPlayerFixture(t)
	tournament := f.store.addTournament("Season", models.StatusActive)
	team := f.store.addTeam(tournament.ID, "Red")

	player, err := f.service.AddPlayer(context.Background(), team.ID, CreatePlayerInput{Name: " Alice ", Animal: "🦊"})
	require.NoError(t, err)

	assert.Equal(t, "Alice", player.Name)
	assert.Equal(t, team.ID, player.TeamID)
	assert.Equal(t, tournament.ID, player.TournamentID)
	require.NotNil(t, player.Animal)
	assert.Equal(t, "Fox", player.Animal.Name)
	assert.Contains(t, f.cache.invalidated, tournament.ID)
}

func TestAddPlayerUnknownAnimalFallsBackToCat(t *testing.T) {
	f := newPlayerFixture(t)
	tournament := f.store.addTournament("Season", models.StatusActive)
	team := f.store.addTeam(tournament.ID, "Red")

	player, err := f.service.AddPlayer(context.Background(), team.ID, CreatePlayerInput{Name: "Bob", Animal: "Unknown Beast"})
	require.NoError(t, err)
	assert.Equal(t, "Cat", player.Animal.Name)
}

func TestAddPlayerRequiresName(t *testing.T) {
	f := newPlayerFixture(t)
	tournament := f.store.addTournament("Season", models.StatusActive)
	team := f.store.addTeam(tournament.ID, "Red")

	_, err := f.service.AddPlayer(context.Background(), team.ID, CreatePlayerInput{Name: "  "})
	assert.ErrorIs(t, err, ErrPlayerNameRequired)
}

func TestAddPlayerUnknownTeam(t *testing.T) {
	f := newPlayerFixture(t)
	_, err := f.service.AddPlayer(context.Background(), "missing", CreatePlayerInput{Name: "Alice"})
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestUpdatePlayerMovesWithinTournament(t *testing.T) {
	f := newPlayerFixture(t)
	tournament := f.store.addTournament("Season", models.StatusActive)
	red := f.store.addTeam(tournament.ID, "Red")
	blue := f.store.addTeam(tournament.ID, "Blue")
	player := f.store.addPlayer(tournament.ID, red.ID, "Alice")

	updated, err := f.service.UpdatePlayer(context.Background(), player.ID, UpdatePlayerInput{
		Name:   strPtr("Alicia"),
		TeamID: &blue.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, blue.ID, updated.TeamID)
	assert.Equal(t, blue.ID, f.store.players[player.ID].TeamID)
}

func TestUpdatePlayerRejectsCrossTournamentMove(t *testing.T) {
	f := newPlayerFixture(t)
	home := f.store.addTournament("Home", models.StatusActive)
	away := f.store.addTournament("Away", models.StatusPending)
	red := f.store.addTeam(home.ID, "Red")
	foreign := f.store.addTeam(away.ID, "Foreign")
	player := f.store.addPlayer(home.ID, red.ID, "Alice")

	_, err := f.service.UpdatePlayer(context.Background(), player.ID, UpdatePlayerInput{TeamID: &foreign.ID})
	assert.ErrorIs(t, err, ErrPlayerWrongTeam)
	assert.Equal(t, red.ID, f.store.players[player.ID].TeamID)
}

func TestUpdatePlayerChangesAnimal(t *testing.T) {
	f := newPlayerFixture(t)
	tournament := f.store.addTournament("Season", models.StatusActive)
	team := f.store.addTeam(tournament.ID, "Red")
	player := f.store.addPlayer(tournament.ID, team.ID, "Alice")

	updated, err := f.service.UpdatePlayer(context.Background(), player.ID, UpdatePlayerInput{Animal: strPtr("🦊")})
	require.NoError(t, err)
	require.NotNil(t, updated.Animal)
	assert.Equal(t, "Fox", updated.Animal.Name)
}

func TestUpdateMissingPlayer(t *testing.T) {
	f := newPlayerFixture(t)
	_, err := f.service.UpdatePlayer(context.Background(), "missing", UpdatePlayerInput{Name: strPtr("X")})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRemovePlayerDeletesScores(t *testing.T) {
	f := newPlayerFixture(t)
	tournament := f.store.addTournament("Season", models.StatusActive)
	game := f.store.addGame("Tug of War")
	team := f.store.addTeam(tournament.ID, "Red")
	player := f.store.addPlayer(tournament.ID, team.ID, "Alice")
	other := f.store.addPlayer(tournament.ID, team.ID, "Bob")
	f.store.addPlayerScore(tournament.ID, game.ID, player.ID, &team.ID, 5, "")
	f.store.addPlayerScore(tournament.ID, game.ID, other.ID, &team.ID, 7, "")

	require.NoError(t, f.service.RemovePlayer(context.Background(), player.ID))

	assert.NotContains(t, f.store.players, player.ID)
	assert.Contains(t, f.store.players, other.ID)
	require.Len(t, f.store.playerScores, 1)
	assert.Equal(t, other.ID, f.store.playerScores[0].PlayerID)
	assert.Contains(t, f.cache.invalidated, tournament.ID)
}

func TestRemoveMissingPlayer(t *testing.T) {
	f := newPlayerFixture(t)
	err := f.service.RemovePlayer(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
