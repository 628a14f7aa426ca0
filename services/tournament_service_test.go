package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zgamesdev/zgames-backend/models"
)

type tournamentFixture struct {
	store   *memStore
	service TournamentService
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	store := newMemStore()
	store.addAnimal("Cat", "🐱")
	store.addAnimal("Lion", "🦁")

	return &tournamentFixture{
		store: store,
		service: NewTournamentService(
			newTestDB(t),
			&fakeTournamentRepo{store: store},
			&fakeTeamRepo{store: store},
			&fakePlayerRepo{store: store},
			&fakeAnimalRepo{store: store},
			&fakeScoreRepo{store: store},
			newFakeCache(),
			testLogger(),
		),
	}
}

func TestCreateTournamentWithNestedEntities(t *testing.T) {
	f := newTournamentFixture(t)
	game := f.store.addGame("Tug of War")

	active := models.StatusActive
	tournament, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:    "Z Games Spring",
		Status:  &active,
		GameIDs: []string{game.ID},
		Teams: []CreateTeamInput{
			{Name: "Red", Players: []CreatePlayerInput{
				{Name: "Alice", Animal: "🦁"},
				{Name: "Bob", Animal: "Unknown Beast"},
			}},
			{Name: "Blue"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, tournament.Status)
	assert.Equal(t, 1, tournament.Version)
	require.Len(t, tournament.Teams, 2)
	require.Len(t, tournament.Teams[0].Players, 2)
	require.Len(t, tournament.SelectedGames, 1)

	// Emoji и неизвестные значения сведены к каталожным животным.
	assert.Equal(t, "Lion", tournament.Teams[0].Players[0].Animal.Name)
	assert.Equal(t, "Cat", tournament.Teams[0].Players[1].Animal.Name)
}

func TestCreateTournamentRequiresName(t *testing.T) {
	f := newTournamentFixture(t)
	_, err := f.service.Create(context.Background(), CreateTournamentInput{Name: "   "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)
}

func TestCreateTournamentRejectsUnknownGame(t *testing.T) {
	f := newTournamentFixture(t)
	_, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:    "Z Games",
		GameIDs: []string{"missing"},
	})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestCreateActiveTournamentDeactivatesOthers(t *testing.T) {
	f := newTournamentFixture(t)
	old := f.store.addTournament("Old Season", models.StatusActive)

	active := models.StatusActive
	_, err := f.service.Create(context.Background(), CreateTournamentInput{
		Name:   "New Season",
		Status: &active,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInactive, f.store.tournaments[old.ID].Status)
}

func TestUpdateStatusActivationIsExclusive(t *testing.T) {
	f := newTournamentFixture(t)
	first := f.store.addTournament("First", models.StatusActive)
	second := f.store.addTournament("Second", models.StatusPending)

	updated, err := f.service.UpdateStatus(context.Background(), second.ID, models.StatusActive)
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, updated.Status)
	assert.Equal(t, models.StatusInactive, f.store.tournaments[first.ID].Status)
	assert.Equal(t, models.StatusActive, f.store.tournaments[second.ID].Status)
}

func TestUpdateStatusRejectsInvalidStatus(t *testing.T) {
	f := newTournamentFixture(t)
	tournament := f.store.addTournament("First", models.StatusPending)

	_, err := f.service.UpdateStatus(context.Background(), tournament.ID, "archived")
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	f := newTournamentFixture(t)
	tournament := f.store.addTournament("First", models.StatusActive)

	updated, err := f.service.UpdateStatus(context.Background(), tournament.ID, models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)
}

func TestDeleteTournamentCascades(t *testing.T) {
	f := newTournamentFixture(t)
	tournament := f.store.addTournament("First", models.StatusActive)
	game := f.store.addGame("Tug of War")
	f.store.selectGame(tournament.ID, game.ID)
	team := f.store.addTeam(tournament.ID, "Red")
	player := f.store.addPlayer(tournament.ID, team.ID, "Alice")
	f.store.addTeamScore(tournament.ID, game.ID, team.ID, 10, "")
	f.store.addPlayerScore(tournament.ID, game.ID, player.ID, &team.ID, 5, "")

	require.NoError(t, f.service.Delete(context.Background(), tournament.ID))

	assert.Empty(t, f.store.tournaments)
	assert.Empty(t, f.store.teams)
	assert.Empty(t, f.store.players)
	assert.Empty(t, f.store.teamScores)
	assert.Empty(t, f.store.playerScores)
}

func TestDeleteMissingTournament(t *testing.T) {
	f := newTournamentFixture(t)
	err := f.service.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestGetActiveReturnsNilWithoutActiveTournament(t *testing.T) {
	f := newTournamentFixture(t)
	f.store.addTournament("Done", models.StatusCompleted)

	tournament, err := f.service.GetActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, tournament)
}
