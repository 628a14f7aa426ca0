package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
)

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, u *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	if u.ID == "" {
		u.ID = r.store.genID("usr")
	}
	u.CreatedAt = r.store.tick()
	stored := *u
	r.store.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ repositories.SQLExecutor, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func newAuthFixture() (AuthService, *memStore) {
	store := newMemStore()
	return NewAuthService(&fakeUserRepo{store: store}), store
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "  host  ",
		Email:    "Host@Example.COM",
		Password: "supersecret",
	})
	require.NoError(t, err)

	assert.Equal(t, "host", user.Username)
	assert.Equal(t, "host@example.com", user.Email)
	assert.Equal(t, models.RoleHost, user.Role)
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "host",
		Email:    "host@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "host",
		Email:    "host@example.com",
		Password: "supersecret",
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	input := RegisterInput{Username: "host", Email: "host@example.com", Password: "supersecret"}

	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	input.Username = "another"
	_, err = svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestLoginWithValidCredentials(t *testing.T) {
	svc, _ := newAuthFixture()
	registered, err := svc.Register(context.Background(), RegisterInput{
		Username: "host",
		Email:    "host@example.com",
		Password: "supersecret",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	// Email при логине нормализуется так же, как при регистрации.
	user, err := svc.Login(context.Background(), " Host@Example.com ", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestLoginWithWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "host",
		Email:    "host@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "host@example.com", "wrongpass123")
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Login(context.Background(), "nobody@example.com", "supersecret")
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
