package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/zgamesdev/zgames-backend/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("email already registered")
)

type UserRepository interface {
	Create(ctx context.Context, exec SQLExecutor, user *models.User) error
	GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error)
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresUserRepository) Create(ctx context.Context, exec SQLExecutor, u *models.User) error {
	executor := r.getExecutor(exec)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUserEmailConflict
		}
		return err
	}
	return nil
}

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, exec SQLExecutor, email string) (*models.User, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(executor.QueryRowContext(ctx, query, email))
}

func (r *postgresUserRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.User, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(executor.QueryRowContext(ctx, query, id))
}
