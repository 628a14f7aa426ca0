package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zgamesdev/zgames-backend/models"
)

var ErrAnimalNotFound = errors.New("animal not found")

type AnimalRepository interface {
	List(ctx context.Context, exec SQLExecutor) ([]models.Animal, error)
	GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Animal, error)
}

type postgresAnimalRepository struct {
	db *sql.DB
}

func NewPostgresAnimalRepository(db *sql.DB) AnimalRepository {
	return &postgresAnimalRepository{db: db}
}

func (r *postgresAnimalRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAnimalRepository) List(ctx context.Context, exec SQLExecutor) ([]models.Animal, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, species, emoji FROM animals ORDER BY name`

	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	animals := make([]models.Animal, 0)
	for rows.Next() {
		var a models.Animal
		if scanErr := rows.Scan(&a.ID, &a.Name, &a.Species, &a.Emoji); scanErr != nil {
			return nil, scanErr
		}
		animals = append(animals, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return animals, nil
}

func (r *postgresAnimalRepository) GetByName(ctx context.Context, exec SQLExecutor, name string) (*models.Animal, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, species, emoji FROM animals WHERE name = $1`

	a := &models.Animal{}
	err := executor.QueryRowContext(ctx, query, name).Scan(&a.ID, &a.Name, &a.Species, &a.Emoji)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnimalNotFound
		}
		return nil, err
	}
	return a, nil
}
