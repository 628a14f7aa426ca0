package services

import (
	"context"
	"errors"

	"github.com/zgamesdev/zgames-backend/models"
	"github.com/zgamesdev/zgames-backend/repositories"
)

// CatalogService отдаёт справочники: доступные игры и животных-аватаров.
type CatalogService interface {
	ListAnimals(ctx context.Context) ([]models.Animal, error)
	ListGames(ctx context.Context) ([]models.Game, error)
	GetGame(ctx context.Context, id string) (*models.Game, error)
}

type catalogService struct {
	animalRepo repositories.AnimalRepository
	gameRepo   repositories.GameRepository
}

func NewCatalogService(animalRepo repositories.AnimalRepository, gameRepo repositories.GameRepository) CatalogService {
	return &catalogService{animalRepo: animalRepo, gameRepo: gameRepo}
}

func (s *catalogService) ListAnimals(ctx context.Context) ([]models.Animal, error) {
	return s.animalRepo.List(ctx, nil)
}

func (s *catalogService) ListGames(ctx context.Context) ([]models.Game, error) {
	return s.gameRepo.List(ctx, nil)
}

func (s *catalogService) GetGame(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}
