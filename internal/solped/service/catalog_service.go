package service

import (
	"context"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"github.com/bitforja/solped/internal/solped/repository"
	"github.com/google/uuid"
)

// CatalogService serves the area and unit lookup tables used by requisition
// forms. Entries are deactivated rather than deleted.
type CatalogService struct {
	areaRepo *repository.AreaRepository
	unitRepo *repository.UnitRepository
}

func NewCatalogService(areaRepo *repository.AreaRepository, unitRepo *repository.UnitRepository) *CatalogService {
	return &CatalogService{areaRepo: areaRepo, unitRepo: unitRepo}
}

func (s *CatalogService) ListAreas(ctx context.Context) ([]entity.Area, error) {
	return s.areaRepo.FindActive(ctx)
}

func (s *CatalogService) CreateArea(ctx context.Context, name, description string) (*entity.Area, error) {
	if name == "" {
		return nil, &engine.ValidationError{Reason: "area name is required"}
	}
	area := &entity.Area{
		ID:          uuid.New().String()[:32],
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.areaRepo.Create(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

func (s *CatalogService) DeactivateArea(ctx context.Context, id string) error {
	return s.areaRepo.Deactivate(ctx, id)
}

func (s *CatalogService) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	return s.unitRepo.FindActive(ctx)
}

func (s *CatalogService) CreateUnit(ctx context.Context, name, symbol string) (*entity.Unit, error) {
	if name == "" {
		return nil, &engine.ValidationError{Reason: "unit name is required"}
	}
	unit := &entity.Unit{
		ID:     uuid.New().String()[:32],
		Name:   name,
		Symbol: symbol,
		Active: true,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *CatalogService) DeactivateUnit(ctx context.Context, id string) error {
	return s.unitRepo.Deactivate(ctx, id)
}
