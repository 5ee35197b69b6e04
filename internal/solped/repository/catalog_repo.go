package repository

import (
	"context"
	"errors"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"gorm.io/gorm"
)

type AreaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) *AreaRepository {
	return &AreaRepository{db: db}
}

func (r *AreaRepository) FindActive(ctx context.Context) ([]entity.Area, error) {
	var areas []entity.Area
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&areas).Error
	return areas, err
}

func (r *AreaRepository) FindByID(ctx context.Context, id string) (*entity.Area, error) {
	var area entity.Area
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&area).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &area, nil
}

func (r *AreaRepository) Create(ctx context.Context, area *entity.Area) error {
	return r.db.WithContext(ctx).Create(area).Error
}

func (r *AreaRepository) Update(ctx context.Context, area *entity.Area) error {
	return r.db.WithContext(ctx).Save(area).Error
}

// Deactivate soft-deletes so historic requisitions keep the reference.
func (r *AreaRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.Area{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return engine.ErrNotFound
	}
	return nil
}

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) FindActive(ctx context.Context) ([]entity.Unit, error) {
	var units []entity.Unit
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&units).Error
	return units, err
}

func (r *UnitRepository) FindByID(ctx context.Context, id string) (*entity.Unit, error) {
	var unit entity.Unit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

func (r *UnitRepository) Create(ctx context.Context, unit *entity.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *UnitRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&entity.Unit{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return engine.ErrNotFound
	}
	return nil
}
