package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitforja/solped/internal/solped/engine"
	"github.com/bitforja/solped/internal/solped/entity"
	"gorm.io/gorm"
)

// RequisitionRepository persists requisitions and their children. Every
// multi-row mutation runs as one transaction: partial state is never
// observable.
type RequisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) *RequisitionRepository {
	return &RequisitionRepository{db: db}
}

// FindAll lists requisitions with optional filters. scopeUserID, when set,
// restricts results to that creator (requester visibility rule).
func (r *RequisitionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string, scopeUserID string) ([]entity.Requisition, int64, error) {
	var items []entity.Requisition
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Requisition{})

	if scopeUserID != "" {
		query = query.Where("created_by_id = ?", scopeUserID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := filters["priority"]; priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if areaID := filters["area_id"]; areaID != "" {
		query = query.Where("area_id = ?", areaID)
	}
	if createdBy := filters["created_by_id"]; createdBy != "" {
		query = query.Where("created_by_id = ?", createdBy)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("id ILIKE ? OR work_order ILIKE ? OR justification ILIKE ? OR supplier ILIKE ?",
			like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("CreatedBy").
		Preload("Area").
		Preload("Items").
		Preload("Items.Unit").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads a requisition with its creator, items and full history.
func (r *RequisitionRepository) FindByID(ctx context.Context, id string) (*entity.Requisition, error) {
	var req entity.Requisition
	err := r.db.WithContext(ctx).
		Preload("CreatedBy").
		Preload("Area").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Items.Unit").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("History.User").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create persists the requisition, its items and its first history record as
// one atomic unit (gorm creates the associations inside a single
// transaction).
func (r *RequisitionRepository) Create(ctx context.Context, req *entity.Requisition) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// UpdateStatus moves a requisition from fromStatus to toStatus and appends
// the history record atomically. The UPDATE is conditioned on the expected
// previous status: if another writer got there first, RowsAffected is zero
// and the caller receives Conflict (or NotFound if the row is gone).
func (r *RequisitionRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, rejectionReason *string, record *entity.HistoryRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Requisition{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Updates(map[string]interface{}{
				"status":           toStatus,
				"rejection_reason": rejectionReason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrConflict(tx, id)
		}
		return tx.Create(record).Error
	})
}

// missingOrConflict disambiguates a conditional write that hit zero rows: the
// requisition is either gone or no longer in the status the caller evaluated.
func missingOrConflict(tx *gorm.DB, id string) error {
	var count int64
	if err := tx.Model(&entity.Requisition{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return engine.ErrNotFound
	}
	return engine.ErrConflict
}

// UpdateFields applies a column patch, conditioned on the status the edit
// guard evaluated. A concurrent transition makes the patch miss its row and
// the caller receives Conflict instead of writing onto the wrong stage.
func (r *RequisitionRepository) UpdateFields(ctx context.Context, id, fromStatus string, patch map[string]interface{}) error {
	if len(patch) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&entity.Requisition{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missingOrConflict(r.db.WithContext(ctx), id)
	}
	return nil
}

// ReplaceItems swaps the whole item list in one transaction. Items are never
// patched individually. The guard row update locks the requisition and
// verifies it is still in the status the edit guard evaluated.
func (r *RequisitionRepository) ReplaceItems(ctx context.Context, id, fromStatus string, items []entity.RequisitionItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Requisition{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrConflict(tx, id)
		}
		if err := tx.Where("requisition_id = ?", id).Delete(&entity.RequisitionItem{}).Error; err != nil {
			return err
		}
		return tx.Create(&items).Error
	})
}

// Delete purges the requisition and every child row, conditioned on the
// status the deletion rule evaluated. No audit trail survives a delete.
func (r *RequisitionRepository) Delete(ctx context.Context, id, fromStatus string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row and verify the status before touching children.
		res := tx.Model(&entity.Requisition{}).
			Where("id = ? AND status = ?", id, fromStatus).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return missingOrConflict(tx, id)
		}
		for _, child := range []interface{}{
			&entity.RequisitionItem{},
			&entity.HistoryRecord{},
			&entity.Notification{},
			&entity.Comment{},
			&entity.Todo{},
			&entity.Attachment{},
		} {
			if err := tx.Where("requisition_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&entity.Requisition{}).Error
	})
}

// CountByStatus returns requisition counts per status, optionally scoped to
// one creator.
func (r *RequisitionRepository) CountByStatus(ctx context.Context, scopeUserID string) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	query := r.db.WithContext(ctx).Model(&entity.Requisition{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if scopeUserID != "" {
		query = query.Where("created_by_id = ?", scopeUserID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(entity.AllStatuses))
	for _, status := range entity.AllStatuses {
		counts[status] = 0
	}
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}
