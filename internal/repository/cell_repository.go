package repository

import (
	"context"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CellRepository struct {
	db *gorm.DB
}

func NewCellRepository(db *gorm.DB) *CellRepository {
	return &CellRepository{db: db}
}

func (r *CellRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Cell, error) {
	var cell entity.Cell
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&cell).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &cell, nil
}

func (r *CellRepository) ListActive(ctx context.Context, tenantID string) ([]entity.Cell, error) {
	var cells []entity.Cell
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = true AND deleted_at IS NULL", tenantID).
		Order("sequence ASC").
		Find(&cells).Error
	return cells, err
}

// CountInProgress returns the cell's current WIP: operations occupying the
// cell in the in_progress state.
func (r *CellRepository) CountInProgress(ctx context.Context, tenantID, cellID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Operation{}).
		Where("tenant_id = ? AND cell_id = ? AND status = ?", tenantID, cellID, entity.OpStatusInProgress).
		Count(&count).Error
	return int(count), err
}

// CountInProgressGrouped returns the in_progress operation count for every
// occupied cell of the tenant in a single grouped query. Cells with no
// in_progress operations are absent from the map.
func (r *CellRepository) CountInProgressGrouped(ctx context.Context, tenantID string) (map[string]int, error) {
	var rows []struct {
		CellID string
		Count  int
	}
	err := r.db.WithContext(ctx).Model(&entity.Operation{}).
		Select("cell_id, COUNT(*) AS count").
		Where("tenant_id = ? AND status = ?", tenantID, entity.OpStatusInProgress).
		Group("cell_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.CellID] = row.Count
	}
	return counts, nil
}

// FindByIDLocked loads the cell under a FOR UPDATE row lock. Must be called
// inside a transaction; the lock serializes concurrent admissions so the WIP
// count read afterwards cannot go stale before the status write commits.
func (r *CellRepository) FindByIDLocked(tx *gorm.DB, tenantID, id string) (*entity.Cell, error) {
	var cell entity.Cell
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", id, tenantID).
		First(&cell).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &cell, nil
}
