package repository

import (
	"context"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"gorm.io/gorm"
)

type OperationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

func (r *OperationRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.Operation, error) {
	var op entity.Operation
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&op).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &op, nil
}

type OpListParams struct {
	CellID string
	Status string
	Page   int
	Size   int
}

func (r *OperationRepository) List(ctx context.Context, tenantID string, params OpListParams) ([]entity.Operation, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Operation{}).Where("tenant_id = ?", tenantID)
	if params.CellID != "" {
		query = query.Where("cell_id = ?", params.CellID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var ops []entity.Operation
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&ops).Error
	return ops, total, err
}

func (r *OperationRepository) Update(ctx context.Context, op *entity.Operation) error {
	return r.db.WithContext(ctx).Save(op).Error
}

// routingCountRow is the raw scan target for RoutingCounts.
type routingCountRow struct {
	CellID              string
	CellName            string
	Sequence            int
	OperationCount      int
	CompletedOperations int
	PartsInCell         int
}

// RoutingCounts aggregates a job's operations by cell, ordered by the cell's
// routing sequence. Cells with no operations for the job are omitted.
func (r *OperationRepository) RoutingCounts(ctx context.Context, tenantID, jobID string) ([]entity.RoutingStep, error) {
	var rows []routingCountRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS cell_id,
		       c.name AS cell_name,
		       c.sequence AS sequence,
		       COUNT(o.id) AS operation_count,
		       COUNT(o.id) FILTER (WHERE o.status = ?) AS completed_operations,
		       COUNT(DISTINCT o.part_id) FILTER (WHERE o.status = ?) AS parts_in_cell
		FROM operations o
		JOIN cells c ON c.id = o.cell_id
		JOIN parts p ON p.id = o.part_id
		WHERE o.tenant_id = ? AND p.job_id = ?
		GROUP BY c.id, c.name, c.sequence
		ORDER BY c.sequence ASC
	`, entity.OpStatusCompleted, entity.OpStatusInProgress, tenantID, jobID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	steps := make([]entity.RoutingStep, 0, len(rows))
	for _, row := range rows {
		steps = append(steps, entity.RoutingStep{
			CellID:              row.CellID,
			CellName:            row.CellName,
			Sequence:            row.Sequence,
			OperationCount:      row.OperationCount,
			CompletedOperations: row.CompletedOperations,
			PartsInCell:         row.PartsInCell,
		})
	}
	return steps, nil
}
