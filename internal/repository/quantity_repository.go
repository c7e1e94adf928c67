package repository

import (
	"context"
	"time"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"gorm.io/gorm"
)

type QuantityRepository struct {
	db *gorm.DB
}

func NewQuantityRepository(db *gorm.DB) *QuantityRepository {
	return &QuantityRepository{db: db}
}

// Create appends a ledger entry. There is deliberately no Update or Delete
// on this repository; corrections are compensating entries.
func (r *QuantityRepository) Create(ctx context.Context, rec *entity.ProductionQuantityRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// SumGood returns the cumulative good quantity recorded for an operation.
func (r *QuantityRepository) SumGood(ctx context.Context, tenantID, operationID string) (int, error) {
	var result struct{ Total int }
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(quantity_good), 0) AS total
		FROM operation_quantities
		WHERE tenant_id = ? AND operation_id = ?
	`, tenantID, operationID).Scan(&result).Error
	return result.Total, err
}

func (r *QuantityRepository) ListByOperation(ctx context.Context, tenantID, operationID string) ([]entity.ProductionQuantityRecord, error) {
	var records []entity.ProductionQuantityRecord
	err := r.db.WithContext(ctx).
		Preload("ScrapReason").
		Where("tenant_id = ? AND operation_id = ?", tenantID, operationID).
		Order("recorded_at ASC").
		Find(&records).Error
	return records, err
}

// LedgerRow is a ledger entry joined with the dimensions analytics groups
// by: scrap reason, cell and part material.
type LedgerRow struct {
	OperationID    string    `json:"operation_id"`
	Produced       int       `json:"quantity_produced"`
	Good           int       `json:"quantity_good"`
	Scrap          int       `json:"quantity_scrap"`
	Rework         int       `json:"quantity_rework"`
	ScrapReasonID  *string   `json:"scrap_reason_id"`
	ReasonCode     string    `json:"reason_code"`
	ReasonCategory string    `json:"reason_category"`
	CellID         string    `json:"cell_id"`
	CellName       string    `json:"cell_name"`
	Material       string    `json:"material"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// ListWindow returns all ledger rows recorded at or after the cutoff,
// flattened with their grouping dimensions.
func (r *QuantityRepository) ListWindow(ctx context.Context, tenantID string, since time.Time) ([]LedgerRow, error) {
	var rows []LedgerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT q.operation_id,
		       q.quantity_produced AS produced,
		       q.quantity_good AS good,
		       q.quantity_scrap AS scrap,
		       q.quantity_rework AS rework,
		       q.scrap_reason_id,
		       COALESCE(sr.code, '') AS reason_code,
		       COALESCE(sr.category, '') AS reason_category,
		       o.cell_id,
		       COALESCE(c.name, '') AS cell_name,
		       COALESCE(p.material, '') AS material,
		       q.recorded_at
		FROM operation_quantities q
		JOIN operations o ON o.id = q.operation_id
		LEFT JOIN cells c ON c.id = o.cell_id
		LEFT JOIN parts p ON p.id = o.part_id
		LEFT JOIN scrap_reasons sr ON sr.id = q.scrap_reason_id
		WHERE q.tenant_id = ? AND q.recorded_at >= ?
		ORDER BY q.recorded_at ASC
	`, tenantID, since).Scan(&rows).Error
	return rows, err
}
