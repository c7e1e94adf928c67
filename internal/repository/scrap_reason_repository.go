package repository

import (
	"context"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"gorm.io/gorm"
)

type ScrapReasonRepository struct {
	db *gorm.DB
}

func NewScrapReasonRepository(db *gorm.DB) *ScrapReasonRepository {
	return &ScrapReasonRepository{db: db}
}

func (r *ScrapReasonRepository) FindByID(ctx context.Context, tenantID, id string) (*entity.ScrapReason, error) {
	var reason entity.ScrapReason
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&reason).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &reason, nil
}

func (r *ScrapReasonRepository) ListActive(ctx context.Context, tenantID string) ([]entity.ScrapReason, error) {
	var reasons []entity.ScrapReason
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = true", tenantID).
		Order("code ASC").
		Find(&reasons).Error
	return reasons, err
}
