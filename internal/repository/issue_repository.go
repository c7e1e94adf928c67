package repository

import (
	"context"
	"time"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"gorm.io/gorm"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// ListWindow returns issues created at or after the cutoff.
func (r *IssueRepository) ListWindow(ctx context.Context, tenantID string, since time.Time) ([]entity.Issue, error) {
	var issues []entity.Issue
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND created_at >= ?", tenantID, since).
		Order("created_at ASC").
		Find(&issues).Error
	return issues, err
}
