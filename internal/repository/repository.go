package repository

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// wrapNotFound converts gorm's sentinel so callers never import gorm for
// error checks.
func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Repositories bundles all repositories over a shared connection.
type Repositories struct {
	Cell        *CellRepository
	Operation   *OperationRepository
	Quantity    *QuantityRepository
	ScrapReason *ScrapReasonRepository
	Issue       *IssueRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Cell:        NewCellRepository(db),
		Operation:   NewOperationRepository(db),
		Quantity:    NewQuantityRepository(db),
		ScrapReason: NewScrapReasonRepository(db),
		Issue:       NewIssueRepository(db),
	}
}
