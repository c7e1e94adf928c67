package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// CapacityCheck is the admission verdict for adding work to a cell.
// Limit is nil for unconstrained cells.
type CapacityCheck struct {
	Allowed    bool   `json:"allowed"`
	Warning    bool   `json:"warning"`
	CurrentWIP int    `json:"current_wip"`
	Limit      *int   `json:"limit"`
	Message    string `json:"message"`
}

// CapacityService answers whether a cell has room for more work.
type CapacityService struct {
	cellRepo *repository.CellRepository
}

func NewCapacityService(cellRepo *repository.CellRepository) *CapacityService {
	return &CapacityService{cellRepo: cellRepo}
}

// evaluateCapacity derives the admission verdict from a cell's configuration
// and its WIP count at the moment of the check. Pure; callers decide whether
// the count was read under a lock.
func evaluateCapacity(cell *entity.Cell, currentWIP, delta int) CapacityCheck {
	check := CapacityCheck{
		Allowed:    true,
		CurrentWIP: currentWIP,
		Limit:      cell.WIPLimit,
	}
	if cell.WIPLimit == nil {
		check.Message = fmt.Sprintf("cell %s has no WIP limit", cell.Name)
		return check
	}

	limit := *cell.WIPLimit
	projected := currentWIP + delta

	if projected > limit {
		check.Warning = true
		if cell.EnforceLimit {
			check.Allowed = false
			if limit == 0 {
				check.Message = fmt.Sprintf("cell %s is closed to new work", cell.Name)
			} else {
				check.Message = fmt.Sprintf("cell %s is at its WIP limit (%d/%d)", cell.Name, currentWIP, limit)
			}
		} else {
			check.Message = fmt.Sprintf("cell %s would exceed its WIP limit (%d/%d), limit is advisory", cell.Name, currentWIP, limit)
		}
		return check
	}

	if warn := cell.EffectiveWarningThreshold(); warn != nil && projected >= *warn {
		check.Warning = true
		check.Message = fmt.Sprintf("cell %s is approaching its WIP limit (%d/%d)", cell.Name, projected, limit)
		return check
	}

	check.Message = fmt.Sprintf("cell %s has capacity (%d/%d)", cell.Name, projected, limit)
	return check
}

// CheckCapacity is the advisory form of the admission check: a pure read
// with no lock and no side effects. Starting an operation re-runs the same
// verdict inside the admission transaction.
func (s *CapacityService) CheckCapacity(ctx context.Context, tenantID, cellID string, delta int) (*CapacityCheck, error) {
	if delta <= 0 {
		delta = 1
	}
	cell, err := s.cellRepo.FindByID(ctx, tenantID, cellID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperr.NotFoundError{Resource: "cell", ID: cellID}
		}
		return nil, fmt.Errorf("load cell: %w", err)
	}
	wip, err := s.cellRepo.CountInProgress(ctx, tenantID, cellID)
	if err != nil {
		return nil, fmt.Errorf("count wip: %w", err)
	}
	check := evaluateCapacity(cell, wip, delta)
	return &check, nil
}

// CellCapacity is the dashboard read model: a cell plus its live verdict
// for one more operation.
type CellCapacity struct {
	Cell     entity.Cell   `json:"cell"`
	Capacity CapacityCheck `json:"capacity"`
}

// ListCells returns all active cells with their current occupancy. A single
// grouped count serves every cell.
func (s *CapacityService) ListCells(ctx context.Context, tenantID string) ([]CellCapacity, error) {
	cells, err := s.cellRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list cells: %w", err)
	}
	counts, err := s.cellRepo.CountInProgressGrouped(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count wip: %w", err)
	}
	result := make([]CellCapacity, 0, len(cells))
	for i := range cells {
		result = append(result, CellCapacity{
			Cell:     cells[i],
			Capacity: evaluateCapacity(&cells[i], counts[cells[i].ID], 1),
		})
	}
	return result, nil
}

// isRetryableTxError reports whether the admission transaction lost a race
// it may immediately retry: a serialization failure or deadlock.
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}
