package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/events"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OperationService owns operation lifecycle transitions. The transition to
// in_progress is admission-controlled: the capacity check and the status
// write commit as one transaction holding a row lock on the cell, so the
// enforced WIP limit cannot be exceeded by concurrent starts.
type OperationService struct {
	db         *gorm.DB
	opRepo     *repository.OperationRepository
	cellRepo   *repository.CellRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func NewOperationService(db *gorm.DB, opRepo *repository.OperationRepository, cellRepo *repository.CellRepository, dispatcher events.Dispatcher, logger *zap.Logger) *OperationService {
	return &OperationService{
		db:         db,
		opRepo:     opRepo,
		cellRepo:   cellRepo,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *OperationService) GetByID(ctx context.Context, tenantID, id string) (*entity.Operation, error) {
	op, err := s.opRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperr.NotFoundError{Resource: "operation", ID: id}
		}
		return nil, err
	}
	return op, nil
}

func (s *OperationService) List(ctx context.Context, tenantID string, params repository.OpListParams) ([]entity.Operation, int64, error) {
	return s.opRepo.List(ctx, tenantID, params)
}

// StartResult reports the committed transition together with the verdict
// that admitted it. Warning is advisory; the start already succeeded.
type StartResult struct {
	Operation *entity.Operation `json:"operation"`
	Capacity  CapacityCheck     `json:"capacity"`
}

// Start transitions not_started → in_progress through admission control.
// A blocking verdict fails with CapacityExceededError; a lost race is
// retried once before surfacing ConcurrencyConflictError.
func (s *OperationService) Start(ctx context.Context, tenantID, operationID, userID string) (*StartResult, error) {
	return s.admit(ctx, tenantID, operationID, userID, entity.OpStatusNotStarted, events.TypeOperationStarted)
}

// Resume transitions on_hold → in_progress. Re-entering the cell counts
// against its WIP limit again, so the same admission path applies.
func (s *OperationService) Resume(ctx context.Context, tenantID, operationID, userID string) (*StartResult, error) {
	return s.admit(ctx, tenantID, operationID, userID, entity.OpStatusOnHold, events.TypeOperationResumed)
}

func (s *OperationService) admit(ctx context.Context, tenantID, operationID, userID, fromStatus, eventType string) (*StartResult, error) {
	var result *StartResult
	run := func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var op entity.Operation
			if err := tx.Where("id = ? AND tenant_id = ?", operationID, tenantID).First(&op).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &apperr.NotFoundError{Resource: "operation", ID: operationID}
				}
				return fmt.Errorf("load operation: %w", err)
			}
			if op.Status != fromStatus {
				return apperr.NewValidation("status", fmt.Sprintf("operation is %s, expected %s", op.Status, fromStatus))
			}

			// Lock the cell row first: every concurrent admission for this
			// cell serializes here, which keeps the WIP count read below
			// valid until commit.
			cell, err := s.cellRepo.FindByIDLocked(tx, tenantID, op.CellID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return &apperr.NotFoundError{Resource: "cell", ID: op.CellID}
				}
				return fmt.Errorf("lock cell: %w", err)
			}

			var wip int64
			if err := tx.Model(&entity.Operation{}).
				Where("tenant_id = ? AND cell_id = ? AND status = ?", tenantID, op.CellID, entity.OpStatusInProgress).
				Count(&wip).Error; err != nil {
				return fmt.Errorf("count wip: %w", err)
			}

			check := evaluateCapacity(cell, int(wip), 1)
			if !check.Allowed {
				limit := 0
				if cell.WIPLimit != nil {
					limit = *cell.WIPLimit
				}
				return &apperr.CapacityExceededError{CellID: cell.ID, CurrentWIP: int(wip), Limit: limit}
			}

			now := time.Now()
			op.Status = entity.OpStatusInProgress
			if op.StartedAt == nil {
				op.StartedAt = &now
			}
			if err := tx.Save(&op).Error; err != nil {
				return fmt.Errorf("transition operation: %w", err)
			}
			result = &StartResult{Operation: &op, Capacity: check}
			return nil
		})
	}

	err := run()
	if err != nil && isRetryableTxError(err) {
		s.logger.Warn("admission transaction conflict, retrying",
			zap.String("operation_id", operationID),
		)
		err = run()
		if err != nil && isRetryableTxError(err) {
			return nil, &apperr.ConcurrencyConflictError{OperationID: operationID}
		}
	}
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(events.New(eventType, tenantID, map[string]any{
		"operation_id": result.Operation.ID,
		"cell_id":      result.Operation.CellID,
		"part_id":      result.Operation.PartID,
		"status":       result.Operation.Status,
	}).WithContext("user_id", userID))

	if result.Capacity.Warning {
		s.logger.Info("operation admitted with capacity warning",
			zap.String("operation_id", result.Operation.ID),
			zap.String("cell_id", result.Operation.CellID),
			zap.String("message", result.Capacity.Message),
		)
	}
	return result, nil
}

// Pause transitions in_progress → on_hold, releasing the cell slot.
func (s *OperationService) Pause(ctx context.Context, tenantID, operationID, userID string) (*entity.Operation, error) {
	return s.transition(ctx, tenantID, operationID, userID,
		entity.OpStatusInProgress, entity.OpStatusOnHold, events.TypeOperationPaused)
}

// Complete transitions in_progress → completed. The status, finish time and
// actual duration commit in one write; the event fires only after it.
func (s *OperationService) Complete(ctx context.Context, tenantID, operationID, userID string) (*entity.Operation, error) {
	op, err := s.GetByID(ctx, tenantID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status != entity.OpStatusInProgress {
		return nil, apperr.NewValidation("status", fmt.Sprintf("operation is %s, expected %s", op.Status, entity.OpStatusInProgress))
	}
	now := time.Now()
	op.Status = entity.OpStatusCompleted
	op.CompletedAt = &now
	if op.StartedAt != nil {
		op.ActualTime = int(now.Sub(*op.StartedAt).Minutes())
	}
	if err := s.opRepo.Update(ctx, op); err != nil {
		return nil, fmt.Errorf("complete operation: %w", err)
	}
	s.dispatcher.Dispatch(events.New(events.TypeOperationCompleted, tenantID, map[string]any{
		"operation_id": op.ID,
		"cell_id":      op.CellID,
		"part_id":      op.PartID,
		"status":       op.Status,
	}).WithContext("user_id", userID))
	return op, nil
}

func (s *OperationService) transition(ctx context.Context, tenantID, operationID, userID, from, to, eventType string) (*entity.Operation, error) {
	op, err := s.GetByID(ctx, tenantID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status != from {
		return nil, apperr.NewValidation("status", fmt.Sprintf("operation is %s, expected %s", op.Status, from))
	}
	op.Status = to
	if err := s.opRepo.Update(ctx, op); err != nil {
		return nil, fmt.Errorf("update operation: %w", err)
	}
	s.dispatcher.Dispatch(events.New(eventType, tenantID, map[string]any{
		"operation_id": op.ID,
		"cell_id":      op.CellID,
		"part_id":      op.PartID,
		"status":       op.Status,
	}).WithContext("user_id", userID))
	return op, nil
}
