package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/events"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductionService is the quantity reconciliation engine: it appends
// immutable ledger entries against an operation and drives the shortfall
// disposition. State is never stored between calls; the running good total
// is recomputed from the ledger every time.
type ProductionService struct {
	qtyRepo    *repository.QuantityRepository
	opRepo     *repository.OperationRepository
	reasonRepo *repository.ScrapReasonRepository
	quality    *QualityService
	dispatcher events.Dispatcher
	logger     *zap.Logger

	// opLocks serializes the read-decide-write sequence per operation.
	// Different operations never contend.
	opLocks sync.Map
}

func NewProductionService(qtyRepo *repository.QuantityRepository, opRepo *repository.OperationRepository, reasonRepo *repository.ScrapReasonRepository, quality *QualityService, dispatcher events.Dispatcher, logger *zap.Logger) *ProductionService {
	return &ProductionService{
		qtyRepo:    qtyRepo,
		opRepo:     opRepo,
		reasonRepo: reasonRepo,
		quality:    quality,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *ProductionService) lockFor(operationID string) *sync.Mutex {
	mu, _ := s.opLocks.LoadOrStore(operationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ledgerPlan is the decided shape of the next ledger entry.
type ledgerPlan struct {
	Produced       int
	Good           int
	Scrap          int
	Rework         int
	ScrapReasonID  *string
	TargetAchieved bool
}

// planEntry decides the ledger entry for a report of good quantity against
// the running total. Pure: the whole shortfall state machine lives here.
func planEntry(planned, priorGood, quantityGood int, d Disposition) (ledgerPlan, error) {
	if quantityGood < 0 {
		return ledgerPlan{}, apperr.NewValidation("quantity_good", "must not be negative")
	}

	remaining := planned - priorGood
	if remaining < 0 {
		remaining = 0
	}

	// At or over the remaining balance: a plain good-quantity entry, no
	// disposition needed even if one was supplied.
	if quantityGood >= remaining {
		return ledgerPlan{
			Produced:       quantityGood,
			Good:           quantityGood,
			TargetAchieved: true,
		}, nil
	}

	shortfall := remaining - quantityGood
	switch d.Kind() {
	case dispositionContinuing:
		// Shortfall stays outstanding; the ledger records only what was
		// actually made good.
		return ledgerPlan{Produced: quantityGood, Good: quantityGood}, nil
	case dispositionRework:
		return ledgerPlan{
			Produced: quantityGood + shortfall,
			Good:     quantityGood,
			Rework:   shortfall,
		}, nil
	case dispositionScrap:
		reasonID := d.ReasonID()
		if reasonID == "" {
			return ledgerPlan{}, apperr.NewValidation("scrap_reason_id", "required when disposition is scrap")
		}
		return ledgerPlan{
			Produced:      quantityGood + shortfall,
			Good:          quantityGood,
			Scrap:         shortfall,
			ScrapReasonID: &reasonID,
		}, nil
	case "":
		return ledgerPlan{}, apperr.NewValidation("disposition",
			fmt.Sprintf("required: %d short of planned quantity", shortfall))
	default:
		return ledgerPlan{}, apperr.NewValidation("disposition", "must be one of continuing, rework, scrap")
	}
}

// validateRecord enforces the ledger invariants before commit.
func validateRecord(rec *entity.ProductionQuantityRecord) error {
	if rec.Good < 0 || rec.Scrap < 0 || rec.Rework < 0 || rec.Produced < 0 {
		return apperr.NewValidation("quantity", "quantities must not be negative")
	}
	if rec.Produced != rec.Good+rec.Scrap+rec.Rework {
		return apperr.NewValidation("quantity_produced", "must equal good + scrap + rework")
	}
	if rec.Scrap > 0 && rec.ScrapReasonID == nil {
		return apperr.NewValidation("scrap_reason_id", "required when scrap quantity is positive")
	}
	return nil
}

// RecordResult returns the appended entry with the reconciliation state
// after the write.
type RecordResult struct {
	Record         *entity.ProductionQuantityRecord `json:"record"`
	CumulativeGood int                              `json:"cumulative_good"`
	Remaining      int                              `json:"remaining"`
	TargetAchieved bool                             `json:"target_achieved"`
}

// RecordProduction appends one ledger entry for the operation. Calls for the
// same operation serialize around the read-decide-write sequence; duplicate
// submissions of the same operator action must be deduplicated by the caller.
func (s *ProductionService) RecordProduction(ctx context.Context, tenantID, operationID string, quantityGood int, d Disposition, userID string) (*RecordResult, error) {
	op, err := s.opRepo.FindByID(ctx, tenantID, operationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperr.NotFoundError{Resource: "operation", ID: operationID}
		}
		return nil, fmt.Errorf("load operation: %w", err)
	}
	if op.Status != entity.OpStatusInProgress {
		return nil, apperr.NewValidation("status", fmt.Sprintf("cannot record production on a %s operation", op.Status))
	}

	if d.Kind() == dispositionScrap {
		reason, err := s.reasonRepo.FindByID(ctx, tenantID, d.ReasonID())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &apperr.NotFoundError{Resource: "scrap reason", ID: d.ReasonID()}
			}
			return nil, fmt.Errorf("load scrap reason: %w", err)
		}
		if !reason.Active {
			return nil, apperr.NewValidation("scrap_reason_id", "scrap reason is inactive")
		}
	}

	mu := s.lockFor(operationID)
	mu.Lock()
	defer mu.Unlock()

	priorGood, err := s.qtyRepo.SumGood(ctx, tenantID, operationID)
	if err != nil {
		return nil, fmt.Errorf("sum prior good: %w", err)
	}

	plan, err := planEntry(op.PlannedQuantity, priorGood, quantityGood, d)
	if err != nil {
		return nil, err
	}

	rec := &entity.ProductionQuantityRecord{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		OperationID:   operationID,
		Produced:      plan.Produced,
		Good:          plan.Good,
		Scrap:         plan.Scrap,
		Rework:        plan.Rework,
		ScrapReasonID: plan.ScrapReasonID,
		RecordedBy:    userID,
		RecordedAt:    time.Now(),
	}
	if err := validateRecord(rec); err != nil {
		return nil, err
	}
	if err := s.qtyRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	cumulative := priorGood + rec.Good
	remaining := op.PlannedQuantity - cumulative
	if remaining < 0 {
		remaining = 0
	}

	s.quality.InvalidateSummary(ctx, tenantID)

	s.dispatcher.Dispatch(events.New(events.TypeQuantityReported, tenantID, map[string]any{
		"operation_id":      operationID,
		"quantity_produced": rec.Produced,
		"quantity_good":     rec.Good,
		"quantity_scrap":    rec.Scrap,
		"quantity_rework":   rec.Rework,
		"cumulative_good":   cumulative,
		"target_achieved":   plan.TargetAchieved,
	}).WithContext("user_id", userID))

	if rec.Scrap > 0 {
		s.dispatcher.Dispatch(events.New(events.TypeScrapRecorded, tenantID, map[string]any{
			"operation_id":    operationID,
			"quantity_scrap":  rec.Scrap,
			"scrap_reason_id": *rec.ScrapReasonID,
		}).WithContext("user_id", userID))
	}

	s.logger.Info("production recorded",
		zap.String("operation_id", operationID),
		zap.Int("good", rec.Good),
		zap.Int("scrap", rec.Scrap),
		zap.Int("rework", rec.Rework),
		zap.Bool("target_achieved", plan.TargetAchieved),
	)

	return &RecordResult{
		Record:         rec,
		CumulativeGood: cumulative,
		Remaining:      remaining,
		TargetAchieved: plan.TargetAchieved,
	}, nil
}

// ListQuantities returns the full ledger for an operation, oldest first.
func (s *ProductionService) ListQuantities(ctx context.Context, tenantID, operationID string) ([]entity.ProductionQuantityRecord, error) {
	if _, err := s.opRepo.FindByID(ctx, tenantID, operationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &apperr.NotFoundError{Resource: "operation", ID: operationID}
		}
		return nil, err
	}
	return s.qtyRepo.ListByOperation(ctx, tenantID, operationID)
}

// ListScrapReasons returns the active reason catalog for operator UIs.
func (s *ProductionService) ListScrapReasons(ctx context.Context, tenantID string) ([]entity.ScrapReason, error) {
	return s.reasonRepo.ListActive(ctx, tenantID)
}
