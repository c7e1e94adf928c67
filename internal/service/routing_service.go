package service

import (
	"context"
	"fmt"
	"math"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
)

// RoutingService derives a job's progress through its cell sequence from
// operation counts. All derivation is pure; nothing is stored.
type RoutingService struct {
	opRepo *repository.OperationRepository
}

func NewRoutingService(opRepo *repository.OperationRepository) *RoutingService {
	return &RoutingService{opRepo: opRepo}
}

// RoutingProgress is the routing view for a job.
type RoutingProgress struct {
	Steps      []entity.RoutingStep `json:"steps"`
	Percentage int                  `json:"percentage"`
}

// GetJobRouting builds the per-cell steps and the overall percentage for a
// job. A job with no routed operations reports zero progress, not an error.
func (s *RoutingService) GetJobRouting(ctx context.Context, tenantID, jobID string) (*RoutingProgress, error) {
	steps, err := s.opRepo.RoutingCounts(ctx, tenantID, jobID)
	if err != nil {
		return nil, fmt.Errorf("routing counts: %w", err)
	}
	for i := range steps {
		steps[i].Status = stepStatus(steps[i].CompletedOperations, steps[i].OperationCount)
	}
	return &RoutingProgress{
		Steps:      steps,
		Percentage: ComputeProgress(steps),
	}, nil
}

// ComputeProgress returns the job's completion percentage in [0,100],
// rounded. Zero total operations means no routing is defined: 0, never a
// division by zero.
func ComputeProgress(steps []entity.RoutingStep) int {
	var total, completed int
	for _, step := range steps {
		total += step.OperationCount
		completed += step.CompletedOperations
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func stepStatus(completed, count int) string {
	switch {
	case count > 0 && completed == count:
		return entity.StepStatusCompleted
	case completed > 0:
		return entity.StepStatusInProgress
	default:
		return entity.StepStatusNotStarted
	}
}
