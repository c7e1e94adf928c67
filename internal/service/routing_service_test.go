package service

import (
	"testing"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
)

func TestComputeProgressEmpty(t *testing.T) {
	if got := ComputeProgress(nil); got != 0 {
		t.Errorf("no routing should report 0, got %d", got)
	}
	steps := []entity.RoutingStep{{OperationCount: 0}, {OperationCount: 0}}
	if got := ComputeProgress(steps); got != 0 {
		t.Errorf("zero-total routing should report 0, got %d", got)
	}
}

func TestComputeProgressComplete(t *testing.T) {
	steps := []entity.RoutingStep{
		{OperationCount: 3, CompletedOperations: 3},
		{OperationCount: 2, CompletedOperations: 2},
	}
	if got := ComputeProgress(steps); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
}

func TestComputeProgressRounds(t *testing.T) {
	// 1 of 3 complete: 33.33 rounds to 33; 2 of 3: 66.67 rounds to 67.
	steps := []entity.RoutingStep{{OperationCount: 3, CompletedOperations: 1}}
	if got := ComputeProgress(steps); got != 33 {
		t.Errorf("expected 33, got %d", got)
	}
	steps[0].CompletedOperations = 2
	if got := ComputeProgress(steps); got != 67 {
		t.Errorf("expected 67, got %d", got)
	}
}

func TestComputeProgressIdempotent(t *testing.T) {
	steps := []entity.RoutingStep{
		{OperationCount: 4, CompletedOperations: 1},
		{OperationCount: 6, CompletedOperations: 3},
	}
	first := ComputeProgress(steps)
	for i := 0; i < 10; i++ {
		if got := ComputeProgress(steps); got != first {
			t.Fatalf("progress changed between identical calls: %d != %d", got, first)
		}
	}
	if first < 0 || first > 100 {
		t.Errorf("progress out of range: %d", first)
	}
}

func TestStepStatus(t *testing.T) {
	cases := []struct {
		completed, count int
		want             string
	}{
		{0, 5, entity.StepStatusNotStarted},
		{2, 5, entity.StepStatusInProgress},
		{5, 5, entity.StepStatusCompleted},
		{0, 0, entity.StepStatusNotStarted},
	}
	for _, tc := range cases {
		if got := stepStatus(tc.completed, tc.count); got != tc.want {
			t.Errorf("stepStatus(%d, %d) = %s, want %s", tc.completed, tc.count, got, tc.want)
		}
	}
}
