package service

import (
	"testing"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
)

func intPtr(v int) *int { return &v }

func testCell(limit, warn *int, enforce bool) *entity.Cell {
	return &entity.Cell{
		ID:               "cell-1",
		Name:             "Laser",
		WIPLimit:         limit,
		WarningThreshold: warn,
		EnforceLimit:     enforce,
	}
}

func TestEvaluateCapacityUnconstrained(t *testing.T) {
	check := evaluateCapacity(testCell(nil, nil, true), 42, 1)
	if !check.Allowed || check.Warning {
		t.Errorf("expected allowed without warning, got allowed=%v warning=%v", check.Allowed, check.Warning)
	}
	if check.Limit != nil {
		t.Errorf("expected nil limit, got %v", *check.Limit)
	}
}

func TestEvaluateCapacityWarningThreshold(t *testing.T) {
	// limit=5 warn=4, WIP=4: projected 5 is within the limit but at the
	// threshold, so the start is allowed with a warning.
	check := evaluateCapacity(testCell(intPtr(5), intPtr(4), true), 4, 1)
	if !check.Allowed {
		t.Errorf("expected allowed, got blocked: %s", check.Message)
	}
	if !check.Warning {
		t.Error("expected warning at threshold")
	}
}

func TestEvaluateCapacityBlockedAtLimit(t *testing.T) {
	check := evaluateCapacity(testCell(intPtr(5), intPtr(4), true), 5, 1)
	if check.Allowed {
		t.Errorf("expected blocked at limit, got allowed: %s", check.Message)
	}
	if !check.Warning {
		t.Error("expected warning when blocked")
	}
	if check.CurrentWIP != 5 {
		t.Errorf("expected current wip 5, got %d", check.CurrentWIP)
	}
}

func TestEvaluateCapacityAdvisoryOverLimit(t *testing.T) {
	// Enforcement off: exceeding the limit warns but does not block.
	check := evaluateCapacity(testCell(intPtr(3), nil, false), 3, 1)
	if !check.Allowed {
		t.Error("advisory limit must not block")
	}
	if !check.Warning {
		t.Error("expected strong warning over advisory limit")
	}
}

func TestEvaluateCapacityClosedCell(t *testing.T) {
	check := evaluateCapacity(testCell(intPtr(0), nil, true), 0, 1)
	if check.Allowed {
		t.Error("a zero limit with enforcement means closed to new work")
	}
}

func TestEvaluateCapacityBelowThreshold(t *testing.T) {
	check := evaluateCapacity(testCell(intPtr(10), intPtr(8), true), 2, 1)
	if !check.Allowed || check.Warning {
		t.Errorf("expected clean allow, got allowed=%v warning=%v", check.Allowed, check.Warning)
	}
}

func TestEvaluateCapacityDefaultThreshold(t *testing.T) {
	// No explicit threshold: defaults to 80% of the limit. limit=10 so
	// warnings begin once projected reaches 8.
	cell := testCell(intPtr(10), nil, true)
	if check := evaluateCapacity(cell, 6, 1); check.Warning {
		t.Errorf("projected 7 should not warn: %s", check.Message)
	}
	if check := evaluateCapacity(cell, 7, 1); !check.Warning {
		t.Error("projected 8 should warn at the default threshold")
	}
}

func TestEvaluateCapacityLargerDelta(t *testing.T) {
	check := evaluateCapacity(testCell(intPtr(5), intPtr(4), true), 2, 4)
	if check.Allowed {
		t.Error("projected 6 of 5 must block when enforced")
	}
}
