package service

import (
	"errors"
	"testing"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/model/entity"
)

func TestPlanEntryNoShortfall(t *testing.T) {
	// planned=10 priorGood=7, report 3: remaining exactly met, no
	// disposition needed.
	plan, err := planEntry(10, 7, 3, Disposition{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Produced != 3 || plan.Good != 3 || plan.Scrap != 0 || plan.Rework != 0 {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if !plan.TargetAchieved {
		t.Error("expected target achieved")
	}
}

func TestPlanEntryOverproduction(t *testing.T) {
	plan, err := planEntry(10, 7, 5, Disposition{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Produced != 5 || plan.Good != 5 {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if !plan.TargetAchieved {
		t.Error("overproduction still achieves the target")
	}
}

func TestPlanEntryScrapShortfall(t *testing.T) {
	// planned=10 priorGood=7, report 2 with scrap: shortfall of 1 scrapped.
	plan, err := planEntry(10, 7, 2, Scrap("r1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Produced != 3 || plan.Good != 2 || plan.Scrap != 1 || plan.Rework != 0 {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if plan.ScrapReasonID == nil || *plan.ScrapReasonID != "r1" {
		t.Error("scrap reason not carried onto the entry")
	}
	if plan.TargetAchieved {
		t.Error("cumulative good 9 of 10 must not achieve the target")
	}
}

func TestPlanEntryReworkShortfall(t *testing.T) {
	plan, err := planEntry(10, 0, 6, Rework())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Produced != 10 || plan.Good != 6 || plan.Rework != 4 || plan.Scrap != 0 {
		t.Errorf("unexpected plan: %+v", plan)
	}
}

func TestPlanEntryContinuingShortfall(t *testing.T) {
	// Continuing records only the good quantity; the shortfall stays
	// outstanding for a later report.
	plan, err := planEntry(10, 0, 4, Continuing())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Produced != 4 || plan.Good != 4 || plan.Scrap != 0 || plan.Rework != 0 {
		t.Errorf("unexpected plan: %+v", plan)
	}
	if plan.TargetAchieved {
		t.Error("continuing shortfall must not achieve the target")
	}
}

func TestPlanEntryShortfallRequiresDisposition(t *testing.T) {
	_, err := planEntry(10, 7, 2, Disposition{})
	var vErr *apperr.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "disposition" {
		t.Errorf("expected disposition field, got %s", vErr.Field)
	}
}

func TestPlanEntryNegativeQuantity(t *testing.T) {
	_, err := planEntry(10, 0, -1, Continuing())
	var vErr *apperr.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPlanEntrySumInvariant(t *testing.T) {
	dispositions := []Disposition{Continuing(), Rework(), Scrap("r1")}
	for _, d := range dispositions {
		for _, good := range []int{0, 1, 5, 9, 10, 15} {
			plan, err := planEntry(10, 0, good, d)
			if err != nil {
				t.Fatalf("disposition %s good %d: %v", d.Kind(), good, err)
			}
			if plan.Produced != plan.Good+plan.Scrap+plan.Rework {
				t.Errorf("disposition %s good %d: sum invariant broken: %+v", d.Kind(), good, plan)
			}
		}
	}
}

func TestParseDispositionScrapNeedsReason(t *testing.T) {
	if _, err := ParseDisposition("scrap", ""); err == nil {
		t.Error("scrap without a reason must be rejected")
	}
	d, err := ParseDisposition("scrap", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Kind() != "scrap" || d.ReasonID() != "r1" {
		t.Errorf("unexpected disposition: %s/%s", d.Kind(), d.ReasonID())
	}
}

func TestParseDispositionUnknown(t *testing.T) {
	if _, err := ParseDisposition("melt", ""); err == nil {
		t.Error("unknown disposition must be rejected")
	}
}

func TestValidateRecordScrapWithoutReason(t *testing.T) {
	rec := &entity.ProductionQuantityRecord{Produced: 5, Good: 0, Scrap: 5}
	err := validateRecord(rec)
	var vErr *apperr.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "scrap_reason_id" {
		t.Errorf("expected scrap_reason_id field, got %s", vErr.Field)
	}
}

func TestValidateRecordSumMismatch(t *testing.T) {
	rec := &entity.ProductionQuantityRecord{Produced: 5, Good: 2, Scrap: 1, Rework: 1}
	if err := validateRecord(rec); err == nil {
		t.Error("sum mismatch must be rejected")
	}
}
