// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"fmt"
)

// ValidationError reports a rejected input with enough structure for the
// caller to render field-level feedback.
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Constraint)
}

// NewValidation builds a ValidationError for a single offending field.
func NewValidation(field, constraint string) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint}
}

// NotFoundError identifies a missing cell, operation or scrap reason.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// CapacityExceededError is returned when a blocking WIP limit rejects an
// operation start. Advisory warnings do not use this type.
type CapacityExceededError struct {
	CellID     string
	CurrentWIP int
	Limit      int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("cell %s at WIP limit (%d/%d)", e.CellID, e.CurrentWIP, e.Limit)
}

// ConcurrencyConflictError reports a lost race on the admission transaction
// after the automatic retry was spent.
type ConcurrencyConflictError struct {
	OperationID string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent admission conflict starting operation %s", e.OperationID)
}
