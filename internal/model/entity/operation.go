package entity

import (
	"time"
)

// Operation status
const (
	OpStatusNotStarted = "not_started"
	OpStatusInProgress = "in_progress"
	OpStatusCompleted  = "completed"
	OpStatusOnHold     = "on_hold"
)

// Operation is one routed step of work for a part, owned by the cell it
// currently occupies. Status moves to in_progress only through the
// capacity-checked start path.
type Operation struct {
	ID              string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID        string     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	CellID          string     `json:"cell_id" gorm:"type:uuid;not null;index"`
	PartID          string     `json:"part_id" gorm:"type:uuid;not null;index"`
	Name            string     `json:"name" gorm:"size:128"`
	Status          string     `json:"status" gorm:"size:20;not null;default:not_started;index"`
	EstimatedTime   int        `json:"estimated_time" gorm:"default:0"` // minutes
	ActualTime      int        `json:"actual_time" gorm:"default:0"`
	PlannedQuantity int        `json:"planned_quantity" gorm:"not null;default:0"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Quantities []ProductionQuantityRecord `json:"quantities,omitempty" gorm:"foreignKey:OperationID"`
}

func (Operation) TableName() string {
	return "operations"
}

// Part carries the planned quantity that its operations inherit.
type Part struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID   string    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	JobID      string    `json:"job_id" gorm:"type:uuid;not null;index"`
	PartNumber string    `json:"part_number" gorm:"size:64;not null"`
	Material   string    `json:"material" gorm:"size:64"`
	Quantity   int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Part) TableName() string {
	return "parts"
}

// Job groups parts for routing progress. Created and mutated externally;
// read here only to derive the routing view.
type Job struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID  string    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	JobNumber string    `json:"job_number" gorm:"size:64;not null"`
	Status    string    `json:"status" gorm:"size:20;not null;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string {
	return "jobs"
}

// RoutingStep status
const (
	StepStatusNotStarted = "not_started"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
)

// RoutingStep is derived from operations grouped by cell, never persisted.
type RoutingStep struct {
	CellID              string `json:"cell_id"`
	CellName            string `json:"cell_name"`
	Sequence            int    `json:"sequence"`
	OperationCount      int    `json:"operation_count"`
	CompletedOperations int    `json:"completed_operations"`
	PartsInCell         int    `json:"parts_in_cell"`
	Status              string `json:"status"`
}
