package entity

import (
	"time"
)

// ProductionQuantityRecord is one append-only ledger entry against an
// operation. Rows are never updated or deleted; corrections are new
// compensating entries. Invariant: Produced = Good + Scrap + Rework.
type ProductionQuantityRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID      string    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	OperationID   string    `json:"operation_id" gorm:"type:uuid;not null;index"`
	Produced      int       `json:"quantity_produced" gorm:"column:quantity_produced;not null"`
	Good          int       `json:"quantity_good" gorm:"column:quantity_good;not null"`
	Scrap         int       `json:"quantity_scrap" gorm:"column:quantity_scrap;not null;default:0"`
	Rework        int       `json:"quantity_rework" gorm:"column:quantity_rework;not null;default:0"`
	ScrapReasonID *string   `json:"scrap_reason_id" gorm:"type:uuid"`
	RecordedBy    string    `json:"recorded_by" gorm:"size:64;not null"`
	RecordedAt    time.Time `json:"recorded_at" gorm:"not null;index"`
	CreatedAt     time.Time `json:"created_at"`

	ScrapReason *ScrapReason `json:"scrap_reason,omitempty" gorm:"foreignKey:ScrapReasonID"`
}

func (ProductionQuantityRecord) TableName() string {
	return "operation_quantities"
}

// ScrapReason is reference data; this service only reads it.
type ScrapReason struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID    string    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Code        string    `json:"code" gorm:"size:32;not null"`
	Description string    `json:"description" gorm:"size:256"`
	Category    string    `json:"category" gorm:"size:64;index"`
	Active      bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ScrapReason) TableName() string {
	return "scrap_reasons"
}
