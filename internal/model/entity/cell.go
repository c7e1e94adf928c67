package entity

import (
	"time"
)

// Cell is a capacity-constrained work center on the shop floor.
// A nil WIPLimit means the cell is unconstrained; a limit of 0 means the
// cell is closed to new work while enforcement is on.
type Cell struct {
	ID               string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID         string     `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Name             string     `json:"name" gorm:"size:128;not null"`
	Sequence         int        `json:"sequence" gorm:"not null;default:0"`
	WIPLimit         *int       `json:"wip_limit" gorm:"column:wip_limit"`
	WarningThreshold *int       `json:"warning_threshold"`
	EnforceLimit     bool       `json:"enforce_limit" gorm:"not null;default:false"`
	Active           bool       `json:"active" gorm:"not null;default:true"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"deleted_at" gorm:"index"`
}

func (Cell) TableName() string {
	return "cells"
}

// EffectiveWarningThreshold falls back to 80% of the limit when no explicit
// threshold is configured. Returns nil when the cell has no limit.
func (c *Cell) EffectiveWarningThreshold() *int {
	if c.WIPLimit == nil {
		return nil
	}
	if c.WarningThreshold != nil {
		return c.WarningThreshold
	}
	t := *c.WIPLimit * 8 / 10
	return &t
}
