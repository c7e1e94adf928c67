package entity

import (
	"time"
)

// Issue severity
const (
	IssueSeverityLow      = "low"
	IssueSeverityMedium   = "medium"
	IssueSeverityHigh     = "high"
	IssueSeverityCritical = "critical"
)

// Issue status
const (
	IssueStatusOpen     = "open"
	IssueStatusInReview = "in_review"
	IssueStatusResolved = "resolved"
	IssueStatusClosed   = "closed"
	IssueStatusWontFix  = "wont_fix"
)

// Issue is a quality problem raised against an operation. Created and
// worked elsewhere; read here for the composite quality score.
type Issue struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	TenantID    string    `json:"tenant_id" gorm:"type:uuid;not null;index"`
	OperationID string    `json:"operation_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"size:256"`
	Severity    string    `json:"severity" gorm:"size:16;not null;default:medium"`
	Status      string    `json:"status" gorm:"size:20;not null;default:open;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Issue) TableName() string {
	return "issues"
}

// Resolved reports whether the issue reached a terminal resolved state.
func (i *Issue) Resolved() bool {
	return i.Status == IssueStatusResolved || i.Status == IssueStatusClosed
}
