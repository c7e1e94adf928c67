package service

import (
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/apperr"
)

// Disposition says what happens to a shortfall: keep it outstanding, send
// it to rework, or scrap it against a reason. The zero value means no
// disposition was given; construction goes through the three constructors
// so a scrap disposition cannot exist without its reason.
type Disposition struct {
	kind     string
	reasonID string
}

const (
	dispositionContinuing = "continuing"
	dispositionRework     = "rework"
	dispositionScrap      = "scrap"
)

// Continuing leaves the shortfall outstanding for a later report.
func Continuing() Disposition {
	return Disposition{kind: dispositionContinuing}
}

// Rework routes the shortfall to rework.
func Rework() Disposition {
	return Disposition{kind: dispositionRework}
}

// Scrap writes the shortfall off against a scrap reason.
func Scrap(reasonID string) Disposition {
	return Disposition{kind: dispositionScrap, reasonID: reasonID}
}

// IsZero reports whether no disposition was supplied.
func (d Disposition) IsZero() bool {
	return d.kind == ""
}

// Kind returns the disposition tag, empty for the zero value.
func (d Disposition) Kind() string {
	return d.kind
}

// ReasonID returns the scrap reason, empty unless Kind is scrap.
func (d Disposition) ReasonID() string {
	return d.reasonID
}

// ParseDisposition validates an external disposition tag. An empty tag
// parses to the zero value; whether that is acceptable depends on the
// shortfall, which the reconciliation engine decides.
func ParseDisposition(kind, reasonID string) (Disposition, error) {
	switch kind {
	case "":
		return Disposition{}, nil
	case dispositionContinuing:
		return Continuing(), nil
	case dispositionRework:
		return Rework(), nil
	case dispositionScrap:
		if reasonID == "" {
			return Disposition{}, apperr.NewValidation("scrap_reason_id", "required when disposition is scrap")
		}
		return Scrap(reasonID), nil
	default:
		return Disposition{}, apperr.NewValidation("disposition", "must be one of continuing, rework, scrap")
	}
}
