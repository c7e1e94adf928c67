package handler

import (
	"strconv"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/gin-gonic/gin"
)

type CellHandler struct {
	svc *service.CapacityService
}

func NewCellHandler(svc *service.CapacityService) *CellHandler {
	return &CellHandler{svc: svc}
}

// List returns the active cells with their live occupancy.
// GET /api/v1/cells
func (h *CellHandler) List(c *gin.Context) {
	cells, err := h.svc.ListCells(c.Request.Context(), GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": cells, "total": len(cells)})
}

// CheckCapacity is the advisory admission check, no side effects.
// GET /api/v1/cells/:id/capacity?delta=1
func (h *CellHandler) CheckCapacity(c *gin.Context) {
	delta, _ := strconv.Atoi(c.DefaultQuery("delta", "1"))
	check, err := h.svc.CheckCapacity(c.Request.Context(), GetTenantID(c), c.Param("id"), delta)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, check)
}
