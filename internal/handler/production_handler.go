package handler

import (
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/gin-gonic/gin"
)

type ProductionHandler struct {
	svc *service.ProductionService
}

func NewProductionHandler(svc *service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

type recordQuantityRequest struct {
	QuantityGood  int    `json:"quantity_good" binding:"min=0"`
	Disposition   string `json:"disposition"`
	ScrapReasonID string `json:"scrap_reason_id"`
}

// Record appends a production quantity entry for the operation.
// POST /api/v1/operations/:id/quantities
func (h *ProductionHandler) Record(c *gin.Context) {
	var req recordQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	disposition, err := service.ParseDisposition(req.Disposition, req.ScrapReasonID)
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.svc.RecordProduction(c.Request.Context(), GetTenantID(c), c.Param("id"), req.QuantityGood, disposition, GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// ListQuantities returns an operation's ledger, oldest first.
// GET /api/v1/operations/:id/quantities
func (h *ProductionHandler) ListQuantities(c *gin.Context) {
	records, err := h.svc.ListQuantities(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": records, "total": len(records)})
}

// ListScrapReasons returns the active scrap reason catalog.
// GET /api/v1/scrap-reasons
func (h *ProductionHandler) ListScrapReasons(c *gin.Context) {
	reasons, err := h.svc.ListScrapReasons(c.Request.Context(), GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": reasons, "total": len(reasons)})
}
