package handler

import (
	"strconv"

	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/repository"
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/gin-gonic/gin"
)

type OperationHandler struct {
	svc *service.OperationService
}

func NewOperationHandler(svc *service.OperationService) *OperationHandler {
	return &OperationHandler{svc: svc}
}

func (h *OperationHandler) Get(c *gin.Context) {
	op, err := h.svc.GetByID(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, op)
}

func (h *OperationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	params := repository.OpListParams{
		CellID: c.Query("cell_id"),
		Status: c.Query("status"),
		Page:   page,
		Size:   size,
	}
	ops, total, err := h.svc.List(c.Request.Context(), GetTenantID(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"items": ops, "total": total, "page": page, "size": size})
}

// Start admits the operation into its cell and transitions it to
// in_progress in one atomic unit. A blocked cell answers 409.
func (h *OperationHandler) Start(c *gin.Context) {
	result, err := h.svc.Start(c.Request.Context(), GetTenantID(c), c.Param("id"), GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *OperationHandler) Pause(c *gin.Context) {
	op, err := h.svc.Pause(c.Request.Context(), GetTenantID(c), c.Param("id"), GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, op)
}

// Resume re-admits an on-hold operation through the same capacity check
// as Start.
func (h *OperationHandler) Resume(c *gin.Context) {
	result, err := h.svc.Resume(c.Request.Context(), GetTenantID(c), c.Param("id"), GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

func (h *OperationHandler) Complete(c *gin.Context) {
	op, err := h.svc.Complete(c.Request.Context(), GetTenantID(c), c.Param("id"), GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, op)
}
