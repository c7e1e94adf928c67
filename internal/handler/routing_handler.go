package handler

import (
	"github.com/SheetMetalConnect/eryxon-flow-sub010/internal/service"
	"github.com/gin-gonic/gin"
)

type RoutingHandler struct {
	svc *service.RoutingService
}

func NewRoutingHandler(svc *service.RoutingService) *RoutingHandler {
	return &RoutingHandler{svc: svc}
}

// JobRouting returns the derived routing steps and completion percentage.
// GET /api/v1/jobs/:id/routing
func (h *RoutingHandler) JobRouting(c *gin.Context) {
	progress, err := h.svc.GetJobRouting(c.Request.Context(), GetTenantID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, progress)
}
